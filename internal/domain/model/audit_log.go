package model

import "time"

// 在庫の一括作成、在庫アイテム更新など。
type AuditAction string

const (
	//在庫アイテムを一括作成した操作。
	AuditActionBulkCreateItems AuditAction = "BULK_CREATE_ITEMS"
	//在庫アイテムを更新した操作。
	AuditActionUpdateItem AuditAction = "UPDATE_ITEM"
)

// 何に対する操作か
type AuditResourceType string

const (
	//在庫アイテムに対する操作。
	AuditResourceInventoryItem AuditResourceType = "inventory_item"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	//IDは監査ログの主キー
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID。
	ActorUserID int64 `gorm:"not null;index" json:"actor_user_id"`

	//Actionは操作の種類（BULK_CREATE_ITEMS / UPDATE_ITEM など）。
	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象の種類（inventory_item）。
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID。
	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	//JSON文字列で保存する。
	AfterJSON string `gorm:"type:text" json:"after_json"`

	//作成時刻
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
