package model

import "time"

//管理者による在庫調整の履歴

type InventoryAdjustment struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID      string    `gorm:"type:uuid;not null;index" json:"item_id"`
	AdminUserID int64     `gorm:"not null;index" json:"admin_user_id"`
	Delta       int64     `gorm:"not null" json:"delta"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
