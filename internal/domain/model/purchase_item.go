package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 購入明細
// 確定時点の商品名・単価を必ずスナップショットで保存
type PurchaseItem struct {
	ID                int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	PurchaseID        int64           `gorm:"not null;index" json:"purchase_id"`
	ItemID            string          `gorm:"type:uuid;not null;index" json:"item_id"`
	ItemNameSnapshot  string          `gorm:"type:varchar(255);not null" json:"item_name_snapshot"`
	UnitPriceSnapshot decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price_snapshot"`
	Quantity          int64           `gorm:"not null" json:"quantity"`
	Cost              decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"cost"`
	CreatedAt         time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
