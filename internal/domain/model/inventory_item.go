package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 自販機の在庫アイテム
// available_unitsは購入でのみ減る（0未満にはならない）
type InventoryItem struct {
	ID              string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	AvailableUnits  int64           `gorm:"not null;default:0" json:"available_units"`
	DisplayImageURL string          `gorm:"type:varchar(512);not null" json:"display_image_url"`
	CreatedAt       time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
