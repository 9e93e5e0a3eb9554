package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 確定した購入のレシート
// 在庫減算と同じトランザクション内で作成される
type Purchase struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TotalCost decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_cost"`
	CreatedAt time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
}
