package repository

import (
	"context"

	"app/internal/domain/model"
)

// 購入レシートの保存・取得の約束。
type PurchaseRepository interface {
	Create(ctx context.Context, purchase model.Purchase) (int64, error)
	CreateItems(ctx context.Context, purchaseID int64, items []model.PurchaseItem) error

	//管理者用：新しい順に取得
	ListRecent(ctx context.Context, limit int) ([]model.Purchase, error)
	ListItemsByPurchaseID(ctx context.Context, purchaseID int64) ([]model.PurchaseItem, error)
}
