package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

// 部分更新の入力（nilのフィールドは変更しない）
type InventoryItemPatch struct {
	Name            *string
	Price           *decimal.Decimal
	AvailableUnits  *int64
	DisplayImageURL *string
}

// 在庫アイテムの永続化の約束。
type InventoryRepository interface {
	//在庫が残っているアイテムのみ一覧（カタログ用）
	ListAvailable(ctx context.Context) ([]model.InventoryItem, error)

	//IDで1件取得
	FindByID(ctx context.Context, itemID string) (model.InventoryItem, error)

	//IDで1件取得＋行ロック（購入トランザクション内で使う）
	FindByIDForUpdate(ctx context.Context, itemID string) (model.InventoryItem, error)

	//在庫が足りるときだけ減算
	DecreaseStockIfEnough(ctx context.Context, itemID string, qty int64) (bool, error)

	//アイテム作成
	Create(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error)

	//アイテム一括作成
	CreateBulk(ctx context.Context, items []model.InventoryItem) ([]model.InventoryItem, error)

	//部分更新して更新後のレコードを返す
	UpdateFields(ctx context.Context, itemID string, patch InventoryItemPatch) (model.InventoryItem, error)

	//調整履歴作成
	CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error
}
