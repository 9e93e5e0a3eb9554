package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫が残っているアイテムのみ（available_units > 0）
func (r *InventoryGormRepository) ListAvailable(ctx context.Context) ([]model.InventoryItem, error) {
	var items []model.InventoryItem

	err := r.db.WithContext(ctx).
		Where("available_units > ?", 0).
		Order("created_at asc").Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.InventoryItem{}, err
	}

	return items, nil
}

// IDでアイテムを1件取得
func (r *InventoryGormRepository) FindByID(ctx context.Context, itemID string) (model.InventoryItem, error) {
	var item model.InventoryItem

	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryItem{}, err
	}

	return item, nil
}

// IDでアイテムを1件取得＋行ロック（SELECT ... FOR UPDATE）
// 同じアイテムに触る購入トランザクション同士をここで直列化する
func (r *InventoryGormRepository) FindByIDForUpdate(ctx context.Context, itemID string) (model.InventoryItem, error) {
	var item model.InventoryItem

	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryItem{}, err
	}

	return item, nil
}

// 在庫が足りるときだけ減らす
func (r *InventoryGormRepository) DecreaseStockIfEnough(ctx context.Context, itemID string, qty int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.InventoryItem{}).
		Where("id = ? AND available_units >= ?", itemID, qty).
		Update("available_units", gorm.Expr("available_units - ?", qty))

	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, nil
}

// アイテムの作成（IDが空ならUUIDを払い出す）
func (r *InventoryGormRepository) Create(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.InventoryItem{}, err
	}
	return item, nil
}

// アイテムの一括作成
func (r *InventoryGormRepository) CreateBulk(ctx context.Context, items []model.InventoryItem) ([]model.InventoryItem, error) {
	if len(items) == 0 {
		return []model.InventoryItem{}, nil
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}

	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return []model.InventoryItem{}, err
	}
	return items, nil
}

// 部分更新（nilのフィールドは触らない）。更新後のレコードを返す。
func (r *InventoryGormRepository) UpdateFields(ctx context.Context, itemID string, patch repo.InventoryItemPatch) (model.InventoryItem, error) {
	fields := map[string]interface{}{}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.AvailableUnits != nil {
		fields["available_units"] = *patch.AvailableUnits
	}
	if patch.DisplayImageURL != nil {
		fields["display_image_url"] = *patch.DisplayImageURL
	}

	if len(fields) > 0 {
		res := r.db.WithContext(ctx).
			Model(&model.InventoryItem{}).
			Where("id = ?", itemID).
			Updates(fields)
		if res.Error != nil {
			return model.InventoryItem{}, res.Error
		}
		if res.RowsAffected == 0 {
			return model.InventoryItem{}, repo.ErrNotFound
		}
	}

	return r.FindByID(ctx, itemID)
}

// 調整履歴作成
func (r *InventoryGormRepository) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return err
	}
	return nil
}
