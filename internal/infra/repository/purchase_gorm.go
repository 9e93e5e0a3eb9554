package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
)

type PurchaseGormRepository struct {
	db *gorm.DB
}

func NewPurchaseGormRepository(db *gorm.DB) *PurchaseGormRepository {
	return &PurchaseGormRepository{db: db}
}

// レシート本体を作成してIDを返す
func (r *PurchaseGormRepository) Create(ctx context.Context, purchase model.Purchase) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&purchase).Error; err != nil {
		return 0, err
	}
	return purchase.ID, nil
}

// 明細を一括作成
func (r *PurchaseGormRepository) CreateItems(ctx context.Context, purchaseID int64, items []model.PurchaseItem) error {
	if len(items) == 0 {
		return nil
	}

	for i := range items {
		items[i].PurchaseID = purchaseID
	}

	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return err
	}
	return nil
}

// 新しい順にレシートを取得
func (r *PurchaseGormRepository) ListRecent(ctx context.Context, limit int) ([]model.Purchase, error) {
	var purchases []model.Purchase

	err := r.db.WithContext(ctx).
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return []model.Purchase{}, err
	}

	return purchases, nil
}

// レシートIDで明細を取得
func (r *PurchaseGormRepository) ListItemsByPurchaseID(ctx context.Context, purchaseID int64) ([]model.PurchaseItem, error) {
	var items []model.PurchaseItem

	err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.PurchaseItem{}, err
	}

	return items, nil
}
