package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	inventory repo.InventoryRepository
	purchases repo.PurchaseRepository
}

func (r *txReposGorm) Inventory() repo.InventoryRepository { return r.inventory }
func (r *txReposGorm) Purchases() repo.PurchaseRepository  { return r.purchases }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがerrorを返すと全rollback、nilでcommit。
// ctxのキャンセル・タイムアウトでもrollbackになる（中途半端な状態は残らない）。
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			inventory: NewInventoryGormRepository(tx),
			purchases: NewPurchaseGormRepository(tx),
		}
		return fn(r)
	})
}
