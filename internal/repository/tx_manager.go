package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Inventory() InventoryRepository
	Purchases() PurchaseRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
// fnがerrorを返したら全てrollback、nilならcommit。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
