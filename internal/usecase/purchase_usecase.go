package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 購入リクエストの1行（アイテムIDと個数）
type PurchaseLine struct {
	ID       string
	Quantity int64
}

// 購入結果の1行（確定時点のスナップショット）
type PurchasedItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Cost     decimal.Decimal `json:"cost"`
}

type PurchaseOutput struct {
	Items     []PurchasedItem `json:"items"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// PurchaseUsecase は複数アイテムの購入を1トランザクションで確定する。
// 呼び出し間で状態は持たない。
type PurchaseUsecase struct {
	tx      repo.TransactionManager
	cache   CatalogCache // nilなら無効
	timeout time.Duration
}

func NewPurchaseUsecase(tx repo.TransactionManager, cache CatalogCache, timeout time.Duration) *PurchaseUsecase {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PurchaseUsecase{tx: tx, cache: cache, timeout: timeout}
}

// Purchase は全行を検証して在庫を減らし、合計金額を返す。
// どこか1行でも失敗したら全行rollback（部分的な減算は残さない）。
func (u *PurchaseUsecase) Purchase(ctx context.Context, lines []PurchaseLine) (PurchaseOutput, error) {
	var out PurchaseOutput

	//入力検証はストアに触る前に済ませる
	if len(lines) == 0 {
		return out, &ValidationError{Field: "items", Message: "Please provide items to purchase"}
	}
	for _, ln := range lines {
		if strings.TrimSpace(ln.ID) == "" || ln.Quantity <= 0 {
			return out, &ValidationError{Field: "items", Message: "Invalid purchase data"}
		}
	}

	//ロック待ちが長引いたら諦めてrollbackさせる
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		results := make([]PurchasedItem, 0, len(lines))
		purchaseItems := make([]model.PurchaseItem, 0, len(lines))
		total := decimal.Zero

		for _, ln := range lines {
			//行ロック付きで取得（同じアイテムを触る購入をここで直列化）
			item, err := r.Inventory().FindByIDForUpdate(ctx, ln.ID)
			if errors.Is(err, repo.ErrNotFound) {
				return &ItemNotFoundError{ID: ln.ID}
			}
			if err != nil {
				return &TransactionError{Err: err}
			}

			if item.AvailableUnits < ln.Quantity {
				return &InsufficientStockError{
					ID:        item.ID,
					Name:      item.Name,
					Requested: ln.Quantity,
					Available: item.AvailableUnits,
				}
			}

			//条件付きUPDATE（available_units >= qty のときだけ減る）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ln.ID, ln.Quantity)
			if err != nil {
				return &TransactionError{Err: err}
			}
			if !ok {
				return &InsufficientStockError{
					ID:        item.ID,
					Name:      item.Name,
					Requested: ln.Quantity,
					Available: item.AvailableUnits,
				}
			}

			cost := item.Price.Mul(decimal.NewFromInt(ln.Quantity))
			total = total.Add(cost)

			results = append(results, PurchasedItem{
				ID:       item.ID,
				Name:     item.Name,
				Quantity: ln.Quantity,
				Price:    item.Price,
				Cost:     cost,
			})

			purchaseItems = append(purchaseItems, model.PurchaseItem{
				ItemID:            item.ID,
				ItemNameSnapshot:  item.Name,
				UnitPriceSnapshot: item.Price,
				Quantity:          ln.Quantity,
				Cost:              cost,
			})
		}

		//レシートも同じトランザクションで残す
		purchaseID, err := r.Purchases().Create(ctx, model.Purchase{TotalCost: total})
		if err != nil {
			return &TransactionError{Err: err}
		}
		if err := r.Purchases().CreateItems(ctx, purchaseID, purchaseItems); err != nil {
			return &TransactionError{Err: err}
		}

		out = PurchaseOutput{Items: results, TotalCost: total}
		return nil
	})

	if err != nil {
		//commit失敗などtx層のエラーもインフラ失敗として返す
		var ve *ValidationError
		var nf *ItemNotFoundError
		var is *InsufficientStockError
		var te *TransactionError
		if errors.As(err, &ve) || errors.As(err, &nf) || errors.As(err, &is) || errors.As(err, &te) {
			return PurchaseOutput{}, err
		}
		return PurchaseOutput{}, &TransactionError{Err: err}
	}

	//一覧キャッシュを捨てる（元のctxは期限切れの可能性があるためBackground）
	if u.cache != nil {
		u.cache.Invalidate(context.Background())
	}

	return out, nil
}
