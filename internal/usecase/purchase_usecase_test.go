package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// Fake: インメモリ在庫ストア
// =====================

// fakeStoreはTransactionManagerとリポジトリをまとめて演じる。
// WithinTxはmutexで直列化し、fnがエラーを返したらスナップショットへ巻き戻す。
type fakeStore struct {
	mu sync.Mutex

	items         map[string]model.InventoryItem
	purchases     map[int64]model.Purchase
	purchaseItems map[int64][]model.PurchaseItem
	nextID        int64

	findCalls     int
	decreaseCalls int
}

func newFakeStore(items ...model.InventoryItem) *fakeStore {
	s := &fakeStore{
		items:         map[string]model.InventoryItem{},
		purchases:     map[int64]model.Purchase{},
		purchaseItems: map[int64][]model.PurchaseItem{},
	}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	//巻き戻し用スナップショット
	itemsSnap := make(map[string]model.InventoryItem, len(s.items))
	for k, v := range s.items {
		itemsSnap[k] = v
	}
	purchasesSnap := make(map[int64]model.Purchase, len(s.purchases))
	for k, v := range s.purchases {
		purchasesSnap[k] = v
	}
	itemRowsSnap := make(map[int64][]model.PurchaseItem, len(s.purchaseItems))
	for k, v := range s.purchaseItems {
		itemRowsSnap[k] = append([]model.PurchaseItem{}, v...)
	}
	idSnap := s.nextID

	if err := fn(&fakeTxRepos{s: s}); err != nil {
		s.items = itemsSnap
		s.purchases = purchasesSnap
		s.purchaseItems = itemRowsSnap
		s.nextID = idSnap
		return err
	}
	return nil
}

type fakeTxRepos struct {
	s *fakeStore
}

func (r *fakeTxRepos) Inventory() repo.InventoryRepository {
	return (*fakeInventoryRepo)(r)
}

func (r *fakeTxRepos) Purchases() repo.PurchaseRepository {
	return (*fakePurchaseRepo)(r)
}

type fakeInventoryRepo fakeTxRepos

func (r *fakeInventoryRepo) FindByIDForUpdate(ctx context.Context, itemID string) (model.InventoryItem, error) {
	r.s.findCalls++
	item, ok := r.s.items[itemID]
	if !ok {
		return model.InventoryItem{}, repo.ErrNotFound
	}
	return item, nil
}

func (r *fakeInventoryRepo) DecreaseStockIfEnough(ctx context.Context, itemID string, qty int64) (bool, error) {
	r.s.decreaseCalls++
	item, ok := r.s.items[itemID]
	if !ok || item.AvailableUnits < qty {
		return false, nil
	}
	item.AvailableUnits -= qty
	r.s.items[itemID] = item
	return true, nil
}

func (r *fakeInventoryRepo) ListAvailable(ctx context.Context) ([]model.InventoryItem, error) {
	panic("not used")
}

func (r *fakeInventoryRepo) FindByID(ctx context.Context, itemID string) (model.InventoryItem, error) {
	panic("not used")
}

func (r *fakeInventoryRepo) Create(ctx context.Context, item model.InventoryItem) (model.InventoryItem, error) {
	panic("not used")
}

func (r *fakeInventoryRepo) CreateBulk(ctx context.Context, items []model.InventoryItem) ([]model.InventoryItem, error) {
	panic("not used")
}

func (r *fakeInventoryRepo) UpdateFields(ctx context.Context, itemID string, patch repo.InventoryItemPatch) (model.InventoryItem, error) {
	panic("not used")
}

func (r *fakeInventoryRepo) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	panic("not used")
}

type fakePurchaseRepo fakeTxRepos

func (r *fakePurchaseRepo) Create(ctx context.Context, purchase model.Purchase) (int64, error) {
	r.s.nextID++
	purchase.ID = r.s.nextID
	purchase.CreatedAt = time.Now()
	r.s.purchases[purchase.ID] = purchase
	return purchase.ID, nil
}

func (r *fakePurchaseRepo) CreateItems(ctx context.Context, purchaseID int64, items []model.PurchaseItem) error {
	r.s.purchaseItems[purchaseID] = append(r.s.purchaseItems[purchaseID], items...)
	return nil
}

func (r *fakePurchaseRepo) ListRecent(ctx context.Context, limit int) ([]model.Purchase, error) {
	panic("not used")
}

func (r *fakePurchaseRepo) ListItemsByPurchaseID(ctx context.Context, purchaseID int64) ([]model.PurchaseItem, error) {
	panic("not used")
}

// =====================
// Fake: カタログキャッシュ
// =====================

type countingCache struct {
	mu          sync.Mutex
	invalidated int
}

func (c *countingCache) GetCatalog(ctx context.Context) ([]model.InventoryItem, bool) {
	return nil, false
}

func (c *countingCache) SetCatalog(ctx context.Context, items []model.InventoryItem) {}

func (c *countingCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
}

// =====================
// Helper
// =====================

func colaItem(stock int64) model.InventoryItem {
	return model.InventoryItem{
		ID:             "11111111-1111-1111-1111-111111111111",
		Name:           "Cola",
		Price:          decimal.NewFromInt(10),
		AvailableUnits: stock,
	}
}

func chipsItem(stock int64) model.InventoryItem {
	return model.InventoryItem{
		ID:             "22222222-2222-2222-2222-222222222222",
		Name:           "Chips",
		Price:          decimal.NewFromFloat(2.50),
		AvailableUnits: stock,
	}
}

// =====================
// Tests
// =====================

// 在庫内の購入：減算・合計・レシートまで確定する
func TestPurchase_Success(t *testing.T) {
	store := newFakeStore(colaItem(5))
	cache := &countingCache{}
	uc := usecase.NewPurchaseUsecase(store, cache, time.Second)

	out, err := uc.Purchase(context.Background(), []usecase.PurchaseLine{
		{ID: colaItem(0).ID, Quantity: 3},
	})

	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Cola", out.Items[0].Name)
	assert.EqualValues(t, 3, out.Items[0].Quantity)
	assert.True(t, out.TotalCost.Equal(decimal.NewFromInt(30)), "totalCost = %s", out.TotalCost)

	//在庫は5-3=2
	assert.EqualValues(t, 2, store.items[colaItem(0).ID].AvailableUnits)

	//レシートが同じ確定で残っている
	require.Len(t, store.purchases, 1)
	for id, p := range store.purchases {
		assert.True(t, p.TotalCost.Equal(decimal.NewFromInt(30)))
		require.Len(t, store.purchaseItems[id], 1)
		assert.Equal(t, "Cola", store.purchaseItems[id][0].ItemNameSnapshot)
	}

	//成功したのでカタログキャッシュは破棄される
	assert.Equal(t, 1, cache.invalidated)
}

// 複数アイテムの購入は合計が行ごとのコストの和になる
func TestPurchase_MultipleItems(t *testing.T) {
	store := newFakeStore(colaItem(5), chipsItem(4))
	uc := usecase.NewPurchaseUsecase(store, nil, time.Second)

	out, err := uc.Purchase(context.Background(), []usecase.PurchaseLine{
		{ID: colaItem(0).ID, Quantity: 2},
		{ID: chipsItem(0).ID, Quantity: 3},
	})

	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	//2*10 + 3*2.50 = 27.50
	assert.True(t, out.TotalCost.Equal(decimal.NewFromFloat(27.50)), "totalCost = %s", out.TotalCost)
	assert.EqualValues(t, 3, store.items[colaItem(0).ID].AvailableUnits)
	assert.EqualValues(t, 1, store.items[chipsItem(0).ID].AvailableUnits)
}

// 在庫不足：エラーに内容が入り、在庫は変わらない
func TestPurchase_InsufficientStock(t *testing.T) {
	store := newFakeStore(colaItem(5))
	uc := usecase.NewPurchaseUsecase(store, nil, time.Second)

	_, err := uc.Purchase(context.Background(), []usecase.PurchaseLine{
		{ID: colaItem(0).ID, Quantity: 6},
	})

	var stockErr *usecase.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Cola", stockErr.Name)
	assert.EqualValues(t, 6, stockErr.Requested)
	assert.EqualValues(t, 5, stockErr.Available)
	assert.Equal(t, "Not enough Cola available. Requested: 6, Available: 5", err.Error())

	//在庫は減っていない
	assert.EqualValues(t, 5, store.items[colaItem(0).ID].AvailableUnits)
	assert.Empty(t, store.purchases)
}

// バッチ内に存在しないIDが混ざったら全行rollback
func TestPurchase_UnknownItemRollsBackBatch(t *testing.T) {
	store := newFakeStore(colaItem(5))
	uc := usecase.NewPurchaseUsecase(store, nil, time.Second)

	_, err := uc.Purchase(context.Background(), []usecase.PurchaseLine{
		{ID: colaItem(0).ID, Quantity: 2},
		{ID: "99999999-9999-9999-9999-999999999999", Quantity: 1},
	})

	var nfErr *usecase.ItemNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "99999999-9999-9999-9999-999999999999", nfErr.ID)

	//先に成功した行の減算も巻き戻っている
	assert.EqualValues(t, 5, store.items[colaItem(0).ID].AvailableUnits)
	assert.Empty(t, store.purchases)
}

// 空のバッチはストアに触らず検証エラー
func TestPurchase_EmptyBatch(t *testing.T) {
	store := newFakeStore(colaItem(5))
	uc := usecase.NewPurchaseUsecase(store, nil, time.Second)

	_, err := uc.Purchase(context.Background(), nil)

	var ve *usecase.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Please provide items to purchase", ve.Message)

	//ストアには触っていない
	assert.Equal(t, 0, store.findCalls)
	assert.Equal(t, 0, store.decreaseCalls)
}

// 数量0以下・ID空もストアに触らず検証エラー
func TestPurchase_InvalidLines(t *testing.T) {
	store := newFakeStore(colaItem(5))
	uc := usecase.NewPurchaseUsecase(store, nil, time.Second)

	cases := [][]usecase.PurchaseLine{
		{{ID: colaItem(0).ID, Quantity: 0}},
		{{ID: colaItem(0).ID, Quantity: -1}},
		{{ID: "  ", Quantity: 1}},
	}

	for _, lines := range cases {
		_, err := uc.Purchase(context.Background(), lines)

		var ve *usecase.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Invalid purchase data", ve.Message)
	}

	assert.Equal(t, 0, store.findCalls)
}

// 失敗したバッチはそのまま再送しても同じエラー（状態を汚していない）
func TestPurchase_FailedBatchIsRepeatable(t *testing.T) {
	store := newFakeStore(colaItem(5))
	uc := usecase.NewPurchaseUsecase(store, nil, time.Second)

	lines := []usecase.PurchaseLine{{ID: colaItem(0).ID, Quantity: 6}}

	_, err1 := uc.Purchase(context.Background(), lines)
	_, err2 := uc.Purchase(context.Background(), lines)

	var s1, s2 *usecase.InsufficientStockError
	require.ErrorAs(t, err1, &s1)
	require.ErrorAs(t, err2, &s2)
	assert.Equal(t, s1.Available, s2.Available)
	assert.EqualValues(t, 5, store.items[colaItem(0).ID].AvailableUnits)
}

// 同じアイテムへ同時購入：成功するのは片方だけ
func TestPurchase_ConcurrentBuyersOneWins(t *testing.T) {
	store := newFakeStore(colaItem(3))
	uc := usecase.NewPurchaseUsecase(store, nil, time.Second)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Purchase(context.Background(), []usecase.PurchaseLine{
				{ID: colaItem(0).ID, Quantity: 3},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	insufficient := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *usecase.InsufficientStockError
		if assert.ErrorAs(t, err, &stockErr) {
			insufficient++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, insufficient)
	assert.EqualValues(t, 0, store.items[colaItem(0).ID].AvailableUnits)
}

// 在庫M・買い手N(M<N)で成功はちょうどM件（在庫は生成も消滅もしない）
func TestPurchase_Conservation(t *testing.T) {
	const stock = 7
	const buyers = 12

	store := newFakeStore(colaItem(stock))
	uc := usecase.NewPurchaseUsecase(store, nil, time.Second)

	var wg sync.WaitGroup
	errs := make([]error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Purchase(context.Background(), []usecase.PurchaseLine{
				{ID: colaItem(0).ID, Quantity: 1},
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			var stockErr *usecase.InsufficientStockError
			assert.ErrorAs(t, err, &stockErr)
		}
	}

	assert.Equal(t, stock, succeeded)
	assert.EqualValues(t, 0, store.items[colaItem(0).ID].AvailableUnits)
	assert.Len(t, store.purchases, stock)
}
