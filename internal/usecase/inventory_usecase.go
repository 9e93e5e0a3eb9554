package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

// 商品画像を保存して公開URLを返す約束
type ImageStore interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// 在庫あり一覧のキャッシュの約束（多少古くてもよい読み取り用）
type CatalogCache interface {
	GetCatalog(ctx context.Context) ([]model.InventoryItem, bool)
	SetCatalog(ctx context.Context, items []model.InventoryItem)
	Invalidate(ctx context.Context)
}

// 管理者用：購入レシート一覧の1件
type PurchaseRecordOutput struct {
	ID        int64           `json:"id"`
	TotalCost decimal.Decimal `json:"totalCost"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []PurchasedItem `json:"items"`
}

type InventoryUsecase struct {
	inventoryRepo   repo.InventoryRepository
	purchaseRepo    repo.PurchaseRepository
	auditRepo       repo.AuditLogRepository
	images          ImageStore   // nilなら無効（常にプレースホルダー）
	cache           CatalogCache // nilなら無効
	defaultImageURL string
}

// DI
func NewInventoryUsecase(
	inventoryRepo repo.InventoryRepository,
	purchaseRepo repo.PurchaseRepository,
	auditRepo repo.AuditLogRepository,
	images ImageStore,
	cache CatalogCache,
	defaultImageURL string,
) *InventoryUsecase {
	return &InventoryUsecase{
		inventoryRepo:   inventoryRepo,
		purchaseRepo:    purchaseRepo,
		auditRepo:       auditRepo,
		images:          images,
		cache:           cache,
		defaultImageURL: defaultImageURL,
	}
}

// ListAvailable は在庫が残っているアイテムの一覧を返す（カタログ）。
// キャッシュ経由で読む。キャッシュの失敗はDBフォールバック。
func (u *InventoryUsecase) ListAvailable(ctx context.Context) ([]model.InventoryItem, error) {
	if u.cache != nil {
		if items, ok := u.cache.GetCatalog(ctx); ok {
			return items, nil
		}
	}

	items, err := u.inventoryRepo.ListAvailable(ctx)
	if err != nil {
		return []model.InventoryItem{}, NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if u.cache != nil {
		u.cache.SetCatalog(ctx, items)
	}

	return items, nil
}

// 一括作成の1件分の入力。Imageが空ならプレースホルダーを使う。
type BulkCreateItemInput struct {
	Name           string
	Price          decimal.Decimal
	AvailableUnits int64
	Image          []byte
}

// AdminBulkCreate はアイテムを画像付きで一括作成する。
// 画像アップロードの失敗はプレースホルダーにフォールバックし、作成自体は続行する。
func (u *InventoryUsecase) AdminBulkCreate(ctx context.Context, adminUserID int64, inputs []BulkCreateItemInput) ([]model.InventoryItem, error) {
	if adminUserID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	if len(inputs) == 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "Please provide items to create")
	}

	items := make([]model.InventoryItem, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in.Name) == "" {
			return nil, NewHTTPError(http.StatusBadRequest, "name required")
		}
		if in.Price.IsNegative() {
			return nil, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
		}
		if in.AvailableUnits < 0 {
			return nil, NewHTTPError(http.StatusBadRequest, "available_units must be >= 0")
		}

		items = append(items, model.InventoryItem{
			Name:            strings.TrimSpace(in.Name),
			Price:           in.Price,
			AvailableUnits:  in.AvailableUnits,
			DisplayImageURL: u.uploadOrDefault(ctx, in.Image),
		})
	}

	created, err := u.inventoryRepo.CreateBulk(ctx, items)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "Server error during bulk inventory upload")
	}

	//監査ログ（誰がいくつ作ったか）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionBulkCreateItems,
		ResourceType: model.AuditResourceInventoryItem,
		ResourceID:   "bulk",
		AfterJSON:    fmt.Sprintf(`{"created":%d}`, len(created)),
		CreatedAt:    time.Now(),
	}); err != nil {
		config.LogError(config.GetLogger(), "inventory", "AdminBulkCreate", "audit log", err)
	}

	if u.cache != nil {
		u.cache.Invalidate(ctx)
	}

	return created, nil
}

// 部分更新の入力。nilのフィールドは変更しない。
// Imageがあればアップロードして画像URLも更新する。
type UpdateItemInput struct {
	Name           *string
	Price          *decimal.Decimal
	AvailableUnits *int64
	Image          []byte
}

// AdminUpdateItem はアイテムを部分更新する。
// available_unitsを変えた場合は調整履歴と監査ログも残す。
func (u *InventoryUsecase) AdminUpdateItem(ctx context.Context, adminUserID int64, itemID string, in UpdateItemInput) (model.InventoryItem, error) {
	if adminUserID <= 0 {
		return model.InventoryItem{}, NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	if strings.TrimSpace(itemID) == "" {
		return model.InventoryItem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return model.InventoryItem{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.Price != nil && in.Price.IsNegative() {
		return model.InventoryItem{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.AvailableUnits != nil && *in.AvailableUnits < 0 {
		return model.InventoryItem{}, NewHTTPError(http.StatusBadRequest, "available_units must be >= 0")
	}

	//変更前のレコード（調整履歴・監査ログ用）
	before, err := u.inventoryRepo.FindByID(ctx, itemID)
	if err == repo.ErrNotFound {
		return model.InventoryItem{}, NewHTTPError(http.StatusNotFound, "Inventory item not found")
	}
	if err != nil {
		return model.InventoryItem{}, NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	patch := repo.InventoryItemPatch{
		Price:          in.Price,
		AvailableUnits: in.AvailableUnits,
	}
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		patch.Name = &trimmed
	}
	if len(in.Image) > 0 {
		url := u.uploadOrDefault(ctx, in.Image)
		patch.DisplayImageURL = &url
	}

	updated, err := u.inventoryRepo.UpdateFields(ctx, itemID, patch)
	if err == repo.ErrNotFound {
		return model.InventoryItem{}, NewHTTPError(http.StatusNotFound, "Inventory item not found")
	}
	if err != nil {
		return model.InventoryItem{}, NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	//在庫数を変えたときは履歴を残す
	if in.AvailableUnits != nil && *in.AvailableUnits != before.AvailableUnits {
		adj := model.InventoryAdjustment{
			ItemID:      itemID,
			AdminUserID: adminUserID,
			Delta:       *in.AvailableUnits - before.AvailableUnits,
			CreatedAt:   time.Now(),
		}
		if err := u.inventoryRepo.CreateAdjustment(ctx, adj); err != nil {
			config.LogError(config.GetLogger(), "inventory", "AdminUpdateItem", "adjustment", err)
		}
	}

	//監査ログ（在庫数のbefore/after）
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateItem,
		ResourceType: model.AuditResourceInventoryItem,
		ResourceID:   itemID,
		BeforeJSON:   fmt.Sprintf(`{"available_units":%d}`, before.AvailableUnits),
		AfterJSON:    fmt.Sprintf(`{"available_units":%d}`, updated.AvailableUnits),
		CreatedAt:    time.Now(),
	}); err != nil {
		config.LogError(config.GetLogger(), "inventory", "AdminUpdateItem", "audit log", err)
	}

	if u.cache != nil {
		u.cache.Invalidate(ctx)
	}

	return updated, nil
}

// AdminListPurchases は確定済みの購入レシートを新しい順に返す。
func (u *InventoryUsecase) AdminListPurchases(ctx context.Context, limit int) ([]PurchaseRecordOutput, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	purchases, err := u.purchaseRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	outs := make([]PurchaseRecordOutput, 0, len(purchases))
	for _, p := range purchases {
		items, err := u.purchaseRepo.ListItemsByPurchaseID(ctx, p.ID)
		if err != nil {
			return nil, NewHTTPError(http.StatusInternalServerError, "Server error")
		}

		outItems := make([]PurchasedItem, 0, len(items))
		for _, it := range items {
			outItems = append(outItems, PurchasedItem{
				ID:       it.ItemID,
				Name:     it.ItemNameSnapshot,
				Quantity: it.Quantity,
				Price:    it.UnitPriceSnapshot,
				Cost:     it.Cost,
			})
		}

		outs = append(outs, PurchaseRecordOutput{
			ID:        p.ID,
			TotalCost: p.TotalCost,
			CreatedAt: p.CreatedAt,
			Items:     outItems,
		})
	}

	return outs, nil
}

// 画像をアップロードしてURLを返す。
// 画像なし・ストア未設定・アップロード失敗はプレースホルダーURL（仕様どおり作成は失敗させない）。
func (u *InventoryUsecase) uploadOrDefault(ctx context.Context, image []byte) string {
	if len(image) == 0 || u.images == nil {
		return u.defaultImageURL
	}

	url, err := u.images.Upload(ctx, image)
	if err != nil {
		config.LogError(config.GetLogger(), "inventory", "uploadOrDefault", "image upload", err)
		return u.defaultImageURL
	}

	return url
}
