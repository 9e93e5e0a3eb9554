package cache

import (
	"context"
	"encoding/json"
	"time"

	"app/internal/config"
	"app/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// カタログ（在庫あり一覧）のキャッシュキー
const catalogKey = "inventory:available"

// CatalogRedisCache は在庫一覧のJSONをRedisに短時間だけ持つ。
// 一覧は多少古くてもよい読み取りなので、Redis障害は常にミス扱いにする。
type CatalogRedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCatalogRedisCache(rdb *redis.Client, ttl time.Duration) *CatalogRedisCache {
	return &CatalogRedisCache{rdb: rdb, ttl: ttl}
}

// GetCatalog はキャッシュされた一覧を返す。ミス・エラーはfalse。
func (c *CatalogRedisCache) GetCatalog(ctx context.Context) ([]model.InventoryItem, bool) {
	raw, err := c.rdb.Get(ctx, catalogKey).Bytes()
	if err != nil {
		return nil, false
	}

	var items []model.InventoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		//壊れたエントリは消しておく
		c.rdb.Del(ctx, catalogKey)
		return nil, false
	}

	return items, true
}

// SetCatalog は一覧をTTL付きで保存する（失敗しても無視）。
func (c *CatalogRedisCache) SetCatalog(ctx context.Context, items []model.InventoryItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, catalogKey, raw, c.ttl).Err(); err != nil {
		config.GetLogger().WithField("module", "cache").Debug("failed to set catalog cache: " + err.Error())
	}
}

// Invalidate は在庫が変わったときにキャッシュを捨てる（失敗しても無視）。
func (c *CatalogRedisCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, catalogKey).Err(); err != nil {
		config.GetLogger().WithField("module", "cache").Debug("failed to invalidate catalog cache: " + err.Error())
	}
}
