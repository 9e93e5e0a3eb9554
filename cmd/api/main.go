package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/cache"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/storage"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークンの有効期限は1時間
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: time.Hour,
	}
}

func (i *jwtIssuer) Issue(userID int64, isAdmin bool, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":      userID,
		"is_admin": isAdmin,
		"iat":      now.Unix(),
		"exp":      expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envはなくてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := config.GetLogger()

	//priceをJSONで数値として返す
	decimal.MarshalJSONWithoutQuotes = true

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.InventoryItem{},
		&model.Purchase{},
		&model.PurchaseItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	purchaseRepo := infraRepo.NewPurchaseGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//カタログキャッシュ（REDIS_ADDRが空なら無効）
	var catalogCache usecase.CatalogCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		catalogCache = cache.NewCatalogRedisCache(rdb, cfg.CatalogCacheTTL)
		logger.Info("catalog cache enabled")
	}

	//画像ストア（GCS_BUCKETが空なら無効＝常にプレースホルダー画像）
	var imageStore usecase.ImageStore
	if cfg.GCSBucket != "" {
		imageStore = storage.NewGCSImageStore(cfg.GCSBucket)
		logger.Info("gcs image store enabled")
	}

	//usecaseに渡す部品
	clock := &realClock{}

	//bcrypt（登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//Usecase生成
	registerUC := auth.NewRegisterAdminUsecase(userRepo, hasher, issuer, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	purchaseUC := usecase.NewPurchaseUsecase(txManager, catalogCache, cfg.PurchaseTimeout)
	inventoryUC := usecase.NewInventoryUsecase(inventoryRepo, purchaseRepo, auditRepo, imageStore, catalogCache, cfg.DefaultImageURL)

	//Handler生成
	h := server.Handlers{
		Auth:      handler.NewAuthHandler(registerUC, loginUC),
		Inventory: handler.NewInventoryHandler(inventoryUC, purchaseUC),
		Admin:     handler.NewAdminInventoryHandler(inventoryUC),
	}

	//Server起動
	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}

	logger.WithField("addr", addr).Info("server starting")
	if err := server.Start(addr, cfg, h); err != nil {
		panic(err)
	}
}
