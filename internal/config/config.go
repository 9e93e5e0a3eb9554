package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// 画像アップロードが使えない・失敗したときに使うURL
const defaultPlaceholderImageURL = "http://example.com/images/default.jpg"

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL      string // あれば最優先で使うDSN
	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）
	PostgresSSLMode  string // sslmode（disable）

	JWTSecret string // JWT署名シークレット

	RedisAddr       string        // カタログキャッシュ用（空なら無効）
	CatalogCacheTTL time.Duration // カタログキャッシュのTTL

	GCSBucket       string // 商品画像アップロード先（空なら無効）
	DefaultImageURL string // 画像なし・アップロード失敗時のURL

	PurchaseTimeout time.Duration // 購入トランザクションの上限時間

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PostgresUser:     getenv("POSTGRES_USER", "postgres"),
		PostgresPassword: getenv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:       getenv("POSTGRES_DB", "vending"),
		PostgresHost:     getenv("POSTGRES_HOST", "localhost"),
		PostgresSSLMode:  getenv("POSTGRES_SSLMODE", "disable"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CatalogCacheTTL: secondsEnv("CATALOG_CACHE_TTL", 30*time.Second),

		GCSBucket:       os.Getenv("GCS_BUCKET"),
		DefaultImageURL: getenv("DEFAULT_IMAGE_URL", defaultPlaceholderImageURL),

		PurchaseTimeout: secondsEnv("PURCHASE_TIMEOUT", 5*time.Second),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	pgPort, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return Config{}, err
	}
	cfg.PostgresPort = pgPort

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

// 秒数指定の環境変数をDurationにする
func secondsEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s, err := strconv.Atoi(v)
	if err != nil || s <= 0 {
		return def
	}
	return time.Duration(s) * time.Second
}
