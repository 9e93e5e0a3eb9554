package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// アップロード画像の長辺の上限（px）
const maxImageEdge = 800

// 商品画像の保存先フォルダ
const imageFolder = "vending-machine"

// GCSImageStore はGoogle Cloud Storageへ商品画像を保存する。
type GCSImageStore struct {
	bucket string
}

func NewGCSImageStore(bucket string) *GCSImageStore {
	return &GCSImageStore{bucket: bucket}
}

// getGoogleClient initializes a Google Cloud Storage client
func getGoogleClient(ctx context.Context) (*storage.Client, error) {
	// Prefer ADC (GOOGLE_APPLICATION_CREDENTIALS).
	// If you need to provide explicit JSON (e.g. locally), set GCS_CREDENTIALS_JSON.
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		client, err := storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Upload は画像を正規化してGCSへ保存し、公開URLを返す。
// 失敗したら呼び出し側がプレースホルダーにフォールバックする。
func (s *GCSImageStore) Upload(ctx context.Context, data []byte) (string, error) {
	if s.bucket == "" {
		return "", fmt.Errorf("gcs bucket is not configured")
	}

	// デコードできないデータ（画像以外）はここで弾く
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	// 大きすぎる画像は縮める（アスペクト比は維持）
	img = imaging.Fit(img, maxImageEdge, maxImageEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	client, err := getGoogleClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	objectName := fmt.Sprintf("%s/%s.jpg", imageFolder, uuid.NewString())

	wc := client.Bucket(s.bucket).Object(objectName).NewWriter(ctx)
	wc.ContentType = "image/jpeg"
	wc.Metadata = map[string]string{
		"x-goog-acl": "public-read",
	}

	if _, err := wc.Write(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, objectName), nil
}
