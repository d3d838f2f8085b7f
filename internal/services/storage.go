package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"supply_order_back_end/internal/utils"
)

const (
	imagePrefix    = "products/"
	documentPrefix = "orders/"

	// Durée de validité des liens signés vers les bons archivés
	SignedURLTTL = 7 * 24 * time.Hour
)

// ObjectStorage range images produits et bons de commande dans un bucket MinIO
type ObjectStorage struct {
	client *minio.Client
	bucket string
}

func NewObjectStorage(client *minio.Client, bucket string) *ObjectStorage {
	return &ObjectStorage{client: client, bucket: bucket}
}

// UploadImage stocke une image produit et retourne son URL publique
func (s *ObjectStorage) UploadImage(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := imagePrefix + uuid.NewString() + path.Ext(filename)
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("envoi image: %w", err)
	}
	return s.objectURL(key), nil
}

// ArchiveDocument conserve le bon d'une commande et retourne un lien signé
func (s *ObjectStorage) ArchiveDocument(ctx context.Context, orderID string, doc *utils.RenderedDocument) (string, error) {
	key := documentPrefix + doc.FileName
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(doc.Data), int64(len(doc.Data)),
		minio.PutObjectOptions{
			ContentType:  doc.ContentType,
			UserMetadata: map[string]string{"order-id": orderID},
		})
	if err != nil {
		return "", fmt.Errorf("archivage %s: %w", orderID, err)
	}
	return s.SignedURL(ctx, key, SignedURLTTL)
}

// DocumentURL retourne un lien signé vers le bon archivé (PDF puis HTML)
func (s *ObjectStorage) DocumentURL(ctx context.Context, orderID string) (string, error) {
	for _, ext := range []string{".pdf", ".html"} {
		key := documentPrefix + orderID + ext
		if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err == nil {
			return s.SignedURL(ctx, key, SignedURLTTL)
		}
	}
	return "", fmt.Errorf("aucun bon archivé pour %s", orderID)
}

// SignedURL génère une URL de lecture temporaire
func (s *ObjectStorage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, make(url.Values))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (s *ObjectStorage) objectURL(key string) string {
	return s.client.EndpointURL().JoinPath(s.bucket, key).String()
}
