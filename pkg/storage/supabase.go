package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseStore uploads and reads blobs through the Supabase storage
// REST API. Object paths returned by Upload are relative to the
// configured bucket.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpDo     *http.Client
}

func NewSupabaseStore(baseURL, serviceKey, bucket string) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		bucket:     bucket,
		httpDo: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *SupabaseStore) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if s.baseURL == "" || s.serviceKey == "" {
		return "", fmt.Errorf("supabase storage not configured")
	}

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := s.httpDo.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("supabase upload failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	item, err := NormalizeUploadResult(body)
	if err != nil {
		return "", fmt.Errorf("supabase upload: %w", err)
	}
	// Some API versions answer with "bucket/name"; keep paths relative
	// to the bucket so Read can address them uniformly.
	return strings.TrimPrefix(item.Path, s.bucket+"/"), nil
}

func (s *SupabaseStore) Read(ctx context.Context, path string) ([]byte, error) {
	readURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, s.bucket, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, readURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.httpDo.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("supabase read failed: status=%d path=%s", resp.StatusCode, path)
	}
	return io.ReadAll(resp.Body)
}
