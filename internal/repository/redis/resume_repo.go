package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"go-resume-feedback/internal/domain"
	"go-resume-feedback/pkg/logger"
)

// Records live in a flat namespace of string keys, "resume:<id>", with
// the JSON serialization of the record as the value.
const keyPrefix = "resume:"

type resumeRepository struct {
	client *goredis.Client
}

// NewResumeRepository creates a resume repository backed by Redis.
func NewResumeRepository(client *goredis.Client) domain.ResumeRepository {
	return &resumeRepository{client: client}
}

func (r *resumeRepository) Save(ctx context.Context, rec *domain.ResumeRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal resume record: %w", err)
	}
	if err := r.client.Set(ctx, keyPrefix+rec.ID, string(data), 0).Err(); err != nil {
		return fmt.Errorf("persist resume record: %w", err)
	}
	return nil
}

func (r *resumeRepository) Get(ctx context.Context, id string) (*domain.ResumeRecord, error) {
	raw, err := r.client.Get(ctx, keyPrefix+id).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read resume record: %w", err)
	}

	var rec domain.ResumeRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode resume record: %w", err)
	}
	return &rec, nil
}

func (r *resumeRepository) List(ctx context.Context) ([]domain.ResumeRecord, error) {
	var records []domain.ResumeRecord

	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := r.client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, goredis.Nil) {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, fmt.Errorf("read resume record: %w", err)
		}
		var rec domain.ResumeRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			// A corrupt entry must not take the whole listing down.
			logger.Log.Warn("skipping undecodable resume record", "key", iter.Val(), "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan resume records: %w", err)
	}
	return records, nil
}
