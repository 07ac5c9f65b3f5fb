package postgres

import (
	"context"
	"fmt"

	"proprent-backend/internal/repository"
)

type sequenceRepository struct {
	db DBTX
}

func NewSequenceRepository(db DBTX) repository.SequenceRepository {
	return &sequenceRepository{db: db}
}

// next bumps the named counter in a single atomic statement and returns the
// new value. GREATEST(seed) keeps the counter ahead of rows that predate the
// sequence table, so allocation stays monotonic even on first use.
func (r *sequenceRepository) next(ctx context.Context, key string, seed int64) (int64, error) {
	query := `INSERT INTO sequences (key, value) VALUES ($1, $2 + 1)
	          ON CONFLICT (key) DO UPDATE SET value = GREATEST(sequences.value, $2) + 1
	          RETURNING value`
	var value int64
	if err := r.db.QueryRowContext(ctx, query, key, seed).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}

func (r *sequenceRepository) NextOrderNumber(ctx context.Context) (int64, error) {
	return r.next(ctx, "order-number", 0)
}

func (r *sequenceRepository) NextOrderVersion(ctx context.Context, base string, seed int32) (int32, error) {
	value, err := r.next(ctx, "order-version:"+base, int64(seed))
	if err != nil {
		return 0, err
	}
	return int32(value), nil
}

func (r *sequenceRepository) NextDocumentNumber(ctx context.Context, series string, year int) (int64, error) {
	return r.next(ctx, fmt.Sprintf("doc:%s:%d", series, year), 0)
}
