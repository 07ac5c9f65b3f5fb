package service

import (
	"context"
	"fmt"
	"time"

	"proprent-backend/internal/repository"
)

type documentService struct {
	store repository.Store
}

func NewDocumentService(store repository.Store) DocumentService {
	return &documentService{store: store}
}

func (s *documentService) NextNumber(ctx context.Context, series string, now time.Time) (string, error) {
	seq, err := s.store.Repos().Sequences.NextDocumentNumber(ctx, series, now.Year())
	if err != nil {
		return "", fmt.Errorf("allocate %s document number: %w", series, err)
	}
	return fmt.Sprintf("%s-%d-%06d", series, now.Year(), seq), nil
}
