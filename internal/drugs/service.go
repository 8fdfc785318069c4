package drugs

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search matches drug names by substring, case-insensitively. No match
// is ErrNotFound so the handler can 404.
func (s *Service) Search(ctx context.Context, name string) ([]*Drug, error) {
	matches, err := s.repo.SearchByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("search drugs: %w", err)
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return matches, nil
}

// ImportCSV loads a reference export into the database, skipping rows
// whose name already exists. Returns parsed and inserted counts.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (parsed int, inserted int64, err error) {
	batch, err := ReadCSV(r)
	if err != nil {
		return 0, 0, err
	}
	if len(batch) == 0 {
		return 0, 0, nil
	}
	inserted, err = s.repo.InsertBatch(ctx, batch)
	if err != nil {
		return 0, 0, fmt.Errorf("insert drugs: %w", err)
	}
	return len(batch), inserted, nil
}
