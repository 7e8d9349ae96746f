package branch

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

// Source lists the raw branch items of the inventory backend.
type Source interface {
	Branches(ctx context.Context) ([]gjson.Result, error)
}

// Service provides the branch selector list.
type Service struct {
	source Source
}

func NewService(s Source) *Service {
	return &Service{source: s}
}

// List returns the branches in backend order. Items without an id are skipped.
func (s *Service) List(ctx context.Context) ([]Branch, error) {
	items, err := s.source.Branches(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	out := make([]Branch, 0, len(items))
	for _, item := range items {
		b := FromJSON(item)
		if b.ID <= 0 {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
