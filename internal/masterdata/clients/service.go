package clients

import (
	"context"
	"fmt"
	"strings"

	"github.com/stockdesk/stockdesk/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]Client, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (Client, error) {
	if id <= 0 {
		return Client{}, fmt.Errorf("clients: invalid id: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, client Client) (Client, error) {
	if strings.TrimSpace(client.Name) == "" {
		return Client{}, fmt.Errorf("clients: name is required: %w", shared.ErrValidation)
	}
	return s.repo.Create(ctx, client)
}

func (s *Service) Update(ctx context.Context, id int64, client Client) error {
	if id <= 0 {
		return fmt.Errorf("clients: invalid id: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(client.Name) == "" {
		return fmt.Errorf("clients: name is required: %w", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, client)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("clients: invalid id: %w", shared.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}
