package suppliers

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

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]Supplier, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, fmt.Errorf("suppliers: invalid id: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	if err := validate(supplier); err != nil {
		return Supplier{}, err
	}
	return s.repo.Create(ctx, supplier)
}

func (s *Service) Update(ctx context.Context, id int64, supplier Supplier) error {
	if id <= 0 {
		return fmt.Errorf("suppliers: invalid id: %w", shared.ErrValidation)
	}
	if err := validate(supplier); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, supplier)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("suppliers: invalid id: %w", shared.ErrValidation)
	}
	return s.repo.Delete(ctx, id)
}

func validate(sup Supplier) error {
	if strings.TrimSpace(sup.Code) == "" {
		return fmt.Errorf("suppliers: code is required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("suppliers: name is required: %w", shared.ErrValidation)
	}
	return nil
}
