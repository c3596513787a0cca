package suppliers

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Supplier
	nextID int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]Supplier)}
}

func (r *memoryRepo) List(ctx context.Context, search string, limit, offset int) ([]Supplier, int, error) {
	items := make([]Supplier, 0, len(r.items))
	for _, s := range r.items {
		if search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(search)) {
			continue
		}
		items = append(items, s)
	}
	return items, len(items), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Supplier, error) {
	s, ok := r.items[id]
	if !ok {
		return Supplier{}, fmt.Errorf("suppliers: supplier %d: %w", id, shared.ErrNotFound)
	}
	return s, nil
}

func (r *memoryRepo) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	r.nextID++
	supplier.ID = r.nextID
	r.items[supplier.ID] = supplier
	return supplier, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, supplier Supplier) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("suppliers: supplier %d: %w", id, shared.ErrNotFound)
	}
	supplier.ID = id
	r.items[id] = supplier
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("suppliers: supplier %d: %w", id, shared.ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func TestCreateRequiresCodeAndName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Supplier{Name: "Acme"})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Create(context.Background(), Supplier{Code: "ACME"})
	require.ErrorIs(t, err, shared.ErrValidation)

	created, err := svc.Create(context.Background(), Supplier{Code: "ACME", Name: "Acme Industrial"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}

func TestGetUnknownSupplierIsNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateAndDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Supplier{Code: "ACME", Name: "Acme Industrial"})
	require.NoError(t, err)

	created.Name = "Acme Industrial Group"
	require.NoError(t, svc.Update(context.Background(), created.ID, created))

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Acme Industrial Group", got.Name)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
