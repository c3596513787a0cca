package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubScanner struct {
	updated int
	err     error
	calls   int
}

func (s *stubScanner) RefreshOverdue(ctx context.Context) (int, error) {
	s.calls++
	return s.updated, s.err
}

func TestOverdueScanHandle(t *testing.T) {
	scanner := &stubScanner{updated: 3}
	job := NewOverdueScanJob(scanner, nil)

	require.NoError(t, job.Handle(context.Background(), NewOverdueScanTask()))
	require.Equal(t, 1, scanner.calls)
}

func TestOverdueScanPropagatesError(t *testing.T) {
	scanner := &stubScanner{err: errors.New("db down")}
	job := NewOverdueScanJob(scanner, nil)

	err := job.Handle(context.Background(), NewOverdueScanTask())
	require.Error(t, err)
}

func TestOverdueScanUnconfigured(t *testing.T) {
	job := &OverdueScanJob{}
	require.Error(t, job.Handle(context.Background(), NewOverdueScanTask()))
}
