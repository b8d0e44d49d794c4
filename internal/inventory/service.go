package inventory

import (
	"context"
	"errors"
	"time"

	"api_pos/internal/storage"

	"go.uber.org/zap"
)

// Repository is the read side of the inventory store. Stock decrements are
// not part of it: they only happen inside a sale's unit of work.
type Repository interface {
	CurrentQuantity(ctx context.Context, productID int64) (int, error)
	ListBelowThreshold(ctx context.Context) ([]Product, error)
}

// Service exposes stock levels to the low-stock and dashboard surfaces.
type Service struct {
	repo    Repository
	logger  *zap.Logger
	timeout time.Duration
}

// NewService creates a new Service. A zero timeout disables the per-call deadline.
func NewService(repo Repository, logger *zap.Logger, timeout time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		logger:  logger,
		timeout: timeout,
	}
}

// CurrentQuantity returns the quantity on hand for productID.
func (s *Service) CurrentQuantity(ctx context.Context, productID int64) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	qty, err := s.repo.CurrentQuantity(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, err
		}
		s.logger.Error("failed to read product quantity", zap.Int64("product_id", productID), zap.Error(err))
		return 0, storage.Failure("current quantity", err)
	}
	return qty, nil
}

// ListBelowThreshold returns products with quantity at or below their minimum
// stock level, lowest quantity first.
func (s *Service) ListBelowThreshold(ctx context.Context) ([]Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	products, err := s.repo.ListBelowThreshold(ctx)
	if err != nil {
		s.logger.Error("failed to list low stock products", zap.Error(err))
		return nil, storage.Failure("list below threshold", err)
	}
	s.logger.Debug("low stock listing", zap.Int("results_count", len(products)))
	return products, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
