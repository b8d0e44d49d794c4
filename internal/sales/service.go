package sales

import (
	"context"
	"errors"
	"time"

	"api_pos/internal/inventory"
	"api_pos/internal/storage"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "api_pos/internal/sales"

// Service posts sales as single units of work and serves the sales history.
type Service struct {
	storage Storage
	logger  *zap.Logger
	tracer  trace.Tracer
	now     func() time.Time
	timeout time.Duration
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces the clock used to stamp new sales.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTimeout bounds every storage call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithTracer replaces the globally registered tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// NewService creates a new Service.
func NewService(storage Storage, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		storage: storage,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PostSale records the sale header, its lines and the matching stock
// decrements as one unit of work and returns the new sale id.
func (s *Service) PostSale(ctx context.Context, req PostSaleRequest) (int64, error) {
	sale, items, err := req.build(s.now().UTC().Truncate(time.Second))
	if err != nil {
		s.logger.Warn("rejected sale request", zap.Int64("employee_id", req.EmployeeID), zap.Error(err))
		return 0, err
	}

	ctx, span := s.tracer.Start(ctx, "post_sale")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("sale.employee_id", sale.EmployeeID),
		attribute.Int("sale.items", len(items)),
		attribute.String("sale.payment_method", string(sale.PaymentMethod)),
	)

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var saleID int64
	err = s.storage.WithinTx(ctx, func(ctx context.Context, uow UnitOfWork) error {
		id, err := uow.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		for _, item := range items {
			item.SaleID = id
			if err := uow.InsertItem(ctx, item); err != nil {
				return err
			}
			if err := uow.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		saleID = id
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sale rolled back")
		return 0, s.postFailure(err, sale)
	}

	span.SetAttributes(attribute.Int64("sale.id", saleID))
	span.SetStatus(codes.Ok, "sale committed")
	s.logger.Info("sale posted",
		zap.Int64("sale_id", saleID),
		zap.Int64("employee_id", sale.EmployeeID),
		zap.Int("items_count", len(items)),
		zap.String("total_amount", sale.TotalAmount.StringFixed(2)),
	)
	return saleID, nil
}

// postFailure keeps business rule violations as they are and turns anything
// else into a storage failure.
func (s *Service) postFailure(err error, sale Sale) error {
	var stockErr *inventory.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		s.logger.Info("sale rejected: insufficient stock",
			zap.Int64("product_id", stockErr.ProductID),
			zap.Int("requested", stockErr.Requested),
			zap.Int("available", stockErr.Available),
		)
		return err
	case errors.Is(err, inventory.ErrNotFound):
		s.logger.Info("sale rejected: unknown product", zap.Error(err))
		return err
	case storage.IsTimeout(err):
		s.logger.Warn("sale abandoned: deadline or cancellation", zap.Int64("employee_id", sale.EmployeeID), zap.Error(err))
		if errors.Is(err, storage.ErrFailure) {
			return err
		}
		return storage.Failure("post sale", err)
	case errors.Is(err, storage.ErrFailure):
		s.logger.Error("failed to post sale", zap.Int64("employee_id", sale.EmployeeID), zap.Error(err))
		return err
	default:
		s.logger.Error("failed to post sale", zap.Int64("employee_id", sale.EmployeeID), zap.Error(err))
		return storage.Failure("post sale", err)
	}
}

// Get returns a committed sale with its items.
func (s *Service) Get(ctx context.Context, saleID int64) (*SaleDetail, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	detail, err := s.storage.Get(ctx, saleID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to read sale", zap.Int64("sale_id", saleID), zap.Error(err))
		return nil, storage.Failure("get sale", err)
	}
	return detail, nil
}

// Items returns the lines of a committed sale in line order.
func (s *Service) Items(ctx context.Context, saleID int64) ([]SaleItem, error) {
	detail, err := s.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return detail.Items, nil
}

// List returns the sales inside r, newest first, together with totals over them.
func (s *Service) List(ctx context.Context, r DateRange) ([]SaleSummary, SalesMetadata, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	summaries, err := s.storage.List(ctx, r)
	if err != nil {
		s.logger.Error("failed to list sales", zap.Error(err))
		return nil, SalesMetadata{}, storage.Failure("list sales", err)
	}

	metadata := SalesMetadata{TotalAmount: decimal.Zero}
	for _, sum := range summaries {
		metadata.Quantity++
		metadata.ItemsCount += sum.ItemsCount
		metadata.TotalAmount = metadata.TotalAmount.Add(sum.TotalAmount)
	}

	s.logger.Debug("sales listing completed",
		zap.Time("start", r.Start),
		zap.Time("end", r.End),
		zap.Int("results_count", len(summaries)),
	)
	return summaries, metadata, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
