package invoice

import (
	"context"

	"api_pos/internal/sales"

	"go.uber.org/zap"
)

// Document is a rendered invoice ready to be served.
type Document struct {
	Bytes    []byte
	MimeType string
	Filename string
}

// SaleReader resolves committed sales. *sales.Service satisfies it.
type SaleReader interface {
	Get(ctx context.Context, saleID int64) (*sales.SaleDetail, error)
}

// Cache stores rendered documents by sale id. Committed sales never change,
// so an entry never goes stale.
type Cache interface {
	Get(ctx context.Context, saleID int64) ([]byte, bool, error)
	Set(ctx context.Context, saleID int64, doc []byte) error
}

// Service renders invoices for committed sales.
type Service struct {
	sales  SaleReader
	cache  Cache
	logger *zap.Logger
}

// NewService creates a new Service. cache may be nil.
func NewService(sales SaleReader, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sales:  sales,
		cache:  cache,
		logger: logger,
	}
}

// Invoice returns the PDF invoice of saleID. It fails with sales.ErrNotFound
// when the id does not resolve to a committed sale.
func (s *Service) Invoice(ctx context.Context, saleID int64) (*Document, error) {
	if s.cache != nil {
		doc, ok, err := s.cache.Get(ctx, saleID)
		if err != nil {
			s.logger.Warn("invoice cache read failed", zap.Int64("sale_id", saleID), zap.Error(err))
		} else if ok {
			return newDocument(saleID, doc), nil
		}
	}

	detail, err := s.sales.Get(ctx, saleID)
	if err != nil {
		return nil, err
	}

	doc, err := Render(detail.Sale, detail.Items, detail.EmployeeName)
	if err != nil {
		s.logger.Error("failed to render invoice", zap.Int64("sale_id", saleID), zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, saleID, doc); err != nil {
			s.logger.Warn("invoice cache write failed", zap.Int64("sale_id", saleID), zap.Error(err))
		}
	}
	s.logger.Info("invoice rendered", zap.Int64("sale_id", saleID), zap.Int("bytes", len(doc)))
	return newDocument(saleID, doc), nil
}

func newDocument(saleID int64, doc []byte) *Document {
	return &Document{
		Bytes:    doc,
		MimeType: MimeType,
		Filename: Filename(saleID),
	}
}
