package service

import (
	"context"
	"strings"
	"time"

	"github.com/coptimize/openinventory/internal/clock"
	"github.com/coptimize/openinventory/internal/product/domain"
	"github.com/coptimize/openinventory/pkg/db"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Store *db.Store
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	store *db.Store
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		store: p.Store,
		log:   p.Log.Named("product.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

func mapWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return domain.ErrBarcodeTaken
	case db.IsPermissionDenied(err):
		return domain.ErrPermissionDenied
	default:
		return err
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}
	if req.Quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	now := s.now()
	p := &domain.Product{
		ID:            uuid.NewString(),
		Name:          name,
		Category:      strings.TrimSpace(req.Category),
		Manufacturer:  req.Manufacturer,
		Barcode:       req.Barcode,
		Price:         req.Price,
		Tax:           req.Tax,
		IsTaxFlatRate: req.IsTaxFlatRate,
		Quantity:      req.Quantity,
		ImagePath:     req.ImagePath,
		Section:       req.Section,
		Shelf:         req.Shelf,
		UserID:        req.ActorID,
		CreatedAt:     now,
		UpdatedAt:     &now,
	}
	if err := s.repo.Create(ctx, s.store.DB(), p); err != nil {
		return nil, mapWriteError(err)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, s.store.DB(), strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, includeDeleted bool) ([]domain.Product, error) {
	return s.repo.FindAll(ctx, s.store.DB(), includeDeleted)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, s.store.DB(), strings.TrimSpace(req.ID))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		p.Name = name
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
	}
	if req.Manufacturer != nil {
		p.Manufacturer = req.Manufacturer
	}
	if req.Barcode != nil {
		p.Barcode = req.Barcode
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		p.Price = *req.Price
	}
	if req.Tax != nil {
		p.Tax = req.Tax
	}
	if req.IsTaxFlatRate != nil {
		p.IsTaxFlatRate = *req.IsTaxFlatRate
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		p.Quantity = *req.Quantity
	}
	if req.ImagePath != nil {
		p.ImagePath = req.ImagePath
	}
	if req.Section != nil {
		p.Section = req.Section
	}
	if req.Shelf != nil {
		p.Shelf = req.Shelf
	}
	if req.ActorID != nil {
		p.UserID = req.ActorID
	}

	now := s.now()
	p.UpdatedAt = &now
	if err := s.repo.Update(ctx, s.store.DB(), p); err != nil {
		return nil, mapWriteError(err)
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string, actorID *string) error {
	p, err := s.repo.FindByID(ctx, s.store.DB(), strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	if err := s.repo.SoftDelete(ctx, s.store.DB(), p.ID, s.now(), actorID); err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (s *Service) Restore(ctx context.Context, id string, actorID *string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, s.store.DB(), strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.repo.Restore(ctx, s.store.DB(), p.ID, s.now(), actorID); err != nil {
		return nil, mapWriteError(err)
	}
	return s.repo.FindByID(ctx, s.store.DB(), p.ID)
}

func (s *Service) AddStock(ctx context.Context, req domain.AddStockRequest) (*domain.StockEvent, error) {
	if req.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	p, err := s.repo.FindByID(ctx, s.store.DB(), strings.TrimSpace(req.ProductID))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}

	now := s.now()
	stock := &domain.StockEvent{
		ID:              uuid.NewString(),
		ProductID:       p.ID,
		Supplier:        req.Supplier,
		SupplierContact: req.SupplierContact,
		UnitPrice:       req.UnitPrice,
		PurchasePrice:   req.PurchasePrice,
		PurchaseDate:    req.PurchaseDate,
		ExpiryDate:      req.ExpiryDate,
		Quantity:        req.Quantity,
		UserID:          req.ActorID,
		CreatedAt:       now,
		UpdatedAt:       &now,
	}
	if err := s.repo.AddStock(ctx, s.store.DB(), stock); err != nil {
		return nil, mapWriteError(err)
	}
	return stock, nil
}

func (s *Service) Stocks(ctx context.Context, productID string) ([]domain.StockEvent, error) {
	return s.repo.FindStocks(ctx, s.store.DB(), strings.TrimSpace(productID))
}
