// Package admin implements the product management back office.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/freshmart/storefront/internal/catalog"
	"github.com/freshmart/storefront/internal/shared"
	"github.com/freshmart/storefront/internal/storeapi"
)

// ErrReloadFailed reports a write the backend accepted whose follow-up list
// fetch failed. The write is not rolled back.
var ErrReloadFailed = errors.New("admin: product list reload failed")

// LowStockThreshold marks products needing a restock.
const LowStockThreshold = 20

const mediumStockThreshold = 50

// Stock levels shown as badges in the product table.
const (
	StockLow    = "low"
	StockMedium = "medium"
	StockGood   = "good"
)

// StockLevel classifies a stock count.
func StockLevel(stock int) string {
	switch {
	case stock < LowStockThreshold:
		return StockLow
	case stock < mediumStockThreshold:
		return StockMedium
	default:
		return StockGood
	}
}

// Backend is the subset of the REST client used by the back office.
type Backend interface {
	Products(ctx context.Context, filter storeapi.ProductFilter) ([]storeapi.Product, error)
	Product(ctx context.Context, id int64) (storeapi.Product, error)
	CreateProduct(ctx context.Context, payload storeapi.ProductPayload) (storeapi.Created, error)
	UpdateProduct(ctx context.Context, id int64, payload storeapi.ProductPayload) (storeapi.Ack, error)
	DeleteProduct(ctx context.Context, id int64) (storeapi.Ack, error)
	Categories(ctx context.Context) ([]storeapi.Category, error)
	CreateCategory(ctx context.Context, payload storeapi.CategoryPayload) (storeapi.Created, error)
}

// Stats summarises the full product list.
type Stats struct {
	TotalProducts  int     `json:"total_products"`
	Categories     int     `json:"categories"`
	LowStock       int     `json:"low_stock"`
	InventoryValue float64 `json:"inventory_value"`
}

// ComputeStats derives dashboard figures from products and categories.
func ComputeStats(products []storeapi.Product, categories int) Stats {
	s := Stats{TotalProducts: len(products), Categories: categories}
	for _, p := range products {
		if p.Stock < LowStockThreshold {
			s.LowStock++
		}
		s.InventoryValue += p.Price * float64(p.Stock)
	}
	return s
}

// Row is a product with its stock badge.
type Row struct {
	storeapi.Product
	StockLevel string `json:"stock_level"`
}

// View is the product table: filtered rows plus stats over every product.
type View struct {
	Products []Row    `json:"products"`
	Stats    Stats    `json:"stats"`
	Units    []string `json:"units"`
}

// Manager performs product writes and keeps the listing in sync.
type Manager struct {
	backend   Backend
	validator *Validator
	auditor   shared.Auditor
	logger    *slog.Logger
}

// NewManager constructs a Manager. auditor may be nil.
func NewManager(backend Backend, auditor shared.Auditor, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{backend: backend, validator: NewValidator(), auditor: auditor, logger: logger}
}

// List fetches every product and filters it locally.
func (m *Manager) List(ctx context.Context, c catalog.Criteria) (View, error) {
	products, err := m.backend.Products(ctx, storeapi.ProductFilter{})
	if err != nil {
		return View{}, err
	}
	categories, err := m.backend.Categories(ctx)
	if err != nil {
		return View{}, err
	}
	return buildView(products, len(categories), c), nil
}

// Create validates f, creates the product and returns the re-fetched list.
func (m *Manager) Create(ctx context.Context, actorID int64, f Form) ([]storeapi.Product, error) {
	payload, err := m.validator.Payload(f)
	if err != nil {
		return nil, err
	}
	created, err := m.backend.CreateProduct(ctx, payload)
	if err != nil {
		return nil, err
	}
	m.audit(ctx, actorID, "product.create", created.ID, map[string]any{"name": payload.Name})
	return m.reload(ctx, "product.create", created.ID)
}

// Update validates f, updates product id and returns the re-fetched list.
func (m *Manager) Update(ctx context.Context, actorID, id int64, f Form) ([]storeapi.Product, error) {
	payload, err := m.validator.Payload(f)
	if err != nil {
		return nil, err
	}
	if _, err := m.backend.UpdateProduct(ctx, id, payload); err != nil {
		return nil, err
	}
	m.audit(ctx, actorID, "product.update", id, map[string]any{"name": payload.Name, "price": payload.Price, "stock": payload.Stock})
	return m.reload(ctx, "product.update", id)
}

// Delete removes product id and returns the re-fetched list.
func (m *Manager) Delete(ctx context.Context, actorID, id int64) ([]storeapi.Product, error) {
	if _, err := m.backend.DeleteProduct(ctx, id); err != nil {
		return nil, err
	}
	m.audit(ctx, actorID, "product.delete", id, nil)
	return m.reload(ctx, "product.delete", id)
}

// Edit returns the editor form for product id.
func (m *Manager) Edit(ctx context.Context, id int64) (Form, error) {
	p, err := m.backend.Product(ctx, id)
	if err != nil {
		return Form{}, err
	}
	return FormFor(p), nil
}

// Categories lists categories.
func (m *Manager) Categories(ctx context.Context) ([]storeapi.Category, error) {
	return m.backend.Categories(ctx)
}

// CreateCategory validates f and creates the category.
func (m *Manager) CreateCategory(ctx context.Context, actorID int64, f CategoryForm) (storeapi.Created, error) {
	payload, err := m.validator.CategoryPayload(f)
	if err != nil {
		return storeapi.Created{}, err
	}
	created, err := m.backend.CreateCategory(ctx, payload)
	if err != nil {
		return storeapi.Created{}, err
	}
	m.audit(ctx, actorID, "category.create", created.ID, map[string]any{"slug": payload.Slug})
	return created, nil
}

func (m *Manager) reload(ctx context.Context, action string, id int64) ([]storeapi.Product, error) {
	products, err := m.backend.Products(ctx, storeapi.ProductFilter{})
	if err != nil {
		m.logger.Warn("write applied, reload failed", slog.String("action", action), slog.Int64("product_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}
	if products == nil {
		products = []storeapi.Product{}
	}
	return products, nil
}

// audit failures are logged and never fail the write.
func (m *Manager) audit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if m.auditor == nil {
		return
	}
	entity := "product"
	if action == "category.create" {
		entity = "category"
	}
	err := m.auditor.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     meta,
	})
	if err != nil {
		m.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

func buildView(products []storeapi.Product, categories int, c catalog.Criteria) View {
	filtered := catalog.Filter(products, c)
	rows := make([]Row, 0, len(filtered))
	for _, p := range filtered {
		rows = append(rows, Row{Product: p, StockLevel: StockLevel(p.Stock)})
	}
	return View{Products: rows, Stats: ComputeStats(products, categories), Units: Units}
}
