package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmacia-catalogo/config"
	"farmacia-catalogo/internal/domain"
	"farmacia-catalogo/internal/infrastructure/events"
	"farmacia-catalogo/internal/metrics"
	"farmacia-catalogo/pkg/logger"
	"farmacia-catalogo/pkg/utils"
)

const maxCodeAttempts = 3

// PageRequest is what a client sends to walk a paginated listing.
type PageRequest struct {
	Limit   int    // <= 0 uses the configured default
	LastKey string // opaque cursor from a previous page
}

// PageResult is one page ready to be rendered.
type PageResult struct {
	Items   []domain.Product
	NextKey string // empty when there is nothing more
	HasMore bool
	Limit   int
}

type CatalogUsecase struct {
	repo      domain.ProductRepository
	validator *Validator
	codes     CodeGenerator
	events    domain.EventPublisher
	cfg       *config.Config
	now       func() time.Time
}

func NewCatalogUsecase(repo domain.ProductRepository, validator *Validator, codes CodeGenerator, publisher domain.EventPublisher, cfg *config.Config) *CatalogUsecase {
	if publisher == nil {
		publisher = domain.NopPublisher{}
	}
	return &CatalogUsecase{
		repo:      repo,
		validator: validator,
		codes:     codes,
		events:    publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// --- Helpers ---

// storeContext detaches the store call from the caller: a disconnect does not
// abort an in-flight write. The configured timeout still applies.
func storeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func (uc *CatalogUsecase) timestamp() time.Time {
	return uc.now().UTC().Truncate(time.Millisecond)
}

// nextModification returns a timestamp strictly after prev.
func (uc *CatalogUsecase) nextModification(prev time.Time) time.Time {
	ts := uc.timestamp()
	if !ts.After(prev) {
		ts = prev.Add(time.Millisecond)
	}
	return ts
}

// queryOptions resolves limit and cursor for a tenant-scoped listing.
// A cursor minted for another tenant is rejected like a malformed one.
func queryOptions(cfg *config.Config, tenantID string, req PageRequest, filter domain.ProductFilter) (domain.QueryOptions, int, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = cfg.DefaultPageLimit
	}
	limit = utils.ClampLimit(limit, cfg.MaxPageLimit)

	start, err := domain.DecodeCursor(req.LastKey)
	if err != nil {
		return domain.QueryOptions{}, 0, err
	}
	if start != nil && start.TenantID != tenantID {
		return domain.QueryOptions{}, 0, fmt.Errorf("%w: cursor belongs to another tenant", domain.ErrInvalidCursor)
	}

	return domain.QueryOptions{
		Limit:    int32(limit),
		StartKey: start,
		Filter:   filter,
	}, limit, nil
}

func toPageResult(page *domain.Page, limit int) (*PageResult, error) {
	next, err := domain.EncodeCursor(page.NextKey)
	if err != nil {
		return nil, err
	}
	items := page.Items
	if items == nil {
		items = []domain.Product{}
	}
	return &PageResult{
		Items:   items,
		NextKey: next,
		HasMore: page.HasMore(),
		Limit:   limit,
	}, nil
}

func (uc *CatalogUsecase) page(ctx context.Context, tenantID string, req PageRequest, filter domain.ProductFilter) (*PageResult, error) {
	opts, limit, err := queryOptions(uc.cfg, tenantID, req, filter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	page, err := uc.repo.Query(ctx, tenantID, opts)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return toPageResult(page, limit)
}

func (uc *CatalogUsecase) publish(ctx context.Context, eventType string, p *domain.Product) {
	events.PublishAsync(ctx, uc.events, domain.ProductEvent{
		Type:       eventType,
		TenantID:   p.TenantID,
		Codigo:     p.Codigo,
		Producto:   p,
		OccurredAt: uc.timestamp(),
	})
}

// --- Operations ---

// List returns one page of the tenant's catalog, newest first.
func (uc *CatalogUsecase) List(ctx context.Context, tenantID string, req PageRequest) (*PageResult, error) {
	return uc.page(ctx, tenantID, req, domain.ProductFilter{})
}

// Create validates body, mints a code and stores a new active product.
// A code collision is retried with a fresh code.
func (uc *CatalogUsecase) Create(ctx context.Context, tenantID string, body map[string]interface{}) (*domain.Product, error) {
	p, err := uc.validator.ValidateCreate(body)
	if err != nil {
		return nil, err
	}

	now := uc.timestamp()
	p.TenantID = tenantID
	p.FechaCreacion = now
	p.FechaModificacion = now
	p.Activo = true
	p.RefreshSearchText()

	ctx, cancel := storeContext(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	for attempt := 1; ; attempt++ {
		p.Codigo = uc.codes.Next(now)
		err = uc.repo.Insert(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrCodeConflict) {
			return nil, fmt.Errorf("insert product: %w", err)
		}
		metrics.CodeCollisions.Inc()
		logger.WithContext(ctx).Warn().Str("codigo", p.Codigo).Int("attempt", attempt).Msg("Product code collision")
		if attempt == maxCodeAttempts {
			return nil, fmt.Errorf("insert product after %d attempts: %w", attempt, err)
		}
	}

	metrics.ProductsCreated.Inc()
	uc.publish(ctx, domain.EventProductCreated, p)
	return p, nil
}

func (uc *CatalogUsecase) Get(ctx context.Context, tenantID, codigo string) (*domain.Product, error) {
	ctx, cancel := storeContext(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	p, err := uc.repo.Get(ctx, tenantID, codigo)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update checks the product exists, validates the patch against the merged
// result and applies it. fecha_modificacion always moves forward.
func (uc *CatalogUsecase) Update(ctx context.Context, tenantID, codigo string, body map[string]interface{}) (*domain.Product, error) {
	current, err := uc.Get(ctx, tenantID, codigo)
	if err != nil {
		return nil, err
	}

	patch, err := uc.validator.ValidateUpdate(body)
	if err != nil {
		return nil, err
	}
	merged := patch.Apply(*current)
	if err := uc.validator.ValidateMerged(&merged); err != nil {
		return nil, err
	}

	patch.FechaModificacion = uc.nextModification(current.FechaModificacion)
	text := merged.SearchText()
	patch.TextoBusqueda = &text

	ctx, cancel := storeContext(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	updated, err := uc.repo.Update(ctx, tenantID, codigo, patch)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	metrics.ProductsUpdated.Inc()
	uc.publish(ctx, domain.EventProductUpdated, updated)
	return updated, nil
}

// Delete removes the product and returns it as it was.
func (uc *CatalogUsecase) Delete(ctx context.Context, tenantID, codigo string) (*domain.Product, error) {
	ctx, cancel := storeContext(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	old, err := uc.repo.Delete(ctx, tenantID, codigo)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}

	metrics.ProductsDeleted.Inc()
	uc.publish(ctx, domain.EventProductDeleted, old)
	return old, nil
}

// Filter returns one page matching every predicate in filter.
func (uc *CatalogUsecase) Filter(ctx context.Context, tenantID string, filter domain.ProductFilter, req PageRequest) (*PageResult, error) {
	return uc.page(ctx, tenantID, req, filter)
}

// ListByCategory returns active products of one category. Unknown categories
// simply match nothing.
func (uc *CatalogUsecase) ListByCategory(ctx context.Context, tenantID, categoria string, req PageRequest) (*PageResult, error) {
	return uc.page(ctx, tenantID, req, domain.ProductFilter{Categoria: categoria, SoloActivos: true})
}

func (uc *CatalogUsecase) ListBySubcategory(ctx context.Context, tenantID, subcategoria string, req PageRequest) (*PageResult, error) {
	return uc.page(ctx, tenantID, req, domain.ProductFilter{Subcategoria: subcategoria, SoloActivos: true})
}

func (uc *CatalogUsecase) Taxonomy() domain.Taxonomy {
	return uc.validator.Taxonomy()
}

// Subcategories returns the registered subcategories of categoria.
func (uc *CatalogUsecase) Subcategories(categoria string) ([]string, error) {
	subs, ok := uc.validator.Taxonomy().Lookup(categoria)
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return subs, nil
}
