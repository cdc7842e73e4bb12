package memory

import (
	"context"
	"sort"
	"sync"

	"farmacia-catalogo/internal/domain"
)

// productRepository keeps the catalog in process. Paging follows the DynamoDB
// model: Limit caps the items evaluated before the filter runs, so a page may
// hold fewer items than Limit while NextKey is still set.
type productRepository struct {
	mu    sync.RWMutex
	items map[string]map[string]domain.Product // tenant -> codigo -> product
}

func NewProductRepository() domain.ProductRepository {
	return &productRepository{items: make(map[string]map[string]domain.Product)}
}

func (r *productRepository) Get(_ context.Context, tenantID, codigo string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[tenantID][codigo]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	out := p.Clone()
	return &out, nil
}

func (r *productRepository) Put(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store(product)
	return nil
}

func (r *productRepository) Insert(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[product.TenantID][product.Codigo]; exists {
		return domain.ErrCodeConflict
	}
	r.store(product)
	return nil
}

// store must be called with the write lock held.
func (r *productRepository) store(product *domain.Product) {
	partition, ok := r.items[product.TenantID]
	if !ok {
		partition = make(map[string]domain.Product)
		r.items[product.TenantID] = partition
	}
	partition[product.Codigo] = product.Clone()
}

func (r *productRepository) Update(_ context.Context, tenantID, codigo string, patch *domain.ProductPatch) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[tenantID][codigo]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	updated := patch.Apply(current)
	r.items[tenantID][codigo] = updated

	out := updated.Clone()
	return &out, nil
}

func (r *productRepository) Delete(_ context.Context, tenantID, codigo string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.items[tenantID][codigo]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	delete(r.items[tenantID], codigo)
	return &old, nil
}

// sortedKeys returns the partition's sort keys in traversal order.
// Must be called with the read lock held.
func (r *productRepository) sortedKeys(tenantID string, ascending bool) []string {
	partition := r.items[tenantID]
	keys := make([]string, 0, len(partition))
	for k := range partition {
		keys = append(keys, k)
	}
	if ascending {
		sort.Strings(keys)
	} else {
		sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	}
	return keys
}

func (r *productRepository) Query(ctx context.Context, tenantID string, opts domain.QueryOptions) (*domain.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := r.sortedKeys(tenantID, opts.Ascending)

	start := 0
	if opts.StartKey != nil {
		// Exclusive start: skip everything up to and including the key.
		start = sort.Search(len(keys), func(i int) bool {
			if opts.Ascending {
				return keys[i] > opts.StartKey.Codigo
			}
			return keys[i] < opts.StartKey.Codigo
		})
	}

	page := &domain.Page{Items: []domain.Product{}}
	partition := r.items[tenantID]
	evaluated := 0
	for i := start; i < len(keys); i++ {
		p := partition[keys[i]]
		evaluated++
		if opts.Filter.Matches(&p) {
			page.Items = append(page.Items, p.Clone())
		}
		if opts.Limit > 0 && evaluated == int(opts.Limit) {
			if i < len(keys)-1 {
				page.NextKey = &domain.Cursor{TenantID: tenantID, Codigo: keys[i]}
			}
			break
		}
	}
	return page, nil
}

func (r *productRepository) QueryAll(ctx context.Context, tenantID string) ([]domain.Product, error) {
	page, err := r.Query(ctx, tenantID, domain.QueryOptions{})
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}
