package repository

import (
	"context"
	"errors"
	"time"

	"farmacia-catalogo/internal/domain"
	"farmacia-catalogo/internal/metrics"
	"farmacia-catalogo/pkg/logger"
)

// instrumented wraps a store adapter with latency metrics and store logs.
type instrumented struct {
	next domain.ProductRepository
}

func NewInstrumented(next domain.ProductRepository) domain.ProductRepository {
	return &instrumented{next: next}
}

func observe(ctx context.Context, op, tenantID, codigo string, start time.Time, err error) {
	elapsed := time.Since(start)
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrCodeConflict):
		// Expected outcomes, not store failures.
		outcome = "miss"
		err = nil
	default:
		outcome = "error"
	}
	metrics.StoreDuration.WithLabelValues(op, outcome).Observe(elapsed.Seconds())
	logger.StoreOp(ctx, op, tenantID, codigo, elapsed, err)
}

func (r *instrumented) Get(ctx context.Context, tenantID, codigo string) (p *domain.Product, err error) {
	defer func(start time.Time) { observe(ctx, "get", tenantID, codigo, start, err) }(time.Now())
	return r.next.Get(ctx, tenantID, codigo)
}

func (r *instrumented) Put(ctx context.Context, product *domain.Product) (err error) {
	defer func(start time.Time) { observe(ctx, "put", product.TenantID, product.Codigo, start, err) }(time.Now())
	return r.next.Put(ctx, product)
}

func (r *instrumented) Insert(ctx context.Context, product *domain.Product) (err error) {
	defer func(start time.Time) { observe(ctx, "insert", product.TenantID, product.Codigo, start, err) }(time.Now())
	return r.next.Insert(ctx, product)
}

func (r *instrumented) Update(ctx context.Context, tenantID, codigo string, patch *domain.ProductPatch) (p *domain.Product, err error) {
	defer func(start time.Time) { observe(ctx, "update", tenantID, codigo, start, err) }(time.Now())
	return r.next.Update(ctx, tenantID, codigo, patch)
}

func (r *instrumented) Delete(ctx context.Context, tenantID, codigo string) (p *domain.Product, err error) {
	defer func(start time.Time) { observe(ctx, "delete", tenantID, codigo, start, err) }(time.Now())
	return r.next.Delete(ctx, tenantID, codigo)
}

func (r *instrumented) Query(ctx context.Context, tenantID string, opts domain.QueryOptions) (p *domain.Page, err error) {
	defer func(start time.Time) { observe(ctx, "query", tenantID, "", start, err) }(time.Now())
	return r.next.Query(ctx, tenantID, opts)
}

func (r *instrumented) QueryAll(ctx context.Context, tenantID string) (p []domain.Product, err error) {
	defer func(start time.Time) { observe(ctx, "query_all", tenantID, "", start, err) }(time.Now())
	return r.next.QueryAll(ctx, tenantID)
}
