package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"farmacia-catalogo/config"
	"farmacia-catalogo/internal/domain"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	SortRelevance = "relevancia"
	SortPriceAsc  = "precio_asc"
	SortPriceDesc = "precio_desc"
	SortName      = "nombre"

	minSearchTermLength = 2
)

var SortOptions = []string{SortRelevance, SortPriceAsc, SortPriceDesc, SortName}

// ErrSearchTermTooShort is returned for terms under two characters after trimming.
var ErrSearchTermTooShort = domain.NewValidationError("Término de búsqueda requerido (mínimo 2 caracteres)")

// ScoredProduct is a search hit with its in-page relevance score.
type ScoredProduct struct {
	domain.Product
	Relevancia int `json:"relevancia"`
}

type SearchRequest struct {
	Term string
	Sort string
	Page PageRequest
}

type SearchResult struct {
	Items   []ScoredProduct
	Term    string // normalized
	Sort    string // normalized
	NextKey string
	HasMore bool
	Limit   int
}

type SearchUsecase struct {
	repo domain.ProductRepository
	cfg  *config.Config
}

func NewSearchUsecase(repo domain.ProductRepository, cfg *config.Config) *SearchUsecase {
	return &SearchUsecase{repo: repo, cfg: cfg}
}

// NormalizeSort maps unknown criteria to relevance.
func NormalizeSort(s string) string {
	for _, opt := range SortOptions {
		if s == opt {
			return s
		}
	}
	return SortRelevance
}

// Search finds active products whose searchable fields contain the term,
// then scores and sorts the returned page. Ordering is local to the page.
func (uc *SearchUsecase) Search(ctx context.Context, tenantID string, req SearchRequest) (*SearchResult, error) {
	term := strings.TrimSpace(req.Term)
	if utf8.RuneCountInString(term) < minSearchTermLength {
		return nil, ErrSearchTermTooShort
	}
	term = strings.ToLower(term)
	sortBy := NormalizeSort(req.Sort)

	opts, limit, err := queryOptions(uc.cfg, tenantID, req.Page, domain.ProductFilter{Termino: term, SoloActivos: true})
	if err != nil {
		return nil, err
	}
	opts.Ascending = sortBy != SortPriceDesc

	ctx, cancel := storeContext(ctx, uc.cfg.StoreTimeout)
	defer cancel()

	page, err := uc.repo.Query(ctx, tenantID, opts)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	next, err := domain.EncodeCursor(page.NextKey)
	if err != nil {
		return nil, err
	}

	hits := make([]ScoredProduct, len(page.Items))
	for i, p := range page.Items {
		hits[i] = ScoredProduct{Product: p, Relevancia: Score(&p, term)}
	}
	SortHits(hits, sortBy)

	return &SearchResult{
		Items:   hits,
		Term:    term,
		Sort:    sortBy,
		NextKey: next,
		HasMore: page.HasMore(),
		Limit:   limit,
	}, nil
}

// Score rates how well p matches the lowercased term.
func Score(p *domain.Product, term string) int {
	nombre := strings.ToLower(p.Nombre)
	score := 0
	if strings.Contains(nombre, term) {
		score += 10
	}
	if strings.HasPrefix(nombre, term) {
		score += 15
	}
	if strings.Contains(strings.ToLower(p.Descripcion), term) {
		score += 5
	}
	if strings.Contains(strings.ToLower(p.Categoria), term) {
		score += 3
	}
	if p.Subcategoria != nil && strings.Contains(strings.ToLower(*p.Subcategoria), term) {
		score += 3
	}
	if strings.Contains(strings.ToLower(p.Laboratorio), term) {
		score += 2
	}
	return score
}

// SortHits orders hits in place by the given criterion.
func SortHits(hits []ScoredProduct, sortBy string) {
	switch sortBy {
	case SortPriceAsc:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Precio < hits[j].Precio })
	case SortPriceDesc:
		sort.SliceStable(hits, func(i, j int) bool { return hits[i].Precio > hits[j].Precio })
	case SortName:
		// A collator is not safe for concurrent use; build one per call.
		c := collate.New(language.Spanish)
		sort.SliceStable(hits, func(i, j int) bool { return c.CompareString(hits[i].Nombre, hits[j].Nombre) < 0 })
	default:
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].Relevancia != hits[j].Relevancia {
				return hits[i].Relevancia > hits[j].Relevancia
			}
			return hits[i].Precio < hits[j].Precio
		})
	}
}
