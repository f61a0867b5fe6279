package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"shop-chat-agent/internal/domain"
)

type LookupStatus int

const (
	LookupNotFound LookupStatus = iota
	LookupFound
	// LookupFailed means the candidate list could not be fetched.
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupFailed:
		return "failed"
	default:
		return "not_found"
	}
}

// Lookup is the result of a name lookup. Callers that only care whether an
// entity was found use Found; LookupFailed and LookupNotFound both report false.
type Lookup[T any] struct {
	Value  T
	Status LookupStatus
	Err    error
}

func (l Lookup[T]) Found() bool {
	return l.Status == LookupFound
}

// CatalogReader supplies the candidate lists for name lookups.
type CatalogReader interface {
	GetAllProducts(ctx context.Context) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Resolver finds products and categories by approximate name against a
// freshly fetched catalog.
type Resolver struct {
	catalog CatalogReader
}

func NewResolver(catalog CatalogReader) *Resolver {
	return &Resolver{catalog: catalog}
}

// FindProduct matches by exact name, then substring, then all query words.
func (r *Resolver) FindProduct(ctx context.Context, name string) Lookup[domain.Product] {
	query := normalizeName(name)
	if query == "" {
		return Lookup[domain.Product]{Status: LookupNotFound}
	}
	products, err := r.catalog.GetAllProducts(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("product lookup failed")
		return Lookup[domain.Product]{Status: LookupFailed, Err: err}
	}
	p, ok := matchByName(products, query, func(p domain.Product) string { return p.Name }, true)
	if !ok {
		return Lookup[domain.Product]{Status: LookupNotFound}
	}
	return Lookup[domain.Product]{Value: p, Status: LookupFound}
}

// FindCategory matches by exact name, then substring.
func (r *Resolver) FindCategory(ctx context.Context, name string) Lookup[domain.Category] {
	query := normalizeName(name)
	if query == "" {
		return Lookup[domain.Category]{Status: LookupNotFound}
	}
	categories, err := r.catalog.ListCategories(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("category lookup failed")
		return Lookup[domain.Category]{Status: LookupFailed, Err: err}
	}
	c, ok := matchByName(categories, query, func(c domain.Category) string { return c.Name }, false)
	if !ok {
		return Lookup[domain.Category]{Status: LookupNotFound}
	}
	return Lookup[domain.Category]{Value: c, Status: LookupFound}
}

// matchByName walks the tiers in order; within a tier the first candidate in
// fetch order wins.
func matchByName[T any](candidates []T, query string, name func(T) string, byWords bool) (T, bool) {
	var zero T
	for _, c := range candidates {
		if strings.ToLower(name(c)) == query {
			return c, true
		}
	}
	for _, c := range candidates {
		if strings.Contains(strings.ToLower(name(c)), query) {
			return c, true
		}
	}
	if !byWords {
		return zero, false
	}
	words := strings.Fields(query)
	for _, c := range candidates {
		if containsAll(strings.ToLower(name(c)), words) {
			return c, true
		}
	}
	return zero, false
}

func containsAll(text string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
