package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"shop-chat-agent/internal/domain"
)

type fakeReader struct {
	products      []domain.Product
	categories    []domain.Category
	err           error
	productCalls  int
	categoryCalls int
}

func (f *fakeReader) GetAllProducts(context.Context) ([]domain.Product, error) {
	f.productCalls++
	return f.products, f.err
}

func (f *fakeReader) ListCategories(context.Context) ([]domain.Category, error) {
	f.categoryCalls++
	return f.categories, f.err
}

func products(names ...string) []domain.Product {
	out := make([]domain.Product, 0, len(names))
	for i, n := range names {
		out = append(out, domain.Product{ID: domain.ID(string(rune('a' + i))), Name: n})
	}
	return out
}

func TestFindProduct_ExactBeatsSubstring(t *testing.T) {
	r := NewResolver(&fakeReader{products: products("iPhone 15 Pro", "iPhone 15")})

	got := r.FindProduct(context.Background(), "  iphone 15 ")
	require.True(t, got.Found())
	require.Equal(t, "iPhone 15", got.Value.Name)
}

func TestFindProduct_Tiers(t *testing.T) {
	reader := &fakeReader{products: products("iPhone 15", "iPhone 15 Pro", "Samsung Galaxy S24 Ultra", "Samsung Galaxy S23")}
	r := NewResolver(reader)

	cases := map[string]string{
		"iphone":        "iPhone 15",
		"15 pro":        "iPhone 15 Pro",
		"samsung ultra": "Samsung Galaxy S24 Ultra",
		"s23 galaxy":    "Samsung Galaxy S23",
	}
	for query, want := range cases {
		got := r.FindProduct(context.Background(), query)
		require.True(t, got.Found(), query)
		require.Equal(t, want, got.Value.Name, query)
	}

	got := r.FindProduct(context.Background(), "pixel")
	require.Equal(t, LookupNotFound, got.Status)
}

func TestFindCategory_NoWordTier(t *testing.T) {
	r := NewResolver(&fakeReader{categories: []domain.Category{{ID: "c1", Name: "Điện thoại"}, {ID: "c2", Name: "Laptop gaming"}}})

	got := r.FindCategory(context.Background(), "ĐIỆN THOẠI")
	require.True(t, got.Found())
	require.Equal(t, domain.ID("c1"), got.Value.ID)

	got = r.FindCategory(context.Background(), "gaming")
	require.Equal(t, domain.ID("c2"), got.Value.ID)

	got = r.FindCategory(context.Background(), "thoại điện")
	require.Equal(t, LookupNotFound, got.Status)
}

func TestResolver_FailedIsDistinctFromNotFound(t *testing.T) {
	reader := &fakeReader{err: errors.New("connection refused")}
	r := NewResolver(reader)

	p := r.FindProduct(context.Background(), "iphone")
	require.False(t, p.Found())
	require.Equal(t, LookupFailed, p.Status)
	require.EqualError(t, p.Err, "connection refused")

	c := r.FindCategory(context.Background(), "laptop")
	require.Equal(t, LookupFailed, c.Status)
	require.Equal(t, "failed", c.Status.String())
}

func TestResolver_EmptyQuerySkipsFetch(t *testing.T) {
	reader := &fakeReader{products: products("iPhone 15")}
	r := NewResolver(reader)

	got := r.FindProduct(context.Background(), "   ")
	require.Equal(t, LookupNotFound, got.Status)
	require.Zero(t, reader.productCalls)
}
