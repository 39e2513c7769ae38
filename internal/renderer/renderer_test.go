package renderer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	domain "github.com/HUSIN-Network/systemeio-publisher/internal/domain"
)

type stubCategoryRepo struct {
	approved []domain.Category
	featured []domain.Category
	limit    int
	err      error
}

func (s *stubCategoryRepo) ListApproved(ctx context.Context) ([]domain.Category, error) {
	return s.approved, s.err
}

func (s *stubCategoryRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Category, error) {
	s.limit = limit
	return s.featured, s.err
}

type stubProductRepo struct {
	approved []domain.Product
	featured []domain.Product
	err      error
}

func (s *stubProductRepo) ListApproved(ctx context.Context) ([]domain.Product, error) {
	return s.approved, s.err
}

func (s *stubProductRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.featured, s.err
}

type stubBundleRepo struct {
	approved []domain.Bundle
	featured []domain.Bundle
	err      error
}

func (s *stubBundleRepo) ListApproved(ctx context.Context) ([]domain.Bundle, error) {
	return s.approved, s.err
}

func (s *stubBundleRepo) ListFeatured(ctx context.Context, limit int) ([]domain.Bundle, error) {
	return s.featured, s.err
}

func newTestRenderer(t *testing.T, deps Deps) *Renderer {
	t.Helper()

	if deps.Categories == nil {
		deps.Categories = &stubCategoryRepo{}
	}
	if deps.Products == nil {
		deps.Products = &stubProductRepo{}
	}
	if deps.Bundles == nil {
		deps.Bundles = &stubBundleRepo{}
	}

	r, err := New(deps)
	require.NoError(t, err)
	return r
}

func parseHTML(t *testing.T, body string) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	return doc
}

func TestNewValidatesDeps(t *testing.T) {
	t.Parallel()

	_, err := New(Deps{Products: &stubProductRepo{}, Bundles: &stubBundleRepo{}})
	require.Error(t, err, "missing category repository must fail")

	_, err = New(Deps{
		Categories: &stubCategoryRepo{},
		Products:   &stubProductRepo{},
		Bundles:    &stubBundleRepo{},
		Locale:     "not a locale",
	})
	require.Error(t, err, "invalid locale tag must fail")
}

func TestHomePageRendersFeaturedSections(t *testing.T) {
	t.Parallel()

	categories := &stubCategoryRepo{featured: []domain.Category{
		{ID: "cat-1", Name: "Electronics", Description: "Gadgets and devices."},
	}}
	products := &stubProductRepo{featured: []domain.Product{
		{ID: "prod-1", Name: "Smart Watch", PriceHalalas: 129900, ImageURL: "https://cdn.example.com/watch.jpg"},
		{ID: "prod-2", Name: "Electric Kettle", PriceHalalas: 8950},
	}}
	bundles := &stubBundleRepo{featured: []domain.Bundle{
		{ID: "bun-1", Name: "Starter Bundle", PriceHalalas: 24900, CompareAtHalalas: 28800},
	}}

	r := newTestRenderer(t, Deps{Categories: categories, Products: products, Bundles: bundles, FeaturedLimit: 4})

	html, err := r.HomePage(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, categories.limit, "configured featured limit must reach the repository")

	doc := parseHTML(t, html)
	require.Equal(t, 1, doc.Find("div.husin-home").Length())
	require.Equal(t, "HUSIN — Curated Deals in Saudi Arabia", doc.Find(".hero h1").Text())
	require.Contains(t, doc.Find(".hero p").Text(), "All prices in Saudi Riyal (SAR).")

	sections := doc.Find(".section-block h2")
	require.Equal(t, 3, sections.Length())
	require.Equal(t, "Featured Categories", sections.Eq(0).Text())
	require.Equal(t, "Featured Products", sections.Eq(1).Text())
	require.Equal(t, "Featured Bundles", sections.Eq(2).Text())

	require.Equal(t, 1, doc.Find(".category-card").Length())
	require.Equal(t, 2, doc.Find(".product-card").Length())
	require.Equal(t, 1, doc.Find(".bundle-card").Length())

	prices := doc.Find(".product-card .price")
	require.Equal(t, "SAR 1,299", prices.Eq(0).Text(), "whole riyal amounts drop the fraction and group thousands")
	require.Equal(t, "SAR 89.50", prices.Eq(1).Text())

	watch := doc.Find(".product-card").Eq(0)
	require.Equal(t, "https://cdn.example.com/watch.jpg", watch.Find("img").AttrOr("src", ""))
	require.Equal(t, "lazy", watch.Find("img").AttrOr("loading", ""))
	require.Equal(t, 0, doc.Find(".product-card").Eq(1).Find("img").Length(), "products without images must not render an img tag")
}

func TestHomePageSanitizesDescriptions(t *testing.T) {
	t.Parallel()

	categories := &stubCategoryRepo{featured: []domain.Category{
		{ID: "cat-1", Name: "Electronics", Description: `<script>alert(1)</script><p class="lead">Hand-picked gadgets.</p>`},
	}}

	r := newTestRenderer(t, Deps{Categories: categories, Products: &stubProductRepo{}, Bundles: &stubBundleRepo{}})

	html, err := r.HomePage(context.Background())
	require.NoError(t, err)

	doc := parseHTML(t, html)
	require.Equal(t, 0, doc.Find(".category-card script").Length(), "script tags must be stripped")
	lead := doc.Find(".category-card p.lead")
	require.Equal(t, 1, lead.Length(), "allowed markup must survive sanitization")
	require.Equal(t, "Hand-picked gadgets.", lead.Text())
}

func TestCategoriesPageListsApproved(t *testing.T) {
	t.Parallel()

	categories := &stubCategoryRepo{approved: []domain.Category{
		{ID: "cat-1", Name: "Electronics"},
		{ID: "cat-2", Name: "Home & Kitchen"},
		{ID: "cat-3", Name: "Beauty"},
	}}

	r := newTestRenderer(t, Deps{Categories: categories, Products: &stubProductRepo{}, Bundles: &stubBundleRepo{}})

	html, err := r.CategoriesPage(context.Background())
	require.NoError(t, err)

	doc := parseHTML(t, html)
	require.Equal(t, 1, doc.Find("div.husin-categories").Length())
	require.Equal(t, "All Categories", doc.Find("h1").Text())

	cards := doc.Find(".card-grid .category-card h3")
	require.Equal(t, 3, cards.Length())
	require.Equal(t, "Home & Kitchen", cards.Eq(1).Text())
}

func TestProductsPageShowsIntroAndGrid(t *testing.T) {
	t.Parallel()

	products := &stubProductRepo{approved: []domain.Product{
		{ID: "prod-1", Name: "Smart Watch", PriceHalalas: 129900},
	}}

	r := newTestRenderer(t, Deps{Categories: &stubCategoryRepo{}, Products: products, Bundles: &stubBundleRepo{}})

	html, err := r.ProductsPage(context.Background())
	require.NoError(t, err)

	doc := parseHTML(t, html)
	require.Equal(t, 1, doc.Find("div.husin-products").Length())
	require.Equal(t, "Our Products", doc.Find("h1").Text())
	require.Contains(t, doc.Find("div.husin-products > p").Text(), "Browse curated products approved by HUSIN for quality, margin, and reliability.")
	require.Equal(t, 1, doc.Find(".product-card").Length())
}

func TestBundlesPageShowsSavings(t *testing.T) {
	t.Parallel()

	bundles := &stubBundleRepo{approved: []domain.Bundle{
		{ID: "bun-1", Name: "Starter Bundle", PriceHalalas: 24900, CompareAtHalalas: 28800},
		{ID: "bun-2", Name: "Plain Bundle", PriceHalalas: 9900},
	}}

	r := newTestRenderer(t, Deps{Categories: &stubCategoryRepo{}, Products: &stubProductRepo{}, Bundles: bundles})

	html, err := r.BundlesPage(context.Background())
	require.NoError(t, err)

	doc := parseHTML(t, html)
	require.Equal(t, 1, doc.Find("div.husin-bundles").Length())
	require.Equal(t, "Bundles", doc.Find("h1").Text())
	require.Contains(t, doc.Find("div.husin-bundles > p").First().Text(), "Save more with curated product bundles.")

	starter := doc.Find(".bundle-card").Eq(0)
	require.Contains(t, starter.Find(".price").Text(), "SAR 249")
	require.Equal(t, "SAR 288", starter.Find(".compare-at").Text())
	require.Equal(t, "Save SAR 39", starter.Find(".savings").Text())

	plain := doc.Find(".bundle-card").Eq(1)
	require.Equal(t, 0, plain.Find(".compare-at").Length(), "bundles without a compare-at price must not show savings")
	require.Equal(t, 0, plain.Find(".savings").Length())
}

func TestSearchPageShell(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, Deps{})

	html, err := r.SearchPage(context.Background())
	require.NoError(t, err)

	doc := parseHTML(t, html)
	require.Equal(t, 1, doc.Find("div.husin-search").Length())
	require.Equal(t, "Search Results", doc.Find("h1").Text())

	results := doc.Find("#husin-search-results")
	require.Equal(t, 1, results.Length())
	require.Empty(t, results.Text(), "results container starts empty for client-side population")
}

func TestStaticPageEmbeddedDefaults(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, Deps{})

	cases := []struct {
		page  domain.PageName
		title string
		body  string
	}{
		{domain.PageContact, "Contact", "For inquiries, please reach out via the contact form on this page."},
		{domain.PageTerms, "Terms & Conditions", "These are the terms and conditions for using HUSIN services."},
		{domain.PagePrivacy, "Privacy Policy", "We respect your privacy and handle your data with care."},
	}

	for _, tc := range cases {
		html, err := r.StaticPage(context.Background(), tc.page)
		require.NoError(t, err, "static page %s", tc.page)

		doc := parseHTML(t, html)
		require.Equal(t, 1, doc.Find("div.husin-static").Length())
		require.Equal(t, tc.title, doc.Find("h1").Text())
		require.Contains(t, doc.Find(".static-body p").Text(), tc.body)
	}
}

func TestStaticPageOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	override := "---\ntitle: Store Terms\n---\n\nUpdated terms with **key points** below.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terms.md"), []byte(override), 0o644))

	r := newTestRenderer(t, Deps{ContentDir: dir})

	html, err := r.StaticPage(context.Background(), domain.PageTerms)
	require.NoError(t, err)

	doc := parseHTML(t, html)
	require.Equal(t, "Store Terms", doc.Find("h1").Text())
	require.Equal(t, "key points", doc.Find(".static-body strong").Text(), "markdown emphasis must render")
}

func TestStaticPageMalformedOverrideFallsBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	broken := "---\ntitle: [unterminated\n---\n\nBody.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terms.md"), []byte(broken), 0o644))

	r := newTestRenderer(t, Deps{ContentDir: dir})

	html, err := r.StaticPage(context.Background(), domain.PageTerms)
	require.NoError(t, err)

	doc := parseHTML(t, html)
	require.Equal(t, "Terms & Conditions", doc.Find("h1").Text(), "malformed override must fall back to embedded copy")
}

func TestStaticPageRejectsCatalogPages(t *testing.T) {
	t.Parallel()

	r := newTestRenderer(t, Deps{})

	_, err := r.StaticPage(context.Background(), domain.PageHome)
	require.Error(t, err)
}

func TestStaticPageOverrideWithoutTitleUsesSlug(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	override := "No front matter here, just a paragraph.\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "privacy.md"), []byte(override), 0o644))

	r := newTestRenderer(t, Deps{ContentDir: dir})

	html, err := r.StaticPage(context.Background(), domain.PagePrivacy)
	require.NoError(t, err)

	doc := parseHTML(t, html)
	require.Equal(t, "Privacy", doc.Find("h1").Text(), "missing title prettifies the slug")
}
