// Package renderer builds the HTML documents the publisher pushes to the
// site builder. Catalog data comes from the repositories, storefront copy
// for the static pages from embedded markdown, and every Firestore-sourced
// rich-text field is sanitized before templating.
package renderer

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	domain "github.com/HUSIN-Network/systemeio-publisher/internal/domain"
	"github.com/HUSIN-Network/systemeio-publisher/internal/repositories"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed content/*.md
var contentFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

const (
	defaultFeaturedLimit = 6
	defaultLocale        = "en"
)

// Deps wires dependencies for the catalog renderer.
type Deps struct {
	Categories repositories.CategoryRepository
	Products   repositories.ProductRepository
	Bundles    repositories.BundleRepository

	// FeaturedLimit caps each featured section on the home page.
	FeaturedLimit int
	// Locale is a BCP 47 tag driving price formatting and the lang attribute.
	Locale string
	// ContentDir optionally overrides the embedded static page markdown.
	ContentDir string

	Logger *zap.Logger
}

// Renderer produces one HTML document per storefront page.
type Renderer struct {
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
	bundles    repositories.BundleRepository

	featuredLimit int
	lang          string
	printer       *message.Printer
	contentDir    string

	policy    *bluemonday.Policy
	markdown  goldmark.Markdown
	templates *template.Template
	logger    *zap.Logger
}

// New validates the dependencies and constructs a Renderer.
func New(deps Deps) (*Renderer, error) {
	if deps.Categories == nil {
		return nil, errors.New("renderer: category repository is required")
	}
	if deps.Products == nil {
		return nil, errors.New("renderer: product repository is required")
	}
	if deps.Bundles == nil {
		return nil, errors.New("renderer: bundle repository is required")
	}

	limit := deps.FeaturedLimit
	if limit <= 0 {
		limit = defaultFeaturedLimit
	}

	locale := strings.TrimSpace(deps.Locale)
	if locale == "" {
		locale = defaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("renderer: parse locale %q: %w", locale, err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Renderer{
		categories:    deps.Categories,
		products:      deps.Products,
		bundles:       deps.Bundles,
		featuredLimit: limit,
		lang:          tag.String(),
		printer:       message.NewPrinter(tag),
		contentDir:    strings.TrimSpace(deps.ContentDir),
		policy:        newContentPolicy(),
		markdown:      newMarkdown(),
		templates:     pageTemplates,
		logger:        logger,
	}, nil
}

// HomePage renders the landing page with featured categories, products, and bundles.
func (r *Renderer) HomePage(ctx context.Context) (string, error) {
	categories, err := r.categories.ListFeatured(ctx, r.featuredLimit)
	if err != nil {
		return "", fmt.Errorf("renderer: featured categories: %w", err)
	}
	products, err := r.products.ListFeatured(ctx, r.featuredLimit)
	if err != nil {
		return "", fmt.Errorf("renderer: featured products: %w", err)
	}
	bundles, err := r.bundles.ListFeatured(ctx, r.featuredLimit)
	if err != nil {
		return "", fmt.Errorf("renderer: featured bundles: %w", err)
	}

	return r.execute("home.tmpl", homeData{
		Lang:       r.lang,
		Categories: r.categoryCards(categories),
		Products:   r.productCards(products),
		Bundles:    r.bundleCards(bundles),
	})
}

// CategoriesPage renders the full category index.
func (r *Renderer) CategoriesPage(ctx context.Context) (string, error) {
	categories, err := r.categories.ListApproved(ctx)
	if err != nil {
		return "", fmt.Errorf("renderer: approved categories: %w", err)
	}
	return r.execute("categories.tmpl", categoriesData{
		Lang:       r.lang,
		Categories: r.categoryCards(categories),
	})
}

// ProductsPage renders the product index with every approved product.
func (r *Renderer) ProductsPage(ctx context.Context) (string, error) {
	products, err := r.products.ListApproved(ctx)
	if err != nil {
		return "", fmt.Errorf("renderer: approved products: %w", err)
	}
	return r.execute("products.tmpl", productsData{
		Lang:     r.lang,
		Products: r.productCards(products),
	})
}

// BundlesPage renders the bundle index with per-bundle savings.
func (r *Renderer) BundlesPage(ctx context.Context) (string, error) {
	bundles, err := r.bundles.ListApproved(ctx)
	if err != nil {
		return "", fmt.Errorf("renderer: approved bundles: %w", err)
	}
	return r.execute("bundles.tmpl", bundlesData{
		Lang:    r.lang,
		Bundles: r.bundleCards(bundles),
	})
}

// SearchPage renders the search shell; the site builder fills the results container.
func (r *Renderer) SearchPage(ctx context.Context) (string, error) {
	return r.execute("search.tmpl", searchData{Lang: r.lang})
}

// StaticPage renders one of the optional pages (contact, terms, privacy)
// from markdown, preferring an override in the content directory over the
// embedded copy.
func (r *Renderer) StaticPage(ctx context.Context, name domain.PageName) (string, error) {
	switch name {
	case domain.PageContact, domain.PageTerms, domain.PagePrivacy:
	default:
		return "", fmt.Errorf("renderer: %q is not a static page", name)
	}

	doc, err := r.loadStaticDocument(name)
	if err != nil {
		return "", err
	}
	return r.execute("static.tmpl", staticData{
		Lang:  r.lang,
		Title: doc.Title,
		Body:  doc.Body,
	})
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("renderer: execute %s: %w", name, err)
	}
	return buf.String(), nil
}

func (r *Renderer) categoryCards(categories []domain.Category) []categoryCard {
	cards := make([]categoryCard, 0, len(categories))
	for _, category := range categories {
		cards = append(cards, categoryCard{
			Name:        category.Name,
			Description: r.richText(category.Description),
		})
	}
	return cards
}

func (r *Renderer) productCards(products []domain.Product) []productCard {
	cards := make([]productCard, 0, len(products))
	for _, product := range products {
		cards = append(cards, productCard{
			Name:        product.Name,
			ImageURL:    strings.TrimSpace(product.ImageURL),
			Description: r.richText(product.Description),
			Price:       r.formatSAR(product.PriceHalalas),
		})
	}
	return cards
}

func (r *Renderer) bundleCards(bundles []domain.Bundle) []bundleCard {
	cards := make([]bundleCard, 0, len(bundles))
	for _, bundle := range bundles {
		card := bundleCard{
			Name:        bundle.Name,
			Description: r.richText(bundle.Description),
			Price:       r.formatSAR(bundle.PriceHalalas),
		}
		if savings := bundle.Savings(); savings > 0 {
			card.CompareAt = r.formatSAR(bundle.CompareAtHalalas)
			card.Savings = r.formatSAR(savings)
		}
		cards = append(cards, card)
	}
	return cards
}

// richText sanitizes Firestore-sourced rich text so it can bypass template escaping.
func (r *Renderer) richText(value string) template.HTML {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	return template.HTML(r.policy.Sanitize(trimmed))
}

// formatSAR renders halalas as a localized SAR amount, dropping the
// fraction when the amount is a whole riyal.
func (r *Renderer) formatSAR(halalas int64) string {
	riyals := halalas / 100
	fraction := halalas % 100
	if fraction == 0 {
		return r.printer.Sprintf("SAR %d", riyals)
	}
	return r.printer.Sprintf("SAR %d.%02d", riyals, fraction)
}

type homeData struct {
	Lang       string
	Categories []categoryCard
	Products   []productCard
	Bundles    []bundleCard
}

type categoriesData struct {
	Lang       string
	Categories []categoryCard
}

type productsData struct {
	Lang     string
	Products []productCard
}

type bundlesData struct {
	Lang    string
	Bundles []bundleCard
}

type searchData struct {
	Lang string
}

type staticData struct {
	Lang  string
	Title string
	Body  template.HTML
}

type categoryCard struct {
	Name        string
	Description template.HTML
}

type productCard struct {
	Name        string
	ImageURL    string
	Description template.HTML
	Price       string
}

type bundleCard struct {
	Name        string
	Description template.HTML
	Price       string
	CompareAt   string
	Savings     string
}
