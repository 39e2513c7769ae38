package domain

import (
	"time"
)

// CurrencySAR is the storefront currency code. Monetary amounts are stored
// as int64 halalas (1 SAR = 100 halalas).
const CurrencySAR = "SAR"

// PageName identifies one logical storefront page managed by the publisher.
type PageName string

const (
	// PageHome is the storefront landing page with featured sections.
	PageHome PageName = "home"
	// PageCategories lists every approved category.
	PageCategories PageName = "categories"
	// PageProducts introduces the curated product catalog.
	PageProducts PageName = "products"
	// PageBundles lists every approved bundle with savings.
	PageBundles PageName = "bundles"
	// PageSearch hosts the client-side search shell.
	PageSearch PageName = "search"
	// PageContact is an optional static page.
	PageContact PageName = "contact"
	// PageTerms is an optional static page.
	PageTerms PageName = "terms"
	// PagePrivacy is an optional static page.
	PagePrivacy PageName = "privacy"
)

// MandatoryPages returns the pages every publish cycle attempts, in order.
func MandatoryPages() []PageName {
	return []PageName{PageHome, PageCategories, PageProducts, PageBundles, PageSearch}
}

// StaticPages returns the optional static pages attempted only when a page
// identifier is configured, in order.
func StaticPages() []PageName {
	return []PageName{PageContact, PageTerms, PagePrivacy}
}

// Category is a curated storefront category read from the document store.
type Category struct {
	ID          string
	Name        string
	Slug        string
	Description string
	Featured    bool
	Approved    bool
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Product is a curated storefront product read from the document store.
type Product struct {
	ID           string
	Name         string
	Slug         string
	Description  string
	CategoryID   string
	ImageURL     string
	PriceHalalas int64
	Featured     bool
	Approved     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Bundle groups products sold together at a discounted price.
type Bundle struct {
	ID               string
	Name             string
	Slug             string
	Description      string
	ProductIDs       []string
	PriceHalalas     int64
	CompareAtHalalas int64
	Featured         bool
	Approved         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Savings reports how many halalas the bundle saves against its compare-at
// price. It never goes negative.
func (b Bundle) Savings() int64 {
	if b.CompareAtHalalas <= b.PriceHalalas {
		return 0
	}
	return b.CompareAtHalalas - b.PriceHalalas
}
