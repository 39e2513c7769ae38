package repositories

import (
	"context"

	domain "github.com/HUSIN-Network/systemeio-publisher/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CategoryRepository reads curated catalog categories.
type CategoryRepository interface {
	// ListApproved returns every approved category ordered for display.
	ListApproved(ctx context.Context) ([]domain.Category, error)
	// ListFeatured returns up to limit approved categories flagged as featured.
	ListFeatured(ctx context.Context, limit int) ([]domain.Category, error)
}

// ProductRepository reads curated catalog products.
type ProductRepository interface {
	ListApproved(ctx context.Context) ([]domain.Product, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
}

// BundleRepository reads curated product bundles.
type BundleRepository interface {
	ListApproved(ctx context.Context) ([]domain.Bundle, error)
	ListFeatured(ctx context.Context, limit int) ([]domain.Bundle, error)
}
