package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"

	domain "github.com/HUSIN-Network/systemeio-publisher/internal/domain"
	pfirestore "github.com/HUSIN-Network/systemeio-publisher/internal/platform/firestore"
	"github.com/HUSIN-Network/systemeio-publisher/internal/repositories"
)

const productsCollection = "products"

// ProductRepository reads curated products from Firestore.
type ProductRepository struct {
	base *pfirestore.BaseRepository[domain.Product]
}

// NewProductRepository constructs a Firestore-backed product repository.
func NewProductRepository(provider *pfirestore.Provider) (*ProductRepository, error) {
	if provider == nil {
		return nil, errors.New("product repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Product) (any, error) {
		return encodeProductDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Product, error) {
		var doc productDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Product{}, err
		}
		doc.ID = snap.Ref.ID
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = snap.UpdateTime
		}
		return decodeProductDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.Product](provider, productsCollection, encoder, decoder)
	return &ProductRepository{base: base}, nil
}

// ListApproved returns every approved product ordered by name.
func (r *ProductRepository) ListApproved(ctx context.Context) ([]domain.Product, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("product repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("approved", "==", true).OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	return collectProducts(docs), nil
}

// ListFeatured returns up to limit approved products flagged for the storefront.
func (r *ProductRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("product repository not initialised")
	}
	if limit <= 0 {
		return nil, errors.New("product repository: limit must be positive")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("approved", "==", true).
			Where("featured", "==", true).
			OrderBy("name", firestore.Asc).
			Limit(limit)
	})
	if err != nil {
		return nil, err
	}
	return collectProducts(docs), nil
}

func collectProducts(docs []pfirestore.Document[domain.Product]) []domain.Product {
	products := make([]domain.Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.Data)
	}
	return products
}

func encodeProductDocument(product domain.Product) productDocument {
	return productDocument{
		Name:         strings.TrimSpace(product.Name),
		Slug:         strings.TrimSpace(product.Slug),
		Description:  strings.TrimSpace(product.Description),
		CategoryID:   strings.TrimSpace(product.CategoryID),
		ImageURL:     strings.TrimSpace(product.ImageURL),
		PriceHalalas: product.PriceHalalas,
		Featured:     product.Featured,
		Approved:     product.Approved,
		CreatedAt:    product.CreatedAt.UTC(),
		UpdatedAt:    product.UpdatedAt.UTC(),
	}
}

func decodeProductDocument(doc productDocument) domain.Product {
	return domain.Product{
		ID:           doc.ID,
		Name:         doc.Name,
		Slug:         doc.Slug,
		Description:  doc.Description,
		CategoryID:   doc.CategoryID,
		ImageURL:     doc.ImageURL,
		PriceHalalas: doc.PriceHalalas,
		Featured:     doc.Featured,
		Approved:     doc.Approved,
		CreatedAt:    doc.CreatedAt.UTC(),
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}
}

type productDocument struct {
	ID           string    `firestore:"-"`
	Name         string    `firestore:"name"`
	Slug         string    `firestore:"slug"`
	Description  string    `firestore:"description,omitempty"`
	CategoryID   string    `firestore:"categoryId,omitempty"`
	ImageURL     string    `firestore:"imageUrl,omitempty"`
	PriceHalalas int64     `firestore:"priceHalalas"`
	Featured     bool      `firestore:"featured"`
	Approved     bool      `firestore:"approved"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

var _ repositories.ProductRepository = (*ProductRepository)(nil)
