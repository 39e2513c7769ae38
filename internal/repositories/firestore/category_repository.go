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

const categoriesCollection = "categories"

// CategoryRepository reads curated categories from Firestore.
type CategoryRepository struct {
	base *pfirestore.BaseRepository[domain.Category]
}

// NewCategoryRepository constructs a Firestore-backed category repository.
func NewCategoryRepository(provider *pfirestore.Provider) (*CategoryRepository, error) {
	if provider == nil {
		return nil, errors.New("category repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Category) (any, error) {
		return encodeCategoryDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Category, error) {
		var doc categoryDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Category{}, err
		}
		doc.ID = snap.Ref.ID
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = snap.UpdateTime
		}
		return decodeCategoryDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.Category](provider, categoriesCollection, encoder, decoder)
	return &CategoryRepository{base: base}, nil
}

// ListApproved returns every approved category ordered by sort order, then name.
func (r *CategoryRepository) ListApproved(ctx context.Context) ([]domain.Category, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("category repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("approved", "==", true).
			OrderBy("sortOrder", firestore.Asc).
			OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	return collectCategories(docs), nil
}

// ListFeatured returns up to limit approved categories flagged for the storefront.
func (r *CategoryRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Category, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("category repository not initialised")
	}
	if limit <= 0 {
		return nil, errors.New("category repository: limit must be positive")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("approved", "==", true).
			Where("featured", "==", true).
			OrderBy("sortOrder", firestore.Asc).
			Limit(limit)
	})
	if err != nil {
		return nil, err
	}
	return collectCategories(docs), nil
}

func collectCategories(docs []pfirestore.Document[domain.Category]) []domain.Category {
	categories := make([]domain.Category, 0, len(docs))
	for _, doc := range docs {
		categories = append(categories, doc.Data)
	}
	return categories
}

func encodeCategoryDocument(category domain.Category) categoryDocument {
	return categoryDocument{
		Name:        strings.TrimSpace(category.Name),
		Slug:        strings.TrimSpace(category.Slug),
		Description: strings.TrimSpace(category.Description),
		Featured:    category.Featured,
		Approved:    category.Approved,
		SortOrder:   category.SortOrder,
		CreatedAt:   category.CreatedAt.UTC(),
		UpdatedAt:   category.UpdatedAt.UTC(),
	}
}

func decodeCategoryDocument(doc categoryDocument) domain.Category {
	return domain.Category{
		ID:          doc.ID,
		Name:        doc.Name,
		Slug:        doc.Slug,
		Description: doc.Description,
		Featured:    doc.Featured,
		Approved:    doc.Approved,
		SortOrder:   doc.SortOrder,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}

type categoryDocument struct {
	ID          string    `firestore:"-"`
	Name        string    `firestore:"name"`
	Slug        string    `firestore:"slug"`
	Description string    `firestore:"description,omitempty"`
	Featured    bool      `firestore:"featured"`
	Approved    bool      `firestore:"approved"`
	SortOrder   int       `firestore:"sortOrder"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

var _ repositories.CategoryRepository = (*CategoryRepository)(nil)
