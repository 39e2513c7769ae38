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

const bundlesCollection = "bundles"

// BundleRepository reads curated product bundles from Firestore.
type BundleRepository struct {
	base *pfirestore.BaseRepository[domain.Bundle]
}

// NewBundleRepository constructs a Firestore-backed bundle repository.
func NewBundleRepository(provider *pfirestore.Provider) (*BundleRepository, error) {
	if provider == nil {
		return nil, errors.New("bundle repository: firestore provider is required")
	}

	encoder := func(ctx context.Context, value domain.Bundle) (any, error) {
		return encodeBundleDocument(value), nil
	}
	decoder := func(ctx context.Context, snap *firestore.DocumentSnapshot) (domain.Bundle, error) {
		var doc bundleDocument
		if err := snap.DataTo(&doc); err != nil {
			return domain.Bundle{}, err
		}
		doc.ID = snap.Ref.ID
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = snap.CreateTime
		}
		if doc.UpdatedAt.IsZero() {
			doc.UpdatedAt = snap.UpdateTime
		}
		return decodeBundleDocument(doc), nil
	}

	base := pfirestore.NewBaseRepository[domain.Bundle](provider, bundlesCollection, encoder, decoder)
	return &BundleRepository{base: base}, nil
}

// ListApproved returns every approved bundle ordered by name.
func (r *BundleRepository) ListApproved(ctx context.Context) ([]domain.Bundle, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("bundle repository not initialised")
	}
	docs, err := r.base.Query(ctx, func(q firestore.Query) firestore.Query {
		return q.Where("approved", "==", true).OrderBy("name", firestore.Asc)
	})
	if err != nil {
		return nil, err
	}
	return collectBundles(docs), nil
}

// ListFeatured returns up to limit approved bundles flagged for the storefront.
func (r *BundleRepository) ListFeatured(ctx context.Context, limit int) ([]domain.Bundle, error) {
	if r == nil || r.base == nil {
		return nil, errors.New("bundle repository not initialised")
	}
	if limit <= 0 {
		return nil, errors.New("bundle repository: limit must be positive")
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
	return collectBundles(docs), nil
}

func collectBundles(docs []pfirestore.Document[domain.Bundle]) []domain.Bundle {
	bundles := make([]domain.Bundle, 0, len(docs))
	for _, doc := range docs {
		bundles = append(bundles, doc.Data)
	}
	return bundles
}

func encodeBundleDocument(bundle domain.Bundle) bundleDocument {
	return bundleDocument{
		Name:             strings.TrimSpace(bundle.Name),
		Slug:             strings.TrimSpace(bundle.Slug),
		Description:      strings.TrimSpace(bundle.Description),
		ProductIDs:       cloneStrings(bundle.ProductIDs),
		PriceHalalas:     bundle.PriceHalalas,
		CompareAtHalalas: bundle.CompareAtHalalas,
		Featured:         bundle.Featured,
		Approved:         bundle.Approved,
		CreatedAt:        bundle.CreatedAt.UTC(),
		UpdatedAt:        bundle.UpdatedAt.UTC(),
	}
}

func decodeBundleDocument(doc bundleDocument) domain.Bundle {
	return domain.Bundle{
		ID:               doc.ID,
		Name:             doc.Name,
		Slug:             doc.Slug,
		Description:      doc.Description,
		ProductIDs:       cloneStrings(doc.ProductIDs),
		PriceHalalas:     doc.PriceHalalas,
		CompareAtHalalas: doc.CompareAtHalalas,
		Featured:         doc.Featured,
		Approved:         doc.Approved,
		CreatedAt:        doc.CreatedAt.UTC(),
		UpdatedAt:        doc.UpdatedAt.UTC(),
	}
}

type bundleDocument struct {
	ID               string    `firestore:"-"`
	Name             string    `firestore:"name"`
	Slug             string    `firestore:"slug"`
	Description      string    `firestore:"description,omitempty"`
	ProductIDs       []string  `firestore:"productIds,omitempty"`
	PriceHalalas     int64     `firestore:"priceHalalas"`
	CompareAtHalalas int64     `firestore:"compareAtHalalas,omitempty"`
	Featured         bool      `firestore:"featured"`
	Approved         bool      `firestore:"approved"`
	CreatedAt        time.Time `firestore:"createdAt"`
	UpdatedAt        time.Time `firestore:"updatedAt"`
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

var _ repositories.BundleRepository = (*BundleRepository)(nil)
