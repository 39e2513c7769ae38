package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/HUSIN-Network/systemeio-publisher/internal/domain"
	"github.com/HUSIN-Network/systemeio-publisher/internal/sitebuilder"
)

// CatalogRenderer produces the HTML document for each storefront page.
type CatalogRenderer interface {
	HomePage(ctx context.Context) (string, error)
	CategoriesPage(ctx context.Context) (string, error)
	ProductsPage(ctx context.Context) (string, error)
	BundlesPage(ctx context.Context) (string, error)
	SearchPage(ctx context.Context) (string, error)
	StaticPage(ctx context.Context, name domain.PageName) (string, error)
}

// PageUpdater abstracts sitebuilder.Client for easier testing.
type PageUpdater interface {
	UpdatePage(ctx context.Context, page sitebuilder.PageUpdate) error
}

// PublisherServiceDeps wires dependencies for the publisher service.
type PublisherServiceDeps struct {
	Renderer CatalogRenderer
	Updater  PageUpdater

	// PageIDs maps logical pages to remote page identifiers. A mandatory
	// page without an identifier is skipped with a log line; an optional
	// page without one is not attempted at all.
	PageIDs map[domain.PageName]string

	Clock       func() time.Time
	IDGenerator func() string
	Logger      *zap.Logger
}

// PublishReport summarizes one publish cycle. It exists for logging; page
// failures never surface as errors.
type PublishReport struct {
	RunID     string
	Published int
	Skipped   int
	Failed    int
	Elapsed   time.Duration
}

// PublisherService runs the sequential publish cycle over the fixed page list.
type PublisherService struct {
	renderer CatalogRenderer
	updater  PageUpdater
	pageIDs  map[domain.PageName]string
	clock    func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// NewPublisherService validates the dependencies and constructs a PublisherService.
func NewPublisherService(deps PublisherServiceDeps) (*PublisherService, error) {
	if deps.Renderer == nil {
		return nil, errors.New("publisher service: renderer is required")
	}
	if deps.Updater == nil {
		return nil, errors.New("publisher service: page updater is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return "run_" + ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pageIDs := make(map[domain.PageName]string, len(deps.PageIDs))
	for name, id := range deps.PageIDs {
		pageIDs[name] = strings.TrimSpace(id)
	}

	return &PublisherService{
		renderer: deps.Renderer,
		updater:  deps.Updater,
		pageIDs:  pageIDs,
		clock:    func() time.Time { return clock().UTC() },
		newID:    idGen,
		logger:   logger,
	}, nil
}

// PublishAll runs one publish cycle: the five catalog pages in fixed order,
// then every configured optional static page. Each page is independent; a
// render or update failure is logged, counted, and the cycle moves on. The
// returned error is non-nil only when the context ends between pages.
func (s *PublisherService) PublishAll(ctx context.Context) (PublishReport, error) {
	started := s.clock()
	report := PublishReport{RunID: s.newID()}
	logger := s.logger.With(zap.String("run_id", report.RunID))

	logger.Info("publishing approved content")

	for _, name := range domain.MandatoryPages() {
		if err := ctx.Err(); err != nil {
			report.Elapsed = s.clock().Sub(started)
			return report, err
		}
		s.publishPage(ctx, logger, &report, name)
	}

	for _, name := range domain.StaticPages() {
		if err := ctx.Err(); err != nil {
			report.Elapsed = s.clock().Sub(started)
			return report, err
		}
		if s.pageIDs[name] == "" {
			continue
		}
		s.publishPage(ctx, logger, &report, name)
	}

	report.Elapsed = s.clock().Sub(started)
	logger.Info("publish cycle complete",
		zap.Int("published", report.Published),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", report.Elapsed))
	return report, nil
}

func (s *PublisherService) publishPage(ctx context.Context, logger *zap.Logger, report *PublishReport, name domain.PageName) {
	pageID := s.pageIDs[name]
	if pageID == "" {
		logger.Info("skipping page, no page id configured", zap.String("page", string(name)))
		report.Skipped++
		return
	}

	html, err := s.renderPage(ctx, name)
	if err != nil {
		logger.Warn("page render failed", zap.String("page", string(name)), zap.Error(err))
		report.Failed++
		return
	}

	update := sitebuilder.PageUpdate{
		Name:   string(name),
		PageID: pageID,
		HTML:   html,
	}
	if err := s.updater.UpdatePage(ctx, update); err != nil {
		logger.Warn("page update failed", zap.String("page", string(name)), zap.Error(err))
		report.Failed++
		return
	}
	report.Published++
}

func (s *PublisherService) renderPage(ctx context.Context, name domain.PageName) (string, error) {
	switch name {
	case domain.PageHome:
		return s.renderer.HomePage(ctx)
	case domain.PageCategories:
		return s.renderer.CategoriesPage(ctx)
	case domain.PageProducts:
		return s.renderer.ProductsPage(ctx)
	case domain.PageBundles:
		return s.renderer.BundlesPage(ctx)
	case domain.PageSearch:
		return s.renderer.SearchPage(ctx)
	case domain.PageContact, domain.PageTerms, domain.PagePrivacy:
		return s.renderer.StaticPage(ctx, name)
	default:
		return "", fmt.Errorf("publisher service: unknown page %q", name)
	}
}
