package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	domain "github.com/HUSIN-Network/systemeio-publisher/internal/domain"
	"github.com/HUSIN-Network/systemeio-publisher/internal/platform/config"
	pfirestore "github.com/HUSIN-Network/systemeio-publisher/internal/platform/firestore"
	"github.com/HUSIN-Network/systemeio-publisher/internal/platform/observability"
	"github.com/HUSIN-Network/systemeio-publisher/internal/platform/secrets"
	"github.com/HUSIN-Network/systemeio-publisher/internal/renderer"
	firestoreRepo "github.com/HUSIN-Network/systemeio-publisher/internal/repositories/firestore"
	"github.com/HUSIN-Network/systemeio-publisher/internal/services"
	"github.com/HUSIN-Network/systemeio-publisher/internal/sitebuilder"
)

func main() {
	startedAt := time.Now().UTC()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("publisher")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = observability.WithLogger(ctx, logger)

	envValues, err := config.EnvironmentValues()
	if err != nil {
		logger.Fatal("failed to read environment values", zap.Error(err))
	}

	fetcher, err := newSecretFetcher(ctx, logger, envValues)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx,
		config.WithSecretResolver(config.SecretResolverFunc(fetcher.Resolve)),
		config.WithRequiredSecrets("Systeme.APIKey"),
	)
	if err != nil {
		var missing *config.MissingSecretsError
		if errors.As(err, &missing) {
			logger.Fatal("missing required secrets", zap.Strings("secrets", missing.RedactedNames()))
		}
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("configuration incomplete", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	if _, err := firestoreProvider.Client(ctx); err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	categoryRepo, err := firestoreRepo.NewCategoryRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise category repository", zap.Error(err))
	}
	productRepo, err := firestoreRepo.NewProductRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise product repository", zap.Error(err))
	}
	bundleRepo, err := firestoreRepo.NewBundleRepository(firestoreProvider)
	if err != nil {
		logger.Fatal("failed to initialise bundle repository", zap.Error(err))
	}

	catalogRenderer, err := renderer.New(renderer.Deps{
		Categories:    categoryRepo,
		Products:      productRepo,
		Bundles:       bundleRepo,
		FeaturedLimit: cfg.Publisher.FeaturedLimit,
		Locale:        cfg.Publisher.Locale,
		ContentDir:    cfg.Publisher.ContentDir,
		Logger:        logger.Named("renderer"),
	})
	if err != nil {
		logger.Fatal("failed to initialise renderer", zap.Error(err))
	}

	siteClient, err := sitebuilder.NewClient(sitebuilder.Config{
		BaseURL:   cfg.Systeme.BaseURL,
		WebsiteID: cfg.Systeme.WebsiteID,
		APIKey:    cfg.Systeme.APIKey,
		Timeout:   cfg.Publisher.HTTPTimeout,
		Logger:    logger.Named("sitebuilder"),
	})
	if err != nil {
		logger.Fatal("failed to initialise site builder client", zap.Error(err))
	}

	publisher, err := services.NewPublisherService(services.PublisherServiceDeps{
		Renderer: catalogRenderer,
		Updater:  siteClient,
		PageIDs:  pageIDsFromConfig(cfg.Pages),
		Clock:    time.Now,
		Logger:   logger.Named("publish"),
	})
	if err != nil {
		logger.Fatal("failed to initialise publisher service", zap.Error(err))
	}

	report, err := publisher.PublishAll(ctx)
	if err != nil {
		logger.Fatal("publish cycle interrupted",
			zap.String("run_id", report.RunID),
			zap.Int("published", report.Published),
			zap.Int("skipped", report.Skipped),
			zap.Int("failed", report.Failed),
			zap.Error(err))
	}

	logger.Info("publisher finished",
		zap.String("run_id", report.RunID),
		zap.Int("published", report.Published),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", time.Since(startedAt)))
}

func pageIDsFromConfig(pages config.PageConfig) map[domain.PageName]string {
	return map[domain.PageName]string{
		domain.PageHome:       pages.Home,
		domain.PageCategories: pages.Categories,
		domain.PageProducts:   pages.Products,
		domain.PageBundles:    pages.Bundles,
		domain.PageSearch:     pages.Search,
		domain.PageContact:    pages.Contact,
		domain.PageTerms:      pages.Terms,
		domain.PagePrivacy:    pages.Privacy,
	}
}

func newSecretFetcher(ctx context.Context, logger *zap.Logger, env map[string]string) (*secrets.Fetcher, error) {
	lookup := func(key string) string {
		if env == nil {
			return ""
		}
		if value, ok := env[key]; ok {
			return strings.TrimSpace(value)
		}
		return ""
	}

	defaultProject := lookup("SECRETS_PROJECT_ID")
	if defaultProject == "" {
		defaultProject = lookup("APP_ID")
	}
	fallbackPath := lookup("SECRETS_FALLBACK_FILE")
	credentialsFile := lookup("SERVICE_ACCOUNT_PATH")

	opts := []secrets.Option{
		secrets.WithLogger(logger.Named("secrets")),
	}
	if defaultProject != "" {
		opts = append(opts, secrets.WithDefaultProject(defaultProject))
	}
	if fallbackPath != "" {
		opts = append(opts, secrets.WithFallbackFile(fallbackPath))
	}
	if credentialsFile != "" {
		opts = append(opts, secrets.WithClientOptions(option.WithCredentialsFile(credentialsFile)))
	}

	return secrets.NewFetcher(ctx, opts...)
}
