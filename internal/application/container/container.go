// Package container provides dependency injection for all singleton services
package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/fundroad/fundroad-go/internal/application/services"
	"github.com/fundroad/fundroad-go/internal/infrastructure/caching/sessions"
	"github.com/fundroad/fundroad-go/internal/infrastructure/content"
	schema "github.com/fundroad/fundroad-go/internal/infrastructure/database"
	"github.com/fundroad/fundroad-go/internal/infrastructure/email"
	"github.com/fundroad/fundroad-go/internal/infrastructure/media"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/logging"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/metrics"
	"github.com/fundroad/fundroad-go/internal/infrastructure/observability/performance"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/database"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/progress"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/resources"
	"github.com/fundroad/fundroad-go/internal/infrastructure/persistence/user"
	"github.com/fundroad/fundroad-go/internal/infrastructure/security"
	"github.com/fundroad/fundroad-go/internal/infrastructure/storage"
	"github.com/fundroad/fundroad-go/internal/infrastructure/translation"
	"github.com/fundroad/fundroad-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Journey and navigation
	JourneyService    *services.JourneyService
	NavigationService *services.NavigationService
	RoadmapService    *services.RoadmapService
	FinancingService  *services.FinancingService

	// User data
	ResourceService   *services.ResourceService
	AttachmentService *services.AttachmentService
	AuthService       *services.AuthService

	// Edge functions
	TranslationService *services.TranslationService
	ContactService     *services.ContactService

	// Infrastructure Dependencies
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
	Metrics     *metrics.Registry
	DB          *database.DB
	Sessions    *sessions.Store
	Content     *content.Content
}

// Dependencies are the infrastructure pieces built before the container.
// Store, Sender and Translator are optional; their features answer
// "not configured" when nil.
type Dependencies struct {
	Logger     *logging.ChanneledLogger
	DB         *database.DB
	Content    *content.Content
	Store      storage.ObjectStore
	Sender     email.Sender
	Translator translation.Translator
	JWTSecret  string
}

// NewContainer creates and wires all singleton services
func NewContainer(deps Dependencies) *Container {
	logger := deps.Logger
	registry := metrics.NewRegistry()

	trackerConfig := performance.DefaultTrackerConfig()
	trackerConfig.Retention = config.PerformanceRetention
	perfTracker := performance.NewTracker(trackerConfig, registry)

	store := sessions.NewStore(config.SessionTTL, config.MaxSessions, logger)
	catalog := deps.Content.Catalog

	progressRepo := progress.NewSQLProgressRepository(deps.DB, logger)
	resourceRepo := resources.NewSQLResourceRepository(deps.DB, logger)
	attachmentRepo := resources.NewSQLAttachmentRepository(deps.DB, logger)
	userRepo := user.NewSQLUserRepository(deps.DB, logger)

	journeyService := services.NewJourneyService(catalog, progressRepo, logger, perfTracker, registry)
	navigationService := services.NewNavigationService(store, logger)

	return &Container{
		JourneyService:    journeyService,
		NavigationService: navigationService,
		RoadmapService:    services.NewRoadmapService(journeyService, navigationService),
		FinancingService:  services.NewFinancingService(deps.Content.Financing),

		ResourceService: services.NewResourceService(resourceRepo, catalog, navigationService, logger, perfTracker),
		AttachmentService: services.NewAttachmentService(attachmentRepo, catalog, deps.Store,
			media.NewImageProcessor(config.ThumbnailWidth), config.MaxUploadBytes, config.S3PresignTTL, logger, perfTracker),
		AuthService: services.NewAuthService(userRepo, deps.JWTSecret, config.JWTTTL, logger, perfTracker),

		TranslationService: services.NewTranslationService(deps.Translator, config.FunctionTimeout, logger, perfTracker),
		ContactService:     services.NewContactService(deps.Sender, config.ContactRecipients, logger, perfTracker),

		Logger:      logger,
		PerfTracker: perfTracker,
		Metrics:     registry,
		DB:          deps.DB,
		Sessions:    store,
		Content:     deps.Content,
	}
}

// NewLoggerFromConfig builds the channeled logger from the LOG_* settings.
func NewLoggerFromConfig() (*logging.ChanneledLogger, error) {
	loggerConfig := logging.DefaultLoggerConfig()
	loggerConfig.DefaultLevel = logging.ParseLevel(config.LogLevel)
	loggerConfig.JSONFormat = !strings.EqualFold(config.LogFormat, "text")
	loggerConfig.OutputToFile = config.LogToFile
	loggerConfig.LogDirectory = config.LogDirectory
	return logging.NewChanneledLogger(loggerConfig)
}

// OpenDatabase connects with the configured driver and creates the schema.
func OpenDatabase(ctx context.Context, logger *logging.ChanneledLogger) (*database.DB, error) {
	dsn := database.DataSourceName(config.DBDriver, config.DatabaseURL, config.DBAuthToken)
	db, err := database.NewConnectionWithLogger(ctx, config.DBDriver, dsn, database.DefaultOptions(), logger)
	if err != nil {
		return nil, err
	}
	if err := database.TestConnectionWithLogger(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}
	if err := schema.NewTableCreator().CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return db, nil
}

// NewObjectStore returns the S3 store, or nil when no bucket is configured.
func NewObjectStore(ctx context.Context, logger *logging.ChanneledLogger) (storage.ObjectStore, error) {
	if config.S3Bucket == "" {
		logger.Storage().Warn("S3_BUCKET not set, attachments are disabled")
		return nil, nil
	}
	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:          config.S3Bucket,
		Region:          config.S3Region,
		Endpoint:        config.S3Endpoint,
		AccessKeyID:     config.S3AccessKeyID,
		SecretAccessKey: config.S3SecretAccessKey,
	}, logger)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewSender returns the Resend client, or nil when no API key is configured.
func NewSender(logger *logging.ChanneledLogger) email.Sender {
	client, err := email.NewResendClient(config.ResendAPIKey, config.ContactEmailFrom, config.ContactEmailName)
	if err != nil {
		logger.Functions().Warn("Contact emails are disabled", "reason", err.Error())
		return nil
	}
	return client
}

// NewTranslator picks the provider named by TRANSLATION_PROVIDER. It returns
// nil when the provider has no API key.
func NewTranslator(logger *logging.ChanneledLogger) translation.Translator {
	switch strings.ToLower(config.TranslationProvider) {
	case "lemur", "assemblyai":
		if config.AAIAPIKey == "" {
			logger.Functions().Warn("AAI_API_KEY not set, translation is disabled")
			return nil
		}
		return translation.NewLeMURClient(config.AAIAPIKey, config.LeMURModel)
	case "deepl":
		if config.DeepLAPIKey == "" {
			logger.Functions().Warn("DEEPL_API_KEY not set, translation is disabled")
			return nil
		}
		return translation.NewDeepLClient(config.DeepLAPIKey, config.DeepLAPIURL, config.FunctionTimeout)
	default:
		logger.Functions().Warn("Unknown translation provider, translation is disabled", "provider", config.TranslationProvider)
		return nil
	}
}

// ResolveJWTSecret returns JWT_SECRET, or a random per-process secret when it
// is unset. Tokens signed with a random secret do not survive a restart.
func ResolveJWTSecret(logger *logging.ChanneledLogger) (string, error) {
	if config.JWTSecret != "" {
		return config.JWTSecret, nil
	}
	secret, err := security.GenerateSecureKey(64)
	if err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	logger.Auth().Warn("JWT_SECRET not set, using a random secret; sessions end on restart")
	return secret, nil
}
