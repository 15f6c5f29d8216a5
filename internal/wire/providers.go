package wire

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"travelgram/internal/ai"
	"travelgram/internal/common"
	"travelgram/internal/config"
	"travelgram/internal/dbmongo"
	"travelgram/internal/feed"
	"travelgram/internal/media"
	"travelgram/internal/observability"
	"travelgram/internal/storage"
	"travelgram/internal/user"
)

type Application struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics

	Mongo    *dbmongo.MongoClient
	Assets   *dbmongo.AssetRepository
	DB       *gorm.DB
	Verifier common.TokenVerifier

	Users     *user.Handler
	Media     *MediaHandlers
	Feed      *feed.FeedHandlers
	AI        *ai.Handler
	AILimiter *common.RateLimiter
}

// MediaHandlers holds one upload handler per media kind
type MediaHandlers struct {
	Images *media.Handler
	Audio  *media.Handler
}

func ProvideBlobStore(ctx context.Context, cfg *config.Config, mc *dbmongo.MongoClient, logger *zap.Logger) (common.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "", "gridfs":
		return dbmongo.NewMediaStorage(mc), nil
	case "s3":
		return storage.NewS3Store(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func ProvideTokenVerifier(ctx context.Context, cfg *config.Config) (common.TokenVerifier, error) {
	switch cfg.Auth.Provider {
	case "", "firebase":
		return common.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFilePath)
	case "jwt":
		return common.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}

func ProvideStager(cfg *config.Config) *media.Stager {
	return media.NewStager(cfg.Upload.TempDir)
}

func ProvideMediaService(assets *dbmongo.AssetRepository, blobs common.BlobStore, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) *media.Service {
	return media.NewService(assets, blobs, media.Limits{
		ImageMaxBytes: cfg.Upload.ImageMaxBytes,
		AudioMaxBytes: cfg.Upload.AudioMaxBytes,
	}, logger, metrics)
}

func ProvideMediaHandlers(svc *media.Service, stager *media.Stager, logger *zap.Logger) *MediaHandlers {
	return &MediaHandlers{
		Images: media.NewHandler(common.MediaKindImage, svc, stager, logger),
		Audio:  media.NewHandler(common.MediaKindAudio, svc, stager, logger),
	}
}

func ProvideFeedService(assets *dbmongo.AssetRepository, users user.UserService, cfg *config.Config, logger *zap.Logger) *feed.FeedService {
	return feed.NewFeedService(assets, users, feed.Options{
		Limit:             cfg.Feed.Limit,
		CorrelationWindow: cfg.Feed.CorrelationWindow,
		Concurrency:       cfg.Feed.Concurrency,
	}, logger)
}

func ProvideFeedHandlers(svc *feed.FeedService, cfg *config.Config, logger *zap.Logger) *feed.FeedHandlers {
	return &feed.FeedHandlers{FeedSvc: svc, PublicBaseURL: cfg.Server.PublicBaseURL, Logger: logger}
}

func ProvideImageSource(assets *dbmongo.AssetRepository, blobs common.BlobStore, cfg *config.Config) *ai.ImageSource {
	return ai.NewImageSource(&http.Client{Timeout: cfg.Gemini.Timeout}, assets, blobs)
}

func ProvideGeminiClient(cfg *config.Config, logger *zap.Logger) *ai.GeminiClient {
	return ai.NewGeminiClient(cfg.Gemini, logger)
}

func ProvideAIService(images *ai.ImageSource, gemini *ai.GeminiClient, logger *zap.Logger, metrics *observability.Metrics) *ai.Service {
	return ai.NewService(images, gemini, logger, metrics)
}

// ProvideAILimiter allows short bursts of a few relays per user
func ProvideAILimiter(cfg *config.Config, logger *zap.Logger) *common.RateLimiter {
	burst := cfg.Gemini.RatePerMinute / 4
	if burst < 1 {
		burst = 1
	}
	return common.NewRateLimiter(cfg.Gemini.RatePerMinute, burst, logger)
}
