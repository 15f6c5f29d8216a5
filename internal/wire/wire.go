//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"travelgram/internal/ai"
	"travelgram/internal/config"
	"travelgram/internal/dbmongo"
	"travelgram/internal/dbmysql"
	"travelgram/internal/observability"
	"travelgram/internal/user"
)

var storeSet = wire.NewSet(
	dbmongo.NewMongoConnection,
	dbmongo.NewAssetRepository,
	ProvideBlobStore,
	dbmysql.NewMySQL,
)

var userSet = wire.NewSet(
	user.NewUserRepository,
	user.NewFollowRepository,
	user.NewUserService,
	user.NewHandler,
)

var mediaSet = wire.NewSet(
	ProvideStager,
	ProvideMediaService,
	ProvideMediaHandlers,
	ProvideFeedService,
	ProvideFeedHandlers,
)

var aiSet = wire.NewSet(
	ProvideImageSource,
	ProvideGeminiClient,
	ProvideAIService,
	wire.Bind(new(ai.AIUsecase), new(*ai.Service)),
	ai.NewHandler,
	ProvideAILimiter,
)

func InitializeApplication(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Application, error) {
	wire.Build(
		observability.NewMetrics,
		storeSet,
		ProvideTokenVerifier,
		userSet,
		mediaSet,
		aiSet,
		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
