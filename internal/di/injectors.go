//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"onegoodthing/internal"
	"onegoodthing/internal/controllers"
	"onegoodthing/internal/providers"
	"onegoodthing/internal/services"
	"onegoodthing/internal/statistic"
	"onegoodthing/internal/storage"
	"onegoodthing/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewAuthProvider,
		providers.NewCompletionProvider,
		providers.NewNotifier,

		storage.NewStore,
		storage.NewSnapshotter,

		services.NewRevisions,
		services.NewDayResolver,
		services.NewProfileService,
		services.NewInsightService,
		services.NewJournalService,
		services.NewStatsService,
		services.NewReminderService,

		statistic.NewZstdCompressor,
		statistic.NewFileManager,
		statistic.NewScheduler,

		controllers.NewEntryController,
		controllers.NewStatsController,
		controllers.NewAIController,
		controllers.NewProfileController,
		controllers.NewReminderController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewHandler,
		internal.NewApp,
	)

	return nil, nil
}
