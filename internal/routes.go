package internal

import (
	"net/http"
	"onegoodthing/internal/controllers"
	"onegoodthing/internal/providers"
)

func InitRoutes(entries *controllers.EntryController, stats *controllers.StatsController, ai *controllers.AIController, profile *controllers.ProfileController, reminders *controllers.ReminderController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/api/entries", http.HandlerFunc(entries.List))
	routers.Post("/api/entries", http.HandlerFunc(entries.Create))
	routers.Post("/api/entries/delete", http.HandlerFunc(entries.Delete))
	routers.Get("/api/entries/export", http.HandlerFunc(entries.Export))

	routers.Get("/api/stats", http.HandlerFunc(stats.Overview))
	routers.Get("/api/stats/grid", http.HandlerFunc(stats.Grid))
	routers.Get("/api/insights", http.HandlerFunc(stats.Insights))
	routers.Get("/api/memories", http.HandlerFunc(stats.Memories))

	routers.Post("/api/reflections", http.HandlerFunc(ai.Reflect))
	routers.Post("/api/reflections/monthly", http.HandlerFunc(ai.MonthlyReflection))
	routers.Post("/api/insights/life", http.HandlerFunc(ai.LifeInsight))
	routers.Post("/api/quotes", http.HandlerFunc(ai.Quote))

	routers.Get("/api/profile", http.HandlerFunc(profile.Get))
	routers.Post("/api/profile", http.HandlerFunc(profile.Update))

	routers.Post("/api/reminders/test", http.HandlerFunc(reminders.Test))
	return routers
}
