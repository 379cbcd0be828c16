package providers

import (
	"fmt"
	"github.com/spf13/viper"
	"onegoodthing/internal/structures"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultAIBaseURL = "https://ai.gateway.lovable.dev/v1"
	defaultAIModel   = "google/gemini-2.5-flash"
	defaultMailAPI   = "https://api.resend.com/emails"
)

var envBindings = map[string]string{
	"logger.level":               "OGT_LOG_LEVEL",
	"webServer.port":             "OGT_PORT",
	"storage.driver":             "OGT_STORAGE_DRIVER",
	"storage.dsn":                "OGT_DATABASE_URL",
	"storage.supabaseUrl":        "OGT_SUPABASE_URL",
	"storage.supabaseServiceKey": "OGT_SUPABASE_SERVICE_ROLE_KEY",
	"storage.saveInterval":       "OGT_SAVE_INTERVAL",
	"auth.jwtSecret":             "OGT_JWT_SECRET",
	"auth.supabaseUrl":           "OGT_SUPABASE_URL",
	"auth.anonKey":               "OGT_SUPABASE_ANON_KEY",
	"ai.enabled":                 "OGT_AI_ENABLED",
	"ai.apiKey":                  "OGT_AI_API_KEY",
	"ai.baseUrl":                 "OGT_AI_BASE_URL",
	"ai.model":                   "OGT_AI_MODEL",
	"mail.enabled":               "OGT_MAIL_ENABLED",
	"mail.apiKey":                "OGT_RESEND_API_KEY",
	"mail.from":                  "OGT_MAIL_FROM",
	"reminders.enabled":          "OGT_REMINDERS_ENABLED",
	"cache.enabled":              "OGT_CACHE_ENABLED",
	"cache.size":                 "OGT_CACHE_SIZE",
	"metrics.enabled":            "OGT_METRICS_ENABLED",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.defaultTimezone", "UTC")
	v.SetDefault("app.heatmapMonths", 2)
	v.SetDefault("app.insightDays", 30)
	v.SetDefault("app.insightMinimum", 3)
	v.SetDefault("app.topThemes", 5)
	v.SetDefault("app.maxGridDays", 366)
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.maxOpenConns", 10)
	v.SetDefault("storage.saveInterval", 30*time.Second)
	v.SetDefault("storage.timeout", 10*time.Second)
	v.SetDefault("ai.baseUrl", defaultAIBaseURL)
	v.SetDefault("ai.model", defaultAIModel)
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.rateLimit", 2.0)
	v.SetDefault("ai.burst", 4)
	v.SetDefault("ai.retries", 2)
	v.SetDefault("mail.apiUrl", defaultMailAPI)
	v.SetDefault("mail.timeout", 10*time.Second)
	v.SetDefault("reminders.schedule", "0 * * * *")
	v.SetDefault("reminders.reengagementSchedule", "0 10 * * 1")
	v.SetDefault("reminders.followupSchedule", "0 10 * * *")
	v.SetDefault("cache.ttl", 60*time.Second)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	conf.Debug = flags.DebugMode
	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "OneGoodThing"
	conf.Path = flags.ConfigPath

	return &conf, nil
}
