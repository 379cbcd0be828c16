package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type AppConfig struct {
	DefaultTimezone string `yaml:"defaultTimezone" mapstructure:"defaultTimezone"`
	HeatmapMonths   int    `yaml:"heatmapMonths" mapstructure:"heatmapMonths"`
	InsightDays     int    `yaml:"insightDays" mapstructure:"insightDays"`
	InsightMinimum  int    `yaml:"insightMinimum" mapstructure:"insightMinimum"`
	TopThemes       int    `yaml:"topThemes" mapstructure:"topThemes"`
	MaxGridDays     int    `yaml:"maxGridDays" mapstructure:"maxGridDays"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

// StorageConfig selects the entry store. Snapshot settings apply to the
// memory driver only.
type StorageConfig struct {
	Driver             string        `yaml:"driver" validate:"required|in:memory,postgres,supabase"`
	DSN                string        `yaml:"dsn"`
	MaxOpenConns       int           `yaml:"maxOpenConns" mapstructure:"maxOpenConns"`
	SupabaseURL        string        `yaml:"supabaseUrl" mapstructure:"supabaseUrl"`
	SupabaseServiceKey string        `yaml:"supabaseServiceKey" mapstructure:"supabaseServiceKey"`
	SnapshotFile       string        `yaml:"snapshotFile" mapstructure:"snapshotFile"`
	SaveInterval       time.Duration `yaml:"saveInterval" mapstructure:"saveInterval"`
	Timeout            time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	JWTSecret   string `yaml:"jwtSecret" mapstructure:"jwtSecret"`
	SupabaseURL string `yaml:"supabaseUrl" mapstructure:"supabaseUrl"`
	AnonKey     string `yaml:"anonKey" mapstructure:"anonKey"`
	Issuer      string `yaml:"issuer"`
}

type AIConfig struct {
	Enabled   bool          `yaml:"enabled"`
	BaseURL   string        `yaml:"baseUrl" mapstructure:"baseUrl"`
	APIKey    string        `yaml:"apiKey" mapstructure:"apiKey"`
	Model     string        `yaml:"model"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rateLimit" mapstructure:"rateLimit"`
	Burst     int           `yaml:"burst"`
	Retries   int           `yaml:"retries"`
}

type MailConfig struct {
	Enabled bool          `yaml:"enabled"`
	APIURL  string        `yaml:"apiUrl" mapstructure:"apiUrl"`
	APIKey  string        `yaml:"apiKey" mapstructure:"apiKey"`
	From    string        `yaml:"from"`
	AppURL  string        `yaml:"appUrl" mapstructure:"appUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// RemindersConfig holds cron specs for the mail jobs. An empty spec turns
// that job off.
type RemindersConfig struct {
	Enabled              bool   `yaml:"enabled"`
	Schedule             string `yaml:"schedule"`
	ReengagementSchedule string `yaml:"reengagementSchedule"`
	FollowupSchedule     string `yaml:"followupSchedule"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName   string
	Debug     bool
	Path      string
	App       AppConfig       `yaml:"app"`
	WebServer Server          `yaml:"webServer" mapstructure:"webServer"`
	Logger    LoggerConfig    `yaml:"logger"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	AI        AIConfig        `yaml:"ai"`
	Mail      MailConfig      `yaml:"mail"`
	Reminders RemindersConfig `yaml:"reminders"`
	Cache     CacheConfig     `yaml:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}
