package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type SchedulerConfig struct {
	PollInterval         time.Duration `mapstructure:"poll_interval"`
	LookAhead            time.Duration `mapstructure:"look_ahead"`
	SummaryHour          int           `mapstructure:"summary_hour"`
	SummaryMinute        int           `mapstructure:"summary_minute"`
	Timezone             string        `mapstructure:"timezone"`
	CalendarID           string        `mapstructure:"calendar_id"`
	CustomerWindowMinMin int           `mapstructure:"customer_window_min_minutes"`
	CustomerWindowMaxMin int           `mapstructure:"customer_window_max_minutes"`
	AdminWindowMinMin    int           `mapstructure:"admin_window_min_minutes"`
	AdminWindowMaxMin    int           `mapstructure:"admin_window_max_minutes"`
	DedupBackend         string        `mapstructure:"dedup_backend"`
	DedupTTL             time.Duration `mapstructure:"dedup_ttl"`
}

type TelegramConfig struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	PollTimeout    time.Duration `mapstructure:"poll_timeout"`
	SendRatePerSec float64       `mapstructure:"send_rate_per_sec"`
	SendBurst      int           `mapstructure:"send_burst"`
}

type GoogleConfig struct {
	AuthURL       string `mapstructure:"auth_url"`
	TokenURL      string `mapstructure:"token_url"`
	CalendarURL   string `mapstructure:"calendar_url"`
	SheetsURL     string `mapstructure:"sheets_url"`
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
	SheetRange    string `mapstructure:"sheet_range"`
}

type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Google    GoogleConfig    `mapstructure:"google"`
	Email     EmailConfig     `mapstructure:"email"`
}

// Secrets are never read from config files.
type Secrets struct {
	TelegramToken      string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
	OAuthRedirectURL   string `envconfig:"OAUTH_REDIRECT_URL"`
	StateSigningKey    string `envconfig:"OAUTH_STATE_KEY" required:"true"`
	CredentialsKey     string `envconfig:"CREDENTIALS_ENCRYPTION_KEY" required:"true"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/app")
	viper.AddConfigPath("/app/config")

	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Scheduler.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to load secrets from environment: %w", err)
	}
	return &s, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 10*time.Second)
	viper.SetDefault("server.write_timeout", 10*time.Second)
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("scheduler.poll_interval", 10*time.Minute)
	viper.SetDefault("scheduler.look_ahead", 2*time.Hour)
	viper.SetDefault("scheduler.summary_hour", 8)
	viper.SetDefault("scheduler.summary_minute", 0)
	viper.SetDefault("scheduler.calendar_id", "primary")
	viper.SetDefault("scheduler.customer_window_min_minutes", 50)
	viper.SetDefault("scheduler.customer_window_max_minutes", 70)
	viper.SetDefault("scheduler.admin_window_min_minutes", 10)
	viper.SetDefault("scheduler.admin_window_max_minutes", 20)
	viper.SetDefault("scheduler.dedup_backend", "memory")
	viper.SetDefault("scheduler.dedup_ttl", 3*time.Hour)

	viper.SetDefault("telegram.api_base_url", "https://api.telegram.org")
	viper.SetDefault("telegram.poll_timeout", 30*time.Second)
	viper.SetDefault("telegram.send_rate_per_sec", 25)
	viper.SetDefault("telegram.send_burst", 5)

	viper.SetDefault("google.auth_url", "https://accounts.google.com/o/oauth2/auth")
	viper.SetDefault("google.token_url", "https://oauth2.googleapis.com/token")
	viper.SetDefault("google.calendar_url", "https://www.googleapis.com/calendar/v3")
	viper.SetDefault("google.sheets_url", "https://sheets.googleapis.com/v4")
	viper.SetDefault("google.sheet_range", "Bookings!A:H")
}

func (c SchedulerConfig) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("scheduler.poll_interval must be positive")
	}
	if c.SummaryHour < 0 || c.SummaryHour > 23 || c.SummaryMinute < 0 || c.SummaryMinute > 59 {
		return fmt.Errorf("invalid scheduler summary time %02d:%02d", c.SummaryHour, c.SummaryMinute)
	}
	if c.CustomerWindowMinMin > c.CustomerWindowMaxMin {
		return fmt.Errorf("scheduler customer reminder window is inverted")
	}
	if c.AdminWindowMinMin > c.AdminWindowMaxMin {
		return fmt.Errorf("scheduler admin alert window is inverted")
	}
	return nil
}

// Location resolves the configured timezone, defaulting to the process local
// zone when unset or invalid.
func (c SchedulerConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
