// Load envs from .env
// Load YAML config
// Validate config
// Provide default values

package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env  string `yaml:"env" env:"APP_ENV"`
	Port string `yaml:"port" env:"PORT"`

	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
	JWTSecret   string `yaml:"jwt_secret" env:"JWT_SECRET"`

	//Facebook account driven by the automation
	FacebookEmail    string `yaml:"facebook_email" env:"FACEBOOK_EMAIL"`
	FacebookPassword string `yaml:"facebook_password" env:"FACEBOOK_PASSWORD"`

	//Browser behavior
	Headless  bool `yaml:"headless"`
	Manual2FA bool `yaml:"manual_2fa"`

	//Target groups and messenger entry point baked into posts
	FacebookGroups []string `yaml:"facebook_groups"`
	MessengerLink  string   `yaml:"messenger_link"`

	//Scheduler
	CronSchedule     string `yaml:"cron_schedule"`
	MonitorPostLimit int    `yaml:"monitor_post_limit"`

	//Challenge handling. The manual wait is interval * attempts total.
	ManualWaitSeconds  int `yaml:"manual_wait_seconds"`
	ManualWaitAttempts int `yaml:"manual_wait_attempts"`

	//Webhook relay
	N8NWebhookURL       string `yaml:"n8n_webhook_url" env:"N8N_WEBHOOK_URL"`
	FacebookVerifyToken string `yaml:"facebook_verify_token" env:"FACEBOOK_VERIFY_TOKEN"`

	//Operator notifications (optional)
	TelegramToken  string `yaml:"telegram_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `yaml:"telegram_chat_id" env:"TELEGRAM_CHAT_ID"`

	//Paths
	CookiesPath    string `yaml:"cookies_path"`
	ScreenshotPath string `yaml:"screenshot_path"`
}

func Load() *Config {
	_ = godotenv.Load()

	//Load yaml config
	cfg := &Config{}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Printf("Warning: Could not read config.yaml: %v", err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}

	overrideFromEnv(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	return cfg
}

func overrideFromEnv(cfg *Config) {
	if env := os.Getenv("APP_ENV"); env != "" {
		cfg.Env = env
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if email := os.Getenv("FACEBOOK_EMAIL"); email != "" {
		cfg.FacebookEmail = email
	}
	if password := os.Getenv("FACEBOOK_PASSWORD"); password != "" {
		cfg.FacebookPassword = password
	}
	if headless := os.Getenv("HEADLESS"); headless != "" {
		cfg.Headless = headless != "false"
	}
	if manual := os.Getenv("MANUAL_2FA"); manual != "" {
		cfg.Manual2FA = manual == "true"
	}
	if url := os.Getenv("N8N_WEBHOOK_URL"); url != "" {
		cfg.N8NWebhookURL = url
	}
	if token := os.Getenv("FACEBOOK_VERIFY_TOKEN"); token != "" {
		cfg.FacebookVerifyToken = token
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.TelegramToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			log.Fatalf("Invalid TELEGRAM_CHAT_ID: %v", err)
		}
		cfg.TelegramChatID = id
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.CookiesPath == "" {
		cfg.CookiesPath = ".cookies"
	}
	if cfg.ScreenshotPath == "" {
		cfg.ScreenshotPath = "logs/screenshots"
	}
	if cfg.CronSchedule == "" {
		cfg.CronSchedule = "* * * * *"
	}
	if cfg.MonitorPostLimit <= 0 {
		cfg.MonitorPostLimit = 10
	}
	//The source of these numbers disagrees with itself (5 vs 10 minutes),
	//so both knobs stay configurable. Default: 30 polls of 10s.
	if cfg.ManualWaitSeconds <= 0 {
		cfg.ManualWaitSeconds = 10
	}
	if cfg.ManualWaitAttempts <= 0 {
		cfg.ManualWaitAttempts = 30
	}
}

func validate(cfg *Config) error {
	if cfg.FacebookEmail == "" {
		return fmt.Errorf("FACEBOOK_EMAIL is required")
	}
	if cfg.FacebookPassword == "" {
		return fmt.Errorf("FACEBOOK_PASSWORD is required")
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// IsProduction selects the conservative navigation strategy in the login flow.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
