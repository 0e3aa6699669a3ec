package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL  string          `mapstructure:"database_url"`
	ServerPort   string          `mapstructure:"server_port"`
	JWTSecret    string          `mapstructure:"jwt_secret"`
	PublicOrigin string          `mapstructure:"public_origin"`
	Email        EmailConfig     `mapstructure:"email"`
	Redis        RedisConfig     `mapstructure:"redis"`
	Media        MediaConfig     `mapstructure:"media"`
	Invites      InvitesConfig   `mapstructure:"invites"`
	Rate         RateConfig      `mapstructure:"rate"`
	Bootstrap    BootstrapConfig `mapstructure:"bootstrap"`
}

// BootstrapConfig seeds the first superadmin account on startup when the
// admins table is empty of that email. Leave unset once operators exist.
type BootstrapConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
}

type EmailConfig struct {
	From     string `mapstructure:"from"`
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MediaConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type InvitesConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type RateConfig struct {
	LoginPerMinute      int `mapstructure:"login_per_minute"`
	OnboardingPerMinute int `mapstructure:"onboarding_per_minute"`
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	v := viper.New()

	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.AddConfigPath("./config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		log.Fatalf("Error unmarshalling config: %v", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.PublicOrigin == "" {
		config.PublicOrigin = "http://localhost:3000"
	}
	if config.JWTSecret == "" {
		log.Fatal("JWT secret must be set in the config file")
	}
	if config.Email.SMTPPort == 0 {
		config.Email.SMTPPort = 587
	}
	if config.Invites.TTL == 0 {
		config.Invites.TTL = 7 * 24 * time.Hour
	}
	if config.Invites.SweepInterval == 0 {
		config.Invites.SweepInterval = time.Hour
	}
	if config.Rate.LoginPerMinute == 0 {
		config.Rate.LoginPerMinute = 10
	}
	if config.Rate.OnboardingPerMinute == 0 {
		config.Rate.OnboardingPerMinute = 30
	}

	return &config
}
