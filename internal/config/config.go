package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the config file
const DefaultPath = "config/config.yml"

type AppConfig struct {
	Port      int    `yaml:"port"`
	GinMode   string `yaml:"gin_mode"`
	StaticDir string `yaml:"static_dir"`
}

type DatabaseConfig struct {
	DSN    string `yaml:"dsn"`
	Driver string `yaml:"driver"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	RefreshTTL string `yaml:"refresh_ttl"`
}

type OTPConfig struct {
	TTL          string `yaml:"ttl"`
	Length       int    `yaml:"length"`
	MaxAttempts  int    `yaml:"max_attempts"`
	ResendWindow string `yaml:"resend_window"`
	ClientWindow string `yaml:"client_window"`
	FlowIdleTTL  string `yaml:"flow_idle_ttl"`
}

type SessionConfig struct {
	CookiePrefix string `yaml:"cookie_prefix"`
	CookieDomain string `yaml:"cookie_domain"`
	Secure       bool   `yaml:"secure"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	FromNumber string `yaml:"from_number"`
}

type CasbinConfig struct {
	ModelPath string `yaml:"model_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ConfigFile struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OTP      OTPConfig      `yaml:"otp"`
	Session  SessionConfig  `yaml:"session"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Casbin   CasbinConfig   `yaml:"casbin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type Config struct {
	Port             string
	GinMode          string
	StaticDir        string
	DSN              string
	DBDriver         string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	JWTSecret        string
	JWTIssuer        string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	OTP_TTL          time.Duration
	OTP_Length       int
	OTP_MaxAttempts  int
	OTP_ResendWindow time.Duration
	OTP_ClientWindow time.Duration
	FlowIdleTTL      time.Duration
	CookiePrefix     string
	CookieDomain     string
	CookieSecure     bool
	TwilioSID        string
	TwilioToken      string
	TwilioFrom       string
	CasbinModelPath  string
	LogLevel         string
	LogFormat        string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// Load reads .env (if present) and the default config file
func Load() (*Config, error) {
	_ = godotenv.Load() // missing .env is fine
	return LoadFrom(env("CONSULTSITE_CONFIG", DefaultPath))
}

// LoadFrom reads the config file at path and applies environment overrides
func LoadFrom(path string) (*Config, error) {
	configFile, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	applyDefaults(configFile)

	accTTL, err := time.ParseDuration(configFile.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	refTTL, err := time.ParseDuration(configFile.JWT.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	otpTTL, err := time.ParseDuration(configFile.OTP.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP TTL: %w", err)
	}

	resWnd, err := time.ParseDuration(configFile.OTP.ResendWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP resend window: %w", err)
	}

	clientWnd, err := time.ParseDuration(configFile.OTP.ClientWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP client window: %w", err)
	}

	flowIdle, err := time.ParseDuration(configFile.OTP.FlowIdleTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid OTP flow idle TTL: %w", err)
	}

	cfg := &Config{
		Port:             env("CONSULTSITE_PORT", strconv.Itoa(configFile.App.Port)),
		GinMode:          env("GIN_MODE", configFile.App.GinMode),
		StaticDir:        configFile.App.StaticDir,
		DSN:              env("CONSULTSITE_DATABASE_DSN", configFile.Database.DSN),
		DBDriver:         configFile.Database.Driver,
		RedisAddr:        env("CONSULTSITE_REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:    env("CONSULTSITE_REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:          configFile.Redis.DB,
		JWTSecret:        env("CONSULTSITE_JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer:        configFile.JWT.Issuer,
		AccessTTL:        accTTL,
		RefreshTTL:       refTTL,
		OTP_TTL:          otpTTL,
		OTP_Length:       configFile.OTP.Length,
		OTP_MaxAttempts:  configFile.OTP.MaxAttempts,
		OTP_ResendWindow: resWnd,
		OTP_ClientWindow: clientWnd,
		FlowIdleTTL:      flowIdle,
		CookiePrefix:     configFile.Session.CookiePrefix,
		CookieDomain:     configFile.Session.CookieDomain,
		CookieSecure:     configFile.Session.Secure,
		TwilioSID:        env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:      env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioFrom:       env("TWILIO_FROM_NUMBER", configFile.Twilio.FromNumber),
		CasbinModelPath:  configFile.Casbin.ModelPath,
		LogLevel:         env("CONSULTSITE_LOG_LEVEL", configFile.Logging.Level),
		LogFormat:        configFile.Logging.Format,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(c *ConfigFile) {
	if c.App.Port == 0 {
		c.App.Port = 8080
	}
	if c.App.GinMode == "" {
		c.App.GinMode = "release"
	}
	if c.App.StaticDir == "" {
		c.App.StaticDir = "static"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "consultsite"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "168h"
	}
	if c.OTP.TTL == "" {
		c.OTP.TTL = "10m"
	}
	if c.OTP.Length == 0 {
		c.OTP.Length = 6
	}
	if c.OTP.MaxAttempts == 0 {
		c.OTP.MaxAttempts = 5
	}
	if c.OTP.ResendWindow == "" {
		c.OTP.ResendWindow = "30s"
	}
	if c.OTP.ClientWindow == "" {
		c.OTP.ClientWindow = "5m"
	}
	if c.OTP.FlowIdleTTL == "" {
		c.OTP.FlowIdleTTL = "30m"
	}
	if c.Session.CookiePrefix == "" {
		c.Session.CookiePrefix = "sb-consultsite-auth-token"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: jwt.secret must be set")
	}
	if c.DSN == "" {
		return fmt.Errorf("config: database.dsn must be set")
	}
	if c.OTP_Length < 4 || c.OTP_Length > 10 {
		return fmt.Errorf("config: otp.length must be between 4 and 10")
	}
	if c.OTP_ClientWindow <= 0 {
		return fmt.Errorf("config: otp.client_window must be positive")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database.driver %q", c.DBDriver)
	}
	return nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
