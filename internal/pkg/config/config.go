package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection,
//   Enode credentials, etc.), security settings
// - default: Values common across all environments (timeouts, windows, etc.)
// -----------------------------------------------------------------------------

type Config struct {
	Server ServerConfig
	DB     DBConfig
	CORS   CORSConfig
	Log    LogConfig
	JWT    JWTConfig
	Enode  EnodeConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Europe/Paris"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone   string `envconfig:"LOG_TIMEZONE" default:"Europe/Paris"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

// EnodeConfig covers the external charger-control platform: the
// client-credentials exchange, the API base, and the owner linking flow.
type EnodeConfig struct {
	ClientID       string        `envconfig:"ENODE_CLIENT_ID" required:"true"`
	ClientSecret   string        `envconfig:"ENODE_CLIENT_SECRET" required:"true"`
	APIURL         string        `envconfig:"ENODE_API_URL" required:"true"`
	OAuthURL       string        `envconfig:"ENODE_OAUTH_URL" required:"true"`
	RedirectURI    string        `envconfig:"ENODE_REDIRECT_URI" required:"true"`
	StateSecret    string        `envconfig:"ENODE_STATE_SECRET" required:"true"`
	Scopes         []string      `envconfig:"ENODE_CHARGER_SCOPES" default:"charger:read:data,charger:control:charging"`
	RequestTimeout time.Duration `envconfig:"ENODE_REQUEST_TIMEOUT" default:"15s"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c *EnodeConfig) NormalizedScopes() []string {
	scopes := make([]string, 0, len(c.Scopes))
	for _, scope := range c.Scopes {
		if trimmed := strings.TrimSpace(scope); trimmed != "" {
			scopes = append(scopes, trimmed)
		}
	}
	return scopes
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Europe/Paris",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			TimeZone:   "Europe/Paris",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "24h",
		},
		Enode: EnodeConfig{
			ClientID:       "test-client",
			ClientSecret:   "test-secret",
			APIURL:         "http://localhost:18000",
			OAuthURL:       "http://localhost:18000/oauth/token",
			RedirectURI:    "http://localhost:8889/api/stations/link/callback",
			StateSecret:    "test-state-secret",
			Scopes:         []string{"charger:read:data", "charger:control:charging"},
			RequestTimeout: 2 * time.Second,
		},
	}
}
