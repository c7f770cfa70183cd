package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"todo-app/internal/logging"
)

// EnvPrefix is prepended to every environment override, e.g. TODOAPP_HTTP_ADDR.
const EnvPrefix = "TODOAPP"

// Config keeps runtime settings for the service.
type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      logging.Config `mapstructure:"log"`
	Report   ReportConfig   `mapstructure:"report"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URL    string `mapstructure:"url"`
}

type AuthConfig struct {
	HMACSecret       string `mapstructure:"hmac_secret"`
	RSAPublicKeyFile string `mapstructure:"rsa_public_key_file"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`

	// RSAPublicKeyPEM is read from RSAPublicKeyFile by Load.
	RSAPublicKeyPEM []byte `mapstructure:"-"`
}

// ReportConfig schedules the overdue digest. At (HH:MM) wins over Interval;
// a zero Interval with no At disables the digest.
type ReportConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	At       string        `mapstructure:"at"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type SeedConfig struct {
	Categories []string `mapstructure:"categories"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "todo.db")
	v.SetDefault("auth.hmac_secret", "")
	v.SetDefault("auth.rsa_public_key_file", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("report.interval", 24*time.Hour)
	v.SetDefault("report.at", "")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("seed.categories", []string{"Work", "Personal", "Shopping", "Health", "Learning"})
}

// Load reads configuration from an optional file and the environment.
// Variables found in envFiles (".env" when none are given) are exported
// first; variables already set in the process win.
func Load(configFile string, envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Auth.RSAPublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.Auth.RSAPublicKeyFile)
		if err != nil {
			return Config{}, fmt.Errorf("read rsa public key: %w", err)
		}
		cfg.Auth.RSAPublicKeyPEM = pem
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}
	if c.Auth.HMACSecret == "" && len(c.Auth.RSAPublicKeyPEM) == 0 {
		return fmt.Errorf("auth.hmac_secret or auth.rsa_public_key_file is required")
	}
	if c.Report.Interval < 0 {
		return fmt.Errorf("report.interval must not be negative")
	}
	return nil
}
