package config

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/hkdf"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug | release | test
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type SessionConfig struct {
	Secret       string        `mapstructure:"secret"`
	TTL          time.Duration `mapstructure:"ttl"`
	RememberTTL  time.Duration `mapstructure:"remember_ttl"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
}

// CSRFKey derives the CSRF cookie key from the session secret so that
// the two never share raw key material.
func (s SessionConfig) CSRFKey() []byte {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(s.Secret), nil, []byte("csrf")), key); err != nil {
		panic(fmt.Sprintf("derive csrf key: %v", err))
	}
	return key
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type StaticConfig struct {
	Dir string `mapstructure:"dir"`
}

type AvatarConfig struct {
	Size           int      `mapstructure:"size"`
	Default        string   `mapstructure:"default"`
	AllowedExt     []string `mapstructure:"allowed_ext"`
	DeleteReplaced bool     `mapstructure:"delete_replaced"`
	MaxUploadMB    int      `mapstructure:"max_upload_mb"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Session  SessionConfig  `mapstructure:"session"`
	Security SecurityConfig `mapstructure:"security"`
	Static   StaticConfig   `mapstructure:"static"`
	Avatar   AvatarConfig   `mapstructure:"avatar"`
}

// envPrefix scopes environment overrides, e.g. BLOG_SESSION_SECRET.
const envPrefix = "BLOG"

var errEmptySecret = errors.New("session.secret must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("db.path", "site.db")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.remember_ttl", 365*24*time.Hour)
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("security.bcrypt_cost", bcrypt.DefaultCost)
	v.SetDefault("static.dir", "static")
	v.SetDefault("avatar.size", 125)
	v.SetDefault("avatar.default", "default.png")
	v.SetDefault("avatar.allowed_ext", []string{"jpg", "jpeg", "png"})
	v.SetDefault("avatar.delete_replaced", true)
	v.SetDefault("avatar.max_upload_mb", 4)
}

// Load reads configuration from path. An empty path searches for
// configs/config.yml; a missing file is not an error, defaults and
// BLOG_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects configurations the app cannot run safely with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Session.Secret) == "" {
		return errEmptySecret
	}
	if c.Security.BcryptCost < bcrypt.MinCost || c.Security.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("security.bcrypt_cost must be in [%d, %d], got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.Security.BcryptCost)
	}
	if c.Session.TTL <= 0 || c.Session.RememberTTL <= 0 {
		return errors.New("session.ttl and session.remember_ttl must be positive")
	}
	if c.Avatar.Size <= 0 {
		return fmt.Errorf("avatar.size must be positive, got %d", c.Avatar.Size)
	}
	return nil
}
