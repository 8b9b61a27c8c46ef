// Package config loads foyer settings from an optional YAML file and
// FOYER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/dukerupert/foyer/internal/auth"
	"github.com/dukerupert/foyer/internal/backup"
	"github.com/dukerupert/foyer/internal/engine"
	"github.com/dukerupert/foyer/internal/ledger"
	"github.com/dukerupert/foyer/internal/model"
	"github.com/dukerupert/foyer/internal/reward"
	"github.com/dukerupert/foyer/internal/store"
)

// DefaultPath is read when no --config flag is given. It may be absent.
const DefaultPath = "foyer.yaml"

type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	FilePath    string `mapstructure:"file_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
}

type AuthConfig struct {
	// ParentCodeHash wins over ParentCode when both are set.
	ParentCodeHash string `mapstructure:"parent_code_hash"`
	ParentCode     string `mapstructure:"parent_code"`
}

type PolicyConfig struct {
	OneOffRepeatable bool   `mapstructure:"oneoff_repeatable"`
	Fulfillment      string `mapstructure:"fulfillment"`
	Balance          string `mapstructure:"balance"`
	GoalName         string `mapstructure:"goal_name"`
	GoalPoints       int    `mapstructure:"goal_points"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type BackupConfig struct {
	S3            S3Config `mapstructure:"s3"`
	RetentionDays int      `mapstructure:"retention_days"`
}

// PushConfig enables web push when both VAPID keys are set.
type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subscriber      string `mapstructure:"subscriber"`
}

func (p PushConfig) Enabled() bool {
	return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != ""
}

type Config struct {
	Port           string        `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"`
	Timezone       string        `mapstructure:"timezone"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	Storage        StorageConfig `mapstructure:"storage"`
	Auth           AuthConfig    `mapstructure:"auth"`
	Policy         PolicyConfig  `mapstructure:"policy"`
	Backup         BackupConfig  `mapstructure:"backup"`
	Push           PushConfig    `mapstructure:"push"`

	// TrustProxy keys rate limits on X-Forwarded-For. Enable only behind a
	// reverse proxy that overwrites the header.
	TrustProxy bool `mapstructure:"trust_proxy"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("timezone", "Europe/Paris")
	v.SetDefault("allowed_origins", []string{})
	v.SetDefault("trust_proxy", false)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.sqlite_path", "foyer.db")
	v.SetDefault("storage.file_path", "foyer.json")
	v.SetDefault("storage.postgres_dsn", "")

	v.SetDefault("auth.parent_code_hash", "")
	v.SetDefault("auth.parent_code", "1234")

	def := engine.DefaultPolicy()
	v.SetDefault("policy.oneoff_repeatable", def.OneOffRepeatable)
	v.SetDefault("policy.fulfillment", string(def.Fulfillment))
	v.SetDefault("policy.balance", string(def.Balance))
	v.SetDefault("policy.goal_name", def.Goal.Name)
	v.SetDefault("policy.goal_points", def.Goal.Points)

	v.SetDefault("backup.s3.endpoint", "")
	v.SetDefault("backup.s3.bucket", "")
	v.SetDefault("backup.s3.region", "us-east-1")
	v.SetDefault("backup.s3.access_key", "")
	v.SetDefault("backup.s3.secret_key", "")
	v.SetDefault("backup.s3.prefix", "foyer/")
	v.SetDefault("backup.retention_days", 30)

	v.SetDefault("push.vapid_public_key", "")
	v.SetDefault("push.vapid_private_key", "")
	v.SetDefault("push.subscriber", "mailto:foyer@localhost")
}

// Load reads path (DefaultPath when empty) and applies environment
// overrides. A missing file is only an error when path was given
// explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FOYER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Short aliases for the settings most often set by hand.
	v.BindEnv("storage.driver", "FOYER_STORAGE_DRIVER", "FOYER_DRIVER")
	v.BindEnv("storage.sqlite_path", "FOYER_STORAGE_SQLITE_PATH", "FOYER_SQLITE_PATH")
	v.BindEnv("storage.postgres_dsn", "FOYER_STORAGE_POSTGRES_DSN", "FOYER_DATABASE_URL")

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &pathErr) || errors.As(err, &notFound)
		if !missing || explicit {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot coerce.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.EnginePolicy(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case "", "sqlite", "file", "memory":
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			return &model.ValidationError{Field: "storage.postgres_dsn", Message: "required for the postgres driver"}
		}
	default:
		return &model.ValidationError{Field: "storage.driver", Message: fmt.Sprintf("unknown driver %q", c.Storage.Driver)}
	}
	if (c.Push.VAPIDPublicKey == "") != (c.Push.VAPIDPrivateKey == "") {
		return &model.ValidationError{Field: "push", Message: "vapid_public_key and vapid_private_key must be set together"}
	}
	return nil
}

// Location is the household time zone; calendar days roll over at its
// midnight.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, &model.ValidationError{Field: "timezone", Message: err.Error()}
	}
	return loc, nil
}

func (c *Config) EnginePolicy() (engine.Policy, error) {
	p := engine.Policy{
		OneOffRepeatable: c.Policy.OneOffRepeatable,
		Fulfillment:      reward.Fulfillment(c.Policy.Fulfillment),
		Balance:          reward.BalanceMode(c.Policy.Balance),
		Goal:             ledger.Goal{Name: c.Policy.GoalName, Points: c.Policy.GoalPoints},
	}
	switch p.Fulfillment {
	case reward.FulfillmentImmediate, reward.FulfillmentQueued:
	default:
		return engine.Policy{}, &model.ValidationError{Field: "policy.fulfillment", Message: fmt.Sprintf("unknown mode %q", c.Policy.Fulfillment)}
	}
	switch p.Balance {
	case reward.BalanceMember, reward.BalanceShared:
	default:
		return engine.Policy{}, &model.ValidationError{Field: "policy.balance", Message: fmt.Sprintf("unknown mode %q", c.Policy.Balance)}
	}
	if p.Goal.Points < 0 {
		return engine.Policy{}, &model.ValidationError{Field: "policy.goal_points", Message: "must not be negative"}
	}
	return p, nil
}

func (c *Config) StoreConfig() store.Config {
	return store.Config{
		Driver:      c.Storage.Driver,
		SQLitePath:  c.Storage.SQLitePath,
		FilePath:    c.Storage.FilePath,
		PostgresDSN: c.Storage.PostgresDSN,
	}
}

func (c *Config) BackupS3() backup.S3Config {
	s := c.Backup.S3
	return backup.S3Config{
		Endpoint:  s.Endpoint,
		Bucket:    s.Bucket,
		Region:    s.Region,
		AccessKey: s.AccessKey,
		SecretKey: s.SecretKey,
		Prefix:    s.Prefix,
	}
}

// Verifier builds the parent code checker. A plain code is hashed at
// startup.
func (c *Config) Verifier() (*auth.Verifier, error) {
	hash := c.Auth.ParentCodeHash
	if hash == "" {
		var err error
		if hash, err = auth.HashCode(c.Auth.ParentCode); err != nil {
			return nil, fmt.Errorf("auth.parent_code: %w", err)
		}
	}
	v, err := auth.NewVerifier(hash)
	if err != nil {
		return nil, fmt.Errorf("auth.parent_code_hash: %w", err)
	}
	return v, nil
}
