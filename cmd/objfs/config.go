package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/jmgilman/objfs"
	"github.com/jmgilman/objfs/cache"
	"github.com/jmgilman/objfs/core"
	"github.com/jmgilman/objfs/errors"
	"github.com/jmgilman/objfs/memory"
	"github.com/jmgilman/objfs/minio"
	"github.com/jmgilman/objfs/swift"
)

// config is the CLI configuration, read from a YAML file, OBJFS_*
// environment variables and flags.
type config struct {
	Backend  string `mapstructure:"backend"`
	Output   string `mapstructure:"output"`
	LogLevel string `mapstructure:"log_level"`

	StorageID         string `mapstructure:"storage_id"`
	PublicBaseURL     string `mapstructure:"public_base_url"`
	Secure            bool   `mapstructure:"secure"`
	VerifyChecksums   bool   `mapstructure:"verify_checksums"`
	ImplicitFolders   bool   `mapstructure:"implicit_folders"`
	FolderConcurrency int    `mapstructure:"folder_concurrency"`
	CreateContainer   bool   `mapstructure:"create_container"`
	Locale            string `mapstructure:"locale"`
	TempDir           string `mapstructure:"temp_dir"`

	Swift  swiftConfig  `mapstructure:"swift"`
	Minio  minioConfig  `mapstructure:"minio"`
	Memory memoryConfig `mapstructure:"memory"`
	Cache  cacheConfig  `mapstructure:"cache"`
}

type swiftConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Region     string `mapstructure:"region"`
	Username   string `mapstructure:"username"`
	APIKey     string `mapstructure:"api_key"`
	Container  string `mapstructure:"container"`
	AuthURL    string `mapstructure:"auth_url"`
	TempURLKey string `mapstructure:"temp_url_key"`
	DisableCDN bool   `mapstructure:"disable_cdn"`
}

type minioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

type memoryConfig struct {
	Container string `mapstructure:"container"`
	// Seed is a local directory uploaded into the container on start.
	Seed string `mapstructure:"seed"`
}

type cacheConfig struct {
	Type      string `mapstructure:"type"` // memory | redis
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Namespace string `mapstructure:"namespace"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "swift")
	v.SetDefault("output", "text")
	v.SetDefault("log_level", "warn")
	v.SetDefault("folder_concurrency", objfs.DefaultFolderConcurrency)
	v.SetDefault("memory.container", "objfs")
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.namespace", "objfs")
}

// loadConfig reads the optional config file and unmarshals the result.
func loadConfig(v *viper.Viper, path string) (*config, error) {
	v.SetEnvPrefix("OBJFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "failed to read config %s", path)
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to decode config")
	}
	return &cfg, nil
}

// newLogger builds the stderr logger for level.
func newLogger(level string) (*slog.Logger, *cache.LogConfig, error) {
	lvl, err := cache.ParseLogLevel(level)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInvalidConfig, "invalid log level")
	}
	cfg := cache.DefaultLogConfig()
	cfg.Level = lvl
	cfg.EnableCacheOperations = lvl == cache.LogLevelDebug

	// Filtering happens in cache.Logger.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, &cfg, nil
}

// newBackend builds the configured backend.
func newBackend(ctx context.Context, cfg *config) (core.Backend, error) {
	switch cfg.Backend {
	case "swift":
		b, err := swift.New(swift.Config{
			Endpoint:   cfg.Swift.Endpoint,
			Region:     cfg.Swift.Region,
			Username:   cfg.Swift.Username,
			APIKey:     cfg.Swift.APIKey,
			Container:  cfg.Swift.Container,
			AuthURL:    cfg.Swift.AuthURL,
			TempURLKey: cfg.Swift.TempURLKey,
			DisableCDN: cfg.Swift.DisableCDN,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case "minio":
		b, err := minio.New(minio.Config{
			Endpoint:  cfg.Minio.Endpoint,
			Bucket:    cfg.Minio.Bucket,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			UseSSL:    cfg.Minio.UseSSL,
			Region:    cfg.Minio.Region,
		})
		if err != nil {
			return nil, err
		}
		return b, nil
	case "memory":
		b := memory.New(cfg.Memory.Container)
		if cfg.Memory.Seed != "" {
			if err := core.CopyFromFS(ctx, os.DirFS(cfg.Memory.Seed), ".", b, ""); err != nil {
				return nil, errors.Wrapf(err, errors.CodeInvalidConfig, "failed to seed memory backend from %s", cfg.Memory.Seed)
			}
		}
		return b, nil
	default:
		return nil, errors.WithContext(
			errors.Newf(errors.CodeInvalidConfig, "unknown backend %q (want swift, minio or memory)", cfg.Backend),
			"backend", cfg.Backend,
		)
	}
}

// newStore builds the metadata cache store.
func newStore(cfg cacheConfig) (cache.Store, error) {
	switch cfg.Type {
	case "", "memory":
		return cache.NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		return cache.NewRedisStore(client, cfg.Namespace), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unknown cache type %q", cfg.Type)
	}
}

// newDriver wires backend, cache and logging into a Driver.
func newDriver(ctx context.Context, cfg *config) (*objfs.Driver, error) {
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := newStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	logger, logCfg, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	return objfs.New(ctx, backend, objfs.Options{
		Cache:             store,
		Logger:            logger,
		LogConfig:         logCfg,
		PublicBaseURL:     cfg.PublicBaseURL,
		Secure:            cfg.Secure,
		StorageID:         cfg.StorageID,
		VerifyChecksums:   cfg.VerifyChecksums,
		ImplicitFolders:   cfg.ImplicitFolders,
		TempDir:           cfg.TempDir,
		FolderConcurrency: cfg.FolderConcurrency,
		CreateContainer:   cfg.CreateContainer,
		Locale:            cfg.Locale,
	})
}
