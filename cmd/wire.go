package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	feedchain "github.com/localpad/localpad/internal/adapters/feed/chain"
	"github.com/localpad/localpad/internal/adapters/feed/httpfeed"
	"github.com/localpad/localpad/internal/adapters/feed/mockfeed"
	filekv "github.com/localpad/localpad/internal/adapters/kv/file"
	profiletoml "github.com/localpad/localpad/internal/adapters/profile/toml"
	"github.com/localpad/localpad/internal/application"
	"github.com/localpad/localpad/internal/ports"
)

const (
	configName    = "config"
	configType    = "toml"
	configDirName = ".localpad"

	dataDirKey         = "data.dir"
	feedURLKey         = "feed.url"
	queueDelayKey      = "queue.delay"
	queueTimeoutKey    = "queue.timeout"
	queueMaxRetriesKey = "queue.max_retries"
	queueAutoKey       = "queue.auto_process"
	logLevelKey        = "log.level"
)

type app struct {
	profiles []application.Profile
	kv       ports.KVStore
	feed     ports.FeedSource
	queueCfg application.QueueConfig
	// autoDeliver makes `chat send` drain synchronously before returning.
	// The queue's own AutoProcess goroutine would not survive a short-lived
	// CLI process, so delivery happens in the foreground instead.
	autoDeliver bool
	logger      *slog.Logger
	now         func() time.Time
}

func wireApp() (*app, error) {
	cfg := viper.New()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, configDirName)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)
	cfg.SetEnvPrefix("PAD")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	cfg.SetDefault(dataDirKey, filepath.Join(configDir, "data"))
	cfg.SetDefault(feedURLKey, "https://catfact.ninja/fact")
	cfg.SetDefault(queueDelayKey, "500ms")
	cfg.SetDefault(queueTimeoutKey, "5s")
	cfg.SetDefault(queueMaxRetriesKey, 2)
	cfg.SetDefault(queueAutoKey, true)
	cfg.SetDefault(logLevelKey, "warn")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	logger := newLogger(cfg.GetString(logLevelKey))

	profiles := application.BuiltinProfiles()
	custom, err := profiletoml.NewRepository(filepath.Join(configDir, "profiles.toml")).Load()
	if err != nil {
		return nil, fmt.Errorf("load custom profiles: %w", err)
	}
	profiles = mergeProfiles(profiles, custom)

	primary := httpfeed.NewSource(http.DefaultClient, cfg.GetString(feedURLKey))
	feed, err := feedchain.NewSource(primary, mockfeed.NewSource(), logger)
	if err != nil {
		return nil, fmt.Errorf("wire feed chain: %w", err)
	}

	return &app{
		profiles: profiles,
		kv:       filekv.NewStore(cfg.GetString(dataDirKey)),
		feed:     feed,
		queueCfg: application.QueueConfig{
			Delay:      cfg.GetDuration(queueDelayKey),
			Timeout:    cfg.GetDuration(queueTimeoutKey),
			MaxRetries: cfg.GetInt(queueMaxRetriesKey),
			StateKey:   "pads/chat/queue",
		},
		autoDeliver: cfg.GetBool(queueAutoKey),
		logger:      logger,
		now:         time.Now,
	}, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func mergeProfiles(builtin, custom []application.Profile) []application.Profile {
	merged := append([]application.Profile{}, builtin...)
	for _, p := range custom {
		if i := indexOfProfile(merged, p.Name); i >= 0 {
			merged[i] = p
			continue
		}
		merged = append(merged, p)
	}
	return merged
}

func indexOfProfile(profiles []application.Profile, name string) int {
	for i := range profiles {
		if profiles[i].Name == name {
			return i
		}
	}
	return -1
}

func (a *app) profile(name string) (application.Profile, error) {
	profile, ok := application.FindProfile(a.profiles, name)
	if !ok {
		return application.Profile{}, fmt.Errorf("unknown app %q (see `pad apps`)", name)
	}
	return profile, nil
}

func (a *app) storeFor(ctx context.Context, profile application.Profile) (*application.Store, error) {
	store := application.NewStore(profile.StorageKey(), a.kv, ports.SystemClock{}, a.logger)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (a *app) chatService(ctx context.Context) (*application.ChatService, error) {
	profile, err := a.profile("chat")
	if err != nil {
		return nil, err
	}

	store, err := a.storeFor(ctx, profile)
	if err != nil {
		return nil, err
	}

	svc := application.NewChatService(store, a.queueCfg, a.kv, ports.SystemClock{}, a.logger)
	if err := svc.Restore(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
