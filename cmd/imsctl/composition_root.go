package main

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/bsalter/interactions-client/internal/apierr"
	"github.com/bsalter/interactions-client/internal/auth"
	"github.com/bsalter/interactions-client/internal/cache/memory"
	"github.com/bsalter/interactions-client/internal/cache/redisstore"
	"github.com/bsalter/interactions-client/internal/cache/tiered"
	"github.com/bsalter/interactions-client/internal/client"
	"github.com/bsalter/interactions-client/internal/config"
	"github.com/bsalter/interactions-client/internal/diag"
	"github.com/bsalter/interactions-client/internal/interfaces"
	"github.com/bsalter/interactions-client/internal/transport"
)

// CompositionRoot holds all application dependencies and provides a
// centralized place for dependency injection and service initialization.
type CompositionRoot struct {
	Config *config.Config
	Logger *zap.Logger

	// Cache components
	MemStore *memory.Store
	Store    interfaces.Cache

	// Auth and transport
	Tokens     *auth.CachingTokenSource
	Classifier *apierr.Classifier

	// Services
	Client     *client.Client
	DiagServer *diag.Server
}

// NewCompositionRoot creates and initializes all application dependencies
// in order: logger, configuration, cache tiers, auth, transport chain,
// facade, diagnostics.
func NewCompositionRoot() (*CompositionRoot, error) {
	root := &CompositionRoot{}

	if err := root.initLogger(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := root.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := root.initCacheTiers(); err != nil {
		return nil, fmt.Errorf("failed to initialize cache tiers: %w", err)
	}
	if err := root.initAuth(); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}
	if err := root.initClient(); err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}
	root.initDiagServer()

	return root, nil
}

func (r *CompositionRoot) initLogger() error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	r.Logger = logger
	return nil
}

func (r *CompositionRoot) loadConfig() error {
	configPath := os.Getenv("IMS_CONFIG_FILE")
	if configPath == "" {
		configPath = "ims.yaml"
	}

	cfg, err := config.LoadConfig(configPath, r.Logger)
	if err != nil {
		return err
	}

	r.Config = cfg
	return nil
}

// initCacheTiers builds the transient tier, and the durable tier when redis
// is configured. A redis connection failure degrades to memory-only.
func (r *CompositionRoot) initCacheTiers() error {
	memStore, err := memory.New(r.Config.Cache.MemorySizeMB, r.Logger)
	if err != nil {
		return err
	}
	r.MemStore = memStore

	var durable interfaces.Cache
	if r.Config.Cache.Redis != nil {
		redisClient, err := redisstore.NewClient(r.Config.Cache.Redis, r.Logger)
		if err != nil {
			r.Logger.Warn("Failed to connect to redis, falling back to memory-only cache",
				zap.String("url", r.Config.Cache.Redis.URL),
				zap.Error(err))
		} else {
			durable = redisstore.New(redisClient, r.Logger)
			r.Logger.Info("Redis cache tier initialized", zap.String("url", r.Config.Cache.Redis.URL))
		}
	}

	r.Store = tiered.New(memStore, durable, r.Logger)
	return nil
}

func (r *CompositionRoot) initAuth() error {
	authClient := auth.NewOAuth2Client(r.Config.Auth.Domain, r.Config.Auth.ClientID, r.Logger)
	r.Tokens = auth.NewCachingTokenSource(authClient, r.Store, r.Config.Auth.UserID, r.Logger)

	// A refresh token from the environment bootstraps the first refresh
	// when nothing usable is cached.
	if refreshToken := os.Getenv("IMS_REFRESH_TOKEN"); refreshToken != "" {
		r.Tokens.SetToken(&oauth2.Token{RefreshToken: refreshToken})
	}
	return nil
}

func (r *CompositionRoot) initClient() error {
	r.Classifier = apierr.NewClassifier(
		r.Logger,
		apierr.NewLogMonitorSink(r.Logger),
		apierr.NewLogNotifySink(r.Logger),
		r.Config.Production,
	)

	retrying := transport.NewRetryTransport(http.DefaultTransport, r.Config.RetryPolicy(), r.Tokens, r.Logger)
	caching := transport.NewCachingTransport(retrying, r.Store, r.Config.CachePolicy(), r.Logger)

	httpClient := &http.Client{
		Transport: caching,
		Timeout:   r.Config.API.Timeout(),
	}

	r.Client = client.New(
		r.Config.API.BaseURL,
		httpClient,
		r.Store,
		r.Tokens,
		client.NewSiteContext(),
		r.Classifier,
		r.Logger,
	)
	return nil
}

func (r *CompositionRoot) initDiagServer() {
	if r.Config.Diag.Addr == "" {
		return
	}
	r.DiagServer = diag.NewServer(r.MemStore, r.Logger)
}

// Cleanup releases all resources.
func (r *CompositionRoot) Cleanup() error {
	var errs []error

	if r.Logger != nil {
		if err := r.Logger.Sync(); err != nil {
			errs = append(errs, fmt.Errorf("failed to sync logger: %w", err))
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close cache: %w", err))
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
