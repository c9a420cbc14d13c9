package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/rryowa/candidate_session/internal/api"
	"github.com/rryowa/candidate_session/internal/biometric"
	"github.com/rryowa/candidate_session/internal/client"
	"github.com/rryowa/candidate_session/internal/clock"
	"github.com/rryowa/candidate_session/internal/controller"
	"github.com/rryowa/candidate_session/internal/device"
	"github.com/rryowa/candidate_session/internal/guard"
	"github.com/rryowa/candidate_session/internal/lifecycle"
	"github.com/rryowa/candidate_session/internal/metrics"
	"github.com/rryowa/candidate_session/internal/service"
	"github.com/rryowa/candidate_session/internal/storage"
	"github.com/rryowa/candidate_session/internal/storage/memory"
	"github.com/rryowa/candidate_session/internal/storage/redis"
	"github.com/rryowa/candidate_session/internal/storage/sealed"
	"github.com/rryowa/candidate_session/internal/util"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger(util.GetLogLevel())
	defer func() { _ = logger.Sync() }()

	apiConfig := util.NewAPIConfig()
	sessionConfig := util.NewSessionConfig()
	storeConfig := util.NewStoreConfig()

	secureStore, prefStore, cleanup, err := newStores(logger, storeConfig)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	tokenStore := service.NewTokenStore(secureStore, logger)
	deviceProvider := device.NewProvider(prefStore, sessionConfig.DeviceName, logger)
	biometricGate := biometric.NewGate(biometric.Unsupported{}, secureStore, logger)

	httpClient := &http.Client{
		Timeout:   apiConfig.RequestTimeout,
		Transport: &client.BearerTransport{Tokens: tokenStore},
	}
	apiClient := client.NewClient(apiConfig.BaseURL, httpClient, logger)

	webhookService := service.NewWebhookService(logger, util.GetWebhookURL())
	defer webhookService.Wait()

	authService := service.NewAuthService(service.AuthDeps{
		API:            apiClient,
		Tokens:         tokenStore,
		Device:         deviceProvider,
		Biometric:      biometricGate,
		Notifier:       webhookService,
		Metrics:        appMetrics,
		Clock:          clock.System{},
		Log:            logger,
		RequestTimeout: sessionConfig.RequestTimeout,
	})
	defer authService.StopTokenRefreshWatcher()

	profileCache := guard.NewProfileCache()
	authService.OnLogout(profileCache.Clear)
	routeGuard := guard.NewGuard(apiClient, profileCache, appMetrics, logger)

	navigation := controller.NewNavigation()
	events := lifecycle.NewEvents()
	watcher := lifecycle.NewWatcher(lifecycle.WatcherDeps{
		Session:   authService,
		Navigator: navigation,
		Notifier:  webhookService,
		Metrics:   appMetrics,
		Clock:     clock.System{},
		Threshold: sessionConfig.BackgroundLogoutThreshold,
		Log:       logger,
	})
	stopWatcher := watcher.Start(ctx, events)
	defer stopWatcher()

	// Resume a session persisted by a previous run.
	if authService.IsLoggedIn(ctx) {
		authService.StartTokenRefreshWatcher(ctx)
	}

	ctrl := controller.NewController(logger, controller.Deps{
		Session:    authService,
		Biometric:  biometricGate,
		Lifecycle:  events,
		Navigation: navigation,
		Profiles:   profileCache,
	})

	apiServer := api.NewAPI(api.Deps{
		Controller: ctrl,
		Guard:      routeGuard,
		Navigator:  navigation,
		Gatherer:   registry,
	}, logger, util.NewServerConfig())
	if err := apiServer.Run(ctx); err != nil {
		logger.Errorw("shell server stopped", "error", err)
	}
}

// newStores returns the secure store (tokens, biometric enrollment) and the
// preference store (device id). Secure values are sealed whenever an
// encryption key is configured.
func newStores(logger *zap.SugaredLogger, cfg *util.StoreConfig) (storage.KeyValueStore, storage.KeyValueStore, func(), error) {
	var (
		secure  storage.KeyValueStore
		prefs   storage.KeyValueStore
		cleanup = func() {}
	)

	switch cfg.Backend {
	case util.StoreBackendRedis:
		redisClient, redisCleanup, err := util.NewRedisClient(logger, cfg)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup = redisCleanup
		secure = redis.NewKeyValueStore(redisClient, cfg.RedisPrefix+"secure:")
		prefs = redis.NewKeyValueStore(redisClient, cfg.RedisPrefix+"prefs:")
	default:
		logger.Warn("Using in-memory store, the session will not survive a restart")
		secure = memory.NewKeyValueStore()
		prefs = memory.NewKeyValueStore()
	}

	if cfg.EncryptionKey != nil {
		sealedStore, err := sealed.New(secure, cfg.EncryptionKey)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		secure = sealedStore
	}

	return secure, prefs, cleanup, nil
}
