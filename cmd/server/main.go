package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/schedule-builder/internal/catalog"
	"github.com/iliyamo/schedule-builder/internal/config"
	"github.com/iliyamo/schedule-builder/internal/handler"
	"github.com/iliyamo/schedule-builder/internal/middleware"
	"github.com/iliyamo/schedule-builder/internal/queue"
	"github.com/iliyamo/schedule-builder/internal/router"
	queue_publisher "github.com/iliyamo/schedule-builder/internal/service"
	"github.com/iliyamo/schedule-builder/internal/session"
	"github.com/iliyamo/schedule-builder/internal/upstream"
)

func main() {
	cfg := config.Load()
	cacheCfg := config.LoadCacheConfig()
	rateCfg := config.LoadRateLimitConfig()
	queueCfg := config.LoadQueueConfig()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable; using in-memory sessions, no upstream cache, no rate limit")
	} else {
		defer rdb.Close()
	}

	ratings, registrar := fetchers(cfg, cacheCfg, rdb)
	cat := catalog.New(ratings, registrar, catalog.Options{
		PageSize: cfg.PageSize,
		Timeout:  cfg.UpstreamTimeout,
	})

	tokens := session.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	sh := &handler.ScheduleHandler{
		Sections: cat,
		Store:    session.NewStore(rdb, "schedule", cfg.SessionTTL),
		Palette:  cfg.Palette,
		ICSWeeks: cfg.ICSWeeks,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if queueCfg.Enabled {
		pub := queue_publisher.New(queueCfg.URL, queueCfg.Queue)
		pub.DialTimeout = queueCfg.DialTimeout
		sh.Events = pub
		if queueCfg.StartConsume {
			go func() {
				if err := queue.StartScheduleConsumer(ctx, queueCfg.URL, queueCfg.Queue, queueCfg.LogDir); err != nil {
					log.Printf("schedule consumer stopped: %v", err)
				}
			}()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.Logger())

	limit := middleware.NewTokenBucket(rateCfg, rdb)
	router.RegisterRoutes(e)
	router.RegisterCatalog(e, &handler.CatalogHandler{Catalog: cat}, limit)
	router.RegisterSchedule(e, sh, tokens, limit)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdown); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// fetchers builds the two provider fetchers: one fixture file serving
// both when UPSTREAM_FIXTURE is set, otherwise live HTTP clients behind
// the Redis cache.
func fetchers(cfg config.Config, cacheCfg config.CacheConfig, rdb *redis.Client) (upstream.Fetcher, upstream.Fetcher) {
	if cfg.FixturePath != "" {
		stub, err := upstream.LoadStub(cfg.FixturePath)
		if err != nil {
			log.Fatalf("load fixture: %v", err)
		}
		log.Printf("serving providers from %s", cfg.FixturePath)
		return stub, stub
	}
	var ratings, registrar upstream.Fetcher
	ratings = upstream.NewClient(cfg.RatingsURL, cfg.UpstreamTimeout)
	registrar = upstream.NewClient(cfg.RegistrarURL, cfg.UpstreamTimeout)
	if !cacheCfg.Enabled {
		return ratings, registrar
	}
	ratings = upstream.NewCached(ratings, rdb, cacheCfg.Prefix+":ratings", cacheCfg.TTL)
	registrar = upstream.NewCached(registrar, rdb, cacheCfg.Prefix+":registrar", cacheCfg.TTL)
	return ratings, registrar
}
