package main

import (
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"jobfetch/internal/ai"
	"jobfetch/internal/analytics"
	"jobfetch/internal/cache"
	"jobfetch/internal/config"
	"jobfetch/internal/extract"
	"jobfetch/internal/fetch"
	server "jobfetch/internal/http"
	"jobfetch/internal/hybrid"
	"jobfetch/internal/jobs"
	"jobfetch/internal/llm"
	"jobfetch/internal/migrate"
	"jobfetch/internal/services"
	"jobfetch/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// Local-development credentials live in .env; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load(*configPath)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	// Persistence is optional: without a DSN, attempts are not recorded
	// and the attempts endpoint serves empty lists.
	var db *sql.DB
	var st *store.Store
	var recorder analytics.Recorder = analytics.Noop{}
	if cfg.Database.DSN != "" {
		if err := migrate.Run(cfg.Database.DSN); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}

		var err error
		db, err = sql.Open("pgx", cfg.Database.DSN)
		if err != nil {
			log.Fatalf("open db failed: %v", err)
		}
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		st = store.New(db, logger)
		recorder = st
	}

	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	var descCache cache.Cache
	var redisCache *cache.Redis
	if cfg.Cache.RedisURL != "" {
		var err error
		redisCache, err = cache.NewRedis(cfg.Cache.RedisURL, ttl)
		if err != nil {
			log.Fatalf("redis cache setup failed: %v", err)
		}
		descCache = redisCache
	} else {
		descCache = cache.NewMemory(ttl, nil)
	}

	client := fetch.NewClient(
		time.Duration(cfg.Fetcher.TimeoutMs)*time.Millisecond,
		cfg.Fetcher.UserAgent,
		cfg.Fetcher.RespectRobots,
	)

	siteTimeout := time.Duration(cfg.Timeouts.SiteMs) * time.Millisecond
	tier1Timeout := time.Duration(cfg.Timeouts.Tier1Ms) * time.Millisecond
	proxyTimeout := time.Duration(cfg.Timeouts.ProxyMs) * time.Millisecond
	actorTimeout := time.Duration(cfg.Timeouts.ActorMs) * time.Millisecond

	scraperAPI := extract.NewScraperAPI(cfg.ScraperAPI.APIKey, proxyTimeout)
	apify := extract.NewApify(cfg.Apify.Token, cfg.Apify.ActorID, cfg.Apify.Enabled, actorTimeout)

	orchestrator := hybrid.New(hybrid.Options{
		Cache:          descCache,
		Resolver:       extract.NewGoogleJobsResolver(client, siteTimeout),
		Routes:         hybrid.DefaultRoutes(client, siteTimeout),
		Tier1:          extract.NewTier1(client, tier1Timeout),
		IndeedProxy:    scraperAPI,
		Actor:          apify,
		BlockedDomains: cfg.BlockedDomains,
		Recorder:       recorder,
		Logger:         logger,
	})

	aiService := ai.NewService(
		func() (llm.Client, llm.Provider, string, error) { return llm.NewClientFromConfig(cfg) },
		scraperAPI,
		logger,
		time.Duration(cfg.LLM.TimeoutMs)*time.Millisecond,
	)

	extractSvc := services.NewJobExtractService(orchestrator, aiService, logger)
	batchSvc := services.NewBatchExtractService(extractSvc, cfg.Batch.MaxConcurrent)

	var lister services.AttemptLister
	if st != nil {
		lister = st
	}
	attemptsSvc := services.NewAttemptsService(lister)

	if _, err := jobs.StartScheduler(cfg, descCache, st, logger); err != nil {
		log.Fatalf("scheduler failed: %v", err)
	}

	deps := server.Dependencies{
		Extract:  extractSvc,
		Batch:    batchSvc,
		Attempts: attemptsSvc,
		DB:       db,
	}
	if redisCache != nil {
		deps.Redis = redisCache.Client()
	}

	s := server.NewServer(cfg, deps, logger)
	if err := s.Listen(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
