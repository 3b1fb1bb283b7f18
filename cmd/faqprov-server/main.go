// Package main provides the FAQ provenance registry server entry point.
// The server hosts the content, FAQ, provenance, change, impact, run and
// audit APIs under a single process, with a worker pool draining the
// detection run queue in the background.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang/glog"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/knowbase/faqprov/pkg/actor"
	"github.com/knowbase/faqprov/pkg/audit"
	"github.com/knowbase/faqprov/pkg/cache"
	"github.com/knowbase/faqprov/pkg/change"
	"github.com/knowbase/faqprov/pkg/content"
	"github.com/knowbase/faqprov/pkg/faq"
	"github.com/knowbase/faqprov/pkg/ha"
	"github.com/knowbase/faqprov/pkg/impact"
	"github.com/knowbase/faqprov/pkg/provenance"
	"github.com/knowbase/faqprov/pkg/runs"
)

func main() {
	var (
		listenAddr       string
		databaseType     string
		databaseDSN      string
		impactConfigPath string
	)

	flag.StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	flag.StringVar(&databaseType, "db-type", "postgres", "Database type (postgres, mysql or sqlite)")
	flag.StringVar(&databaseDSN, "db-dsn", "", "Database connection string")
	flag.StringVar(&impactConfigPath, "impact-config", "", "Path to impact analyzer config YAML")
	flag.Parse()

	// Initialize glog for backwards compatibility
	_ = flag.Set("logtostderr", "true")

	// Set up structured logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting faqprov server", "listen", listenAddr, "dbType", databaseType)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	impactCfg := impact.DefaultConfig()
	if impactConfigPath != "" {
		var err error
		impactCfg, err = impact.LoadConfig(impactConfigPath)
		if err != nil {
			glog.Fatalf("Failed to load impact config: %v", err)
		}
		logger.Info("loaded impact config", "path", impactConfigPath, "version", impactCfg.Version)
	}

	gormDB, err := setupDatabase(databaseType, databaseDSN)
	if err != nil {
		glog.Fatalf("Failed to connect to database: %v", err)
	}

	contentStore := content.NewStore(gormDB)
	faqStore := faq.NewStore(gormDB)
	linkStore := provenance.NewStore(gormDB)
	changeStore := change.NewStore(gormDB)
	impactStore := impact.NewStore(gormDB)
	auditStore := audit.NewStore(gormDB)
	runStore := runs.NewRunStore(gormDB)

	// Serialize schema migration across replicas.
	haCfg := ha.HAConfigFromEnv()
	migrate := func() error {
		for _, m := range []func() error{
			contentStore.AutoMigrate,
			faqStore.AutoMigrate,
			linkStore.AutoMigrate,
			changeStore.AutoMigrate,
			impactStore.AutoMigrate,
			auditStore.AutoMigrate,
			runStore.AutoMigrate,
		} {
			if err := m(); err != nil {
				return err
			}
		}
		return nil
	}
	if haCfg.MigrationLockEnabled {
		locker := ha.NewMigrationLocker(gormDB)
		if err := locker.WithLock(ctx, migrate); err != nil {
			glog.Fatalf("Failed to migrate database: %v", err)
		}
	} else if err := migrate(); err != nil {
		glog.Fatalf("Failed to migrate database: %v", err)
	}

	auditCfg := audit.ConfigFromEnv()
	var auditWrites *audit.Store
	if auditCfg.Enabled {
		auditWrites = auditStore
	} else {
		logger.Info("audit trail disabled")
	}

	analyzer := impact.NewAnalyzer(impactCfg, changeStore, faqStore, linkStore,
		impactStore, auditWrites, logger)
	processor := impact.NewRunProcessor(analyzer, logger)

	runCfg := runs.RunConfigFromEnv()
	workerPool := runs.NewWorkerPool(runStore, processor, runCfg, logger)
	go workerPool.Run(ctx)

	retention := audit.NewRetentionWorker(auditStore, auditCfg.RetentionDays, logger)
	go retention.Run(ctx)

	caches := cache.NewManager(cache.ConfigFromEnv())
	if caches == nil {
		logger.Info("response caching disabled")
	}

	router := mountRoutes(contentStore, faqStore, linkStore, changeStore,
		impactStore, analyzer, runStore, auditStore, auditWrites, caches)

	logger.Info("faqprov server ready", "listen", listenAddr)

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("faqprov server stopped")
}

func mountRoutes(contentStore *content.Store, faqStore *faq.Store,
	linkStore *provenance.Store, changeStore *change.Store,
	impactStore *impact.Store, analyzer *impact.Analyzer,
	runStore *runs.RunStore, auditStore *audit.Store, auditWrites *audit.Store,
	caches *cache.Manager) chi.Router {

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", actor.HeaderName},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(actor.Middleware(actor.Config{Default: os.Getenv("FAQPROV_DEFAULT_ACTOR")}))

	r.Mount("/api/content/v1alpha1", content.Router(contentStore, auditWrites))
	r.Mount("/api/faq/v1alpha1", faq.Router(faqStore, auditWrites))
	r.Mount("/api/provenance/v1alpha1", provenance.Router(linkStore, auditWrites))
	r.Mount("/api/changes/v1alpha1", change.Router(changeStore, auditWrites))
	r.Mount("/api/impact/v1alpha1", caches.ImpactMiddleware()(impact.Router(impactStore, analyzer)))
	r.Mount("/api/runs/v1alpha1", runs.Router(runStore))
	r.Mount("/api/audit/v1alpha1", caches.AuditMiddleware()(audit.Router(auditStore)))

	r.Get("/healthz", healthHandler)
	r.Get("/livez", healthHandler)
	r.Get("/readyz", healthHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func setupDatabase(dbType, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = os.Getenv("DATABASE_DSN")
		if dsn == "" {
			return nil, fmt.Errorf("database DSN is required (use -db-dsn flag or DATABASE_DSN environment variable)")
		}
	}
	if dbType == "" {
		dbType = os.Getenv("DATABASE_TYPE")
		if dbType == "" {
			dbType = "postgres"
		}
	}

	cfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	switch dbType {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	case "mysql":
		return gorm.Open(mysql.Open(dsn), cfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), cfg)
	}
	return nil, fmt.Errorf("unsupported database type %q (expected postgres, mysql or sqlite)", dbType)
}
