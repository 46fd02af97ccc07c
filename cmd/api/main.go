package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"travel_cms/internal/adapters/blob"
	server "travel_cms/internal/adapters/http_server"
	"travel_cms/internal/adapters/observability"
	redisad "travel_cms/internal/adapters/redis"
	"travel_cms/internal/adapters/session"
	"travel_cms/internal/app"
	"travel_cms/internal/domain"
	"travel_cms/internal/shared"
	"travel_cms/internal/storage/memory"
	mongostore "travel_cms/internal/storage/mongo"
	mysqlrepo "travel_cms/internal/storage/mysql"
)

type store interface {
	domain.DocumentStore
	domain.UserDirectory
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "api", cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	st, blobs, closeStore := openStore(ctx, cfg)
	defer closeStore()

	rc := redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer rc.Close()
	if err := rc.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis ping failed; cache and uploads degrade until it is reachable")
	}
	cache := redisad.NewCache(rc)

	sessions, err := session.NewJWT(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("session signer")
	}

	accounts := app.NewAccountService(st, sessions)
	if err := accounts.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("admin bootstrap failed")
	}

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Content:        app.NewContentService(st, blobs, cache, cfg.PublicBaseURL),
		Query:          app.NewQueryService(st, cache, cfg.CacheTTL),
		Uploads:        app.NewUploadService(st, blobs, redisad.NewTickets(rc), cfg.PublicBaseURL, cfg.UploadTTL),
		Accounts:       accounts,
		Sessions:       sessions,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookies:  cfg.AppEnv != "dev" && cfg.AppEnv != "development",
	})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("store", cfg.StoreDriver).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

// openStore picks the document store by STORE_DRIVER. Mongo keeps uploads in
// GridFS; the other drivers keep them under MEDIA_DIR.
func openStore(ctx context.Context, cfg shared.Config) (store, domain.BlobStore, func()) {
	fsBlobs := func() domain.BlobStore {
		b, err := blob.NewFS(cfg.MediaDir)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.MediaDir).Msg("media dir")
		}
		return b
	}

	switch cfg.StoreDriver {
	case "memory":
		log.Warn().Msg("memory store: content is lost on restart")
		return memory.New(), fsBlobs(), func() {}

	case "mongo":
		client, st, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatal().Err(err).Msg("mongo connect failed")
		}
		if err := st.EnsureIndexes(ctx, domain.CollServices, domain.CollBlog, domain.CollPages, domain.CollMedia); err != nil {
			log.Fatal().Err(err).Msg("mongo indexes")
		}
		blobs, err := mongostore.NewBlobs(client.Database(cfg.MongoDB))
		if err != nil {
			log.Fatal().Err(err).Msg("gridfs bucket")
		}
		log.Info().Msg("mongo connection ok")
		return st, blobs, func() { _ = client.Disconnect(context.Background()) }

	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		if err := mysqlrepo.Migrate(ctx, db); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db), fsBlobs(), func() { _ = db.Close() }
	}
	log.Fatal().Str("driver", cfg.StoreDriver).Msg("unknown STORE_DRIVER")
	return nil, nil, nil
}
