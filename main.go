package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"Deckframe/internal/auth"
	"Deckframe/internal/calc/batch"
	"Deckframe/internal/calc/framing"
	"Deckframe/internal/calc/importer"
	"Deckframe/internal/calc/materials"
	"Deckframe/internal/calc/report"
	"Deckframe/internal/config"
	"Deckframe/internal/project"
	"Deckframe/internal/repo"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// AccessLog logs one line per request.
func AccessLog(logger *log.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status,
				"duration", time.Since(start).Round(time.Millisecond))
		})
	}
}

func HandleList(mux *mux.Router, cfg config.Config, store repo.Repository, engine *framing.Engine, limiter *auth.IPRateLimiter, logger *log.Logger) {
	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: store, Logger: logger, Insecure: !cfg.TLS()}
	projectH := &project.ProjectHandler{Repo: store, Engine: engine}

	mux.Use(AccessLog(logger))

	api := mux.PathPrefix("/api").Subrouter()

	api.Handle("/login", limiter.LimitMiddleware(http.HandlerFunc(authEnv.AuthHandler))).Methods("POST")
	api.Handle("/register", limiter.LimitMiddleware(http.HandlerFunc(authEnv.RegisterHandler))).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	projectH.Routes(secureApi)

	framingH := &framing.Handler{Engine: engine}
	materialsH := &materials.Handler{Engine: engine}
	reportH := &report.Handler{Engine: engine}
	batchH := &batch.Handler{Engine: engine}
	importH := &importer.Handler{Engine: engine}

	secureApi.HandleFunc("/tools/framing/calc", framingH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/framing/geojson", framingH.GeoJSON).Methods("POST")
	secureApi.HandleFunc("/tools/framing/materials", materialsH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/framing/materials.xlsx", materialsH.XLSX).Methods("POST")
	secureApi.HandleFunc("/tools/framing/report", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/tools/framing/batch", batchH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/framing/import", importH.Decks).Methods("POST")

	authFileServer := http.FileServer(http.Dir(cfg.StaticDir + "/auth"))
	mux.PathPrefix("/auth/").
		Handler(authEnv.RedirectIfLoggedIn(http.StripPrefix("/auth", authFileServer)))
	mux.PathPrefix("/").
		Handler(http.FileServer(http.Dir(cfg.StaticDir + "/main")))
}

func openStore(ctx context.Context, cfg config.Config, logger *log.Logger) (repo.Repository, *sql.DB, error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set; users and projects are kept in memory")
		return repo.NewMemory(), nil, nil
	}
	db, err := repo.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	pg := repo.NewPostgresUserDB(db)
	if err := pg.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, db, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config", "err", err)
	}
	logger := cfg.NewLogger(os.Stderr)
	if err := cfg.RequireServer(); err != nil {
		logger.Fatal("config", "err", err)
	}

	tables, err := cfg.Tables()
	if err != nil {
		logger.Fatal("span tables", "path", cfg.SpanTables, "err", err)
	}
	engine := framing.New(tables, logger.WithPrefix("framing"))

	store, db, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("database", "err", err)
	}
	if db != nil {
		defer db.Close()
	}

	limiter := auth.NewIPRateLimiter(1, 3)
	wg.Add(1)
	go func() {
		defer wg.Done()
		limiter.Run(ctx, time.Minute, 10*time.Minute)
	}()

	mux := mux.NewRouter()
	HandleList(mux, cfg, store, engine, limiter, logger)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           CORS(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS() {
			logger.Info("starting server", "addr", cfg.Addr, "tls", true)
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			logger.Warn("TLS certificate not found; serving plain HTTP", "addr", cfg.Addr)
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown", "err", err)
	}
	logger.Info("server stopped")

	wg.Wait()
}
