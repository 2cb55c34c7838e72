package main

import (
	"context"
	"net/http"

	"sneaker-shop/internal/config"
	"sneaker-shop/internal/handlers"
	"sneaker-shop/internal/logger"
	"sneaker-shop/internal/middleware"
	"sneaker-shop/internal/storage"
	"sneaker-shop/internal/upload"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	if cfg.UsingDefaultSecret() {
		log.Warn().Msg("SECRET_KEY not set, using insecure default")
	}

	db, err := storage.NewDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.CleanExpiredSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to clean expired sessions")
	}

	uploads, uploadDir, err := newUploadStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up image storage")
	}

	h := handlers.NewHandlers(db, uploads, cfg.TemplateDir, cfg.SecretKey, cfg.SecureCookie, log)
	router := setupRouter(h, log, cfg.StaticDir, uploadDir)

	log.Info().Str("port", cfg.Port).Msg("server listening")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// newUploadStore picks the image backend. The second return value is the
// local directory to serve under /uploads/, empty for remote backends.
func newUploadStore(cfg config.Config) (upload.Store, string, error) {
	if cfg.UploadBackend == "s3" {
		store, err := upload.NewS3Store(context.Background(), upload.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		return store, "", err
	}
	store, err := upload.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}

func setupRouter(h *handlers.Handlers, log zerolog.Logger, staticDir, uploadDir string) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLogging(log))
	r.Use(middleware.SecurityHeaders())

	// Throttle credential submissions
	limiter := middleware.NewRateLimiter(rate.Limit(5), 10).Middleware()

	r.HandleFunc("/", h.Home).Methods("GET")
	r.HandleFunc("/cadastro", h.RegisterForm).Methods("GET")
	r.Handle("/cadastro", limiter(http.HandlerFunc(h.Register))).Methods("POST")
	r.HandleFunc("/login", h.LoginForm).Methods("GET")
	r.Handle("/login", limiter(http.HandlerFunc(h.Login))).Methods("POST")
	r.HandleFunc("/logout", h.Logout).Methods("GET")

	r.Handle("/perfil", h.RequireAccount(http.HandlerFunc(h.Profile))).Methods("GET", "POST")
	r.Handle("/produtos", h.RequireAccount(http.HandlerFunc(h.Products))).Methods("GET", "POST")
	r.Handle("/produtos/{id:[0-9]+}/editar", h.RequireAccount(http.HandlerFunc(h.EditProduct))).Methods("POST")
	r.Handle("/produtos/{id:[0-9]+}/excluir", h.RequireAccount(http.HandlerFunc(h.DeleteProduct))).Methods("POST")

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	if uploadDir != "" {
		r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	}

	return r
}
