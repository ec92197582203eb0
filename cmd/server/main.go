package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/company-admin/internal/http/health"
	companyhttp "github.com/janisto/company-admin/internal/http/v1/company"
	"github.com/janisto/company-admin/internal/http/v1/routes"
	"github.com/janisto/company-admin/internal/platform/auth"
	"github.com/janisto/company-admin/internal/platform/config"
	"github.com/janisto/company-admin/internal/platform/firebase"
	"github.com/janisto/company-admin/internal/platform/identity"
	applog "github.com/janisto/company-admin/internal/platform/logging"
	appmiddleware "github.com/janisto/company-admin/internal/platform/middleware"
	"github.com/janisto/company-admin/internal/platform/respond"
	"github.com/janisto/company-admin/internal/service/blob"
	companysvc "github.com/janisto/company-admin/internal/service/company"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const (
	apiPrefix = "/v1"
	docsPath  = "/api-docs"
)

// dependencies are the collaborators the HTTP layer needs.
type dependencies struct {
	authn    *auth.Authenticator
	provider identity.Provider
	company  *companysvc.Service
}

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogError(context.Background(), "config load failed", err)
		os.Exit(1)
	}
	if err := applog.SetLevel(cfg.Log.Level); err != nil {
		applog.LogWarn(context.Background(), "invalid log level, keeping default", zap.String("level", cfg.Log.Level))
	}
	applog.SetProjectID(cfg.Firebase.ProjectID)

	ctx := context.Background()
	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:                    cfg.Firebase.ProjectID,
		GoogleApplicationCredentials: cfg.Firebase.CredentialsFile,
		StorageBucket:                cfg.Firebase.StorageBucket,
	})
	if err != nil {
		applog.LogError(ctx, "firebase init failed", err)
		os.Exit(1)
	}
	defer func() {
		if err := clients.Close(); err != nil {
			applog.LogError(context.Background(), "firebase close error", err)
		}
	}()

	blobs, err := newBlobStore(ctx, cfg, clients)
	if err != nil {
		applog.LogError(ctx, "blob store init failed", err, zap.String("backend", cfg.Blob.Backend))
		os.Exit(1)
	}

	verifier := auth.NewFirebaseVerifier(clients.Auth)
	deps := dependencies{
		authn: newAuthenticator(cfg, verifier, verifier),
		provider: identity.NewClient(
			&http.Client{Timeout: 10 * time.Second},
			cfg.Firebase.APIKey,
			identity.WithBaseURL(cfg.Firebase.IdentityToolkitURL),
		),
		company: companysvc.NewService(
			newCompanyStore(cfg, clients),
			blobs,
			companysvc.WithMaxImageBytes(cfg.Blob.MaxImageBytes),
		),
	}

	router, _ := newRouter(cfg, resolveVersion(cfg), deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Company.Store),
			zap.String("blobBackend", cfg.Blob.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogError(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
		_ = clients.Close()
		os.Exit(1)
	case <-stop:
		applog.LogInfo(context.Background(), "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(context.Background(), "server exited")
}

// resolveVersion prefers the build-time Version over the configured one.
func resolveVersion(cfg *config.Config) string {
	if Version != "dev" || cfg.Version == "" {
		return Version
	}
	return cfg.Version
}

func companyConfig(cfg *config.Config) companysvc.Config {
	return companysvc.Config{
		ProfileID:          cfg.Company.ProfileID,
		ProfilesCollection: cfg.Company.ProfilesCollection,
		ProductsCollection: cfg.Company.ProductsCollection,
	}
}

func newCompanyStore(cfg *config.Config, clients *firebase.Clients) companysvc.Store {
	if cfg.Company.Store == config.StoreBackendMemory || clients == nil {
		return companysvc.NewMemoryStore(companyConfig(cfg))
	}
	return companysvc.NewFirestoreStore(clients.Firestore, companyConfig(cfg))
}

func newBlobStore(ctx context.Context, cfg *config.Config, clients *firebase.Clients) (blob.Store, error) {
	switch cfg.Blob.Backend {
	case config.BlobBackendMemory:
		return blob.NewMemoryStore("memory://blobs", cfg.Blob.Prefix), nil
	case config.BlobBackendS3:
		client, err := blob.NewS3Client(ctx, blob.S3Config{
			Endpoint:     cfg.Blob.S3.Endpoint,
			Region:       cfg.Blob.S3.Region,
			AccessKey:    cfg.Blob.S3.AccessKey,
			SecretKey:    cfg.Blob.S3.SecretKey,
			UsePathStyle: cfg.Blob.S3.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		return blob.NewS3Store(client, cfg.Blob.S3.Bucket, cfg.Blob.Prefix, cfg.Blob.S3.PublicBaseURL), nil
	case config.BlobBackendFirebase:
		if clients == nil || clients.Bucket == nil {
			return nil, errors.New("firebase blob backend requires a storage bucket")
		}
		var opts []blob.FirebaseOption
		if base := storageDownloadBaseURL(cfg); base != "" {
			opts = append(opts, blob.WithDownloadBaseURL(base))
		}
		return blob.NewFirebaseStore(clients.Bucket, cfg.Firebase.StorageBucket, cfg.Blob.Prefix, opts...), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend)
	}
}

// storageDownloadBaseURL points download URLs at the Storage emulator when
// one is configured.
func storageDownloadBaseURL(cfg *config.Config) string {
	host := cfg.Firebase.StorageEmulatorHost
	if host == "" || strings.Contains(host, "://") {
		return host
	}
	return "http://" + host
}

// bodyLimit is the server wide request size cap. It never drops below what
// the company upsert needs for the largest accepted image.
func bodyLimit(cfg *config.Config) int64 {
	maxImage := cfg.Blob.MaxImageBytes
	if maxImage <= 0 {
		maxImage = companysvc.DefaultMaxImageBytes
	}
	return max(cfg.HTTP.MaxBodyBytes, companyhttp.UpsertBodyLimit(maxImage))
}

func newAuthenticator(cfg *config.Config, verifier auth.Verifier, signOuter auth.SignOuter) *auth.Authenticator {
	cookies := auth.NewCookieSessions(auth.CookieConfig{
		Name:   cfg.Session.Name,
		Secret: cfg.Session.Secret,
		MaxAge: cfg.Session.MaxAge,
		Secure: cfg.Session.Secure,
	})
	return auth.NewAuthenticator(verifier, auth.NewGate(cfg.Admin.UID, signOuter), cookies)
}

// newRouter builds the chi router with the base middleware stack, the plain
// health endpoint and the huma API mounted under /v1.
func newRouter(cfg *config.Config, version string, deps dependencies) (*chi.Mux, huma.API) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(apiPrefix + docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.HTTP.CORSAllowedOrigins...),
		appmiddleware.RequestID(),
		// RealIP extracts client IP from X-Real-IP or X-Forwarded-For headers.
		// SECURITY: Only use behind a trusted reverse proxy (e.g., Cloud Run, nginx).
		// Without a trusted proxy, clients can spoof their IP address and the
		// rate limits below become ineffective.
		chimiddleware.RealIP,
		// Image uploads arrive base64 encoded inside the JSON body.
		chimiddleware.RequestSize(bodyLimit(cfg)),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
		appmiddleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		appmiddleware.RateLimitRoutes(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow,
			"POST "+apiPrefix+"/session",
			"POST "+apiPrefix+"/signup",
			"POST "+apiPrefix+"/password-reset",
		),
	)

	router.Get("/health", health.Handler(version))

	var api huma.API
	router.Route(apiPrefix, func(r chi.Router) {
		humaCfg := huma.DefaultConfig("Company Admin API", version)
		humaCfg.DocsPath = docsPath
		humaCfg.Servers = []*huma.Server{{URL: apiPrefix}}
		humaCfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			"bearerAuth": {
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
			},
		}
		// Allow JSON fallback for wildcard Accept headers (e.g., */*) since Huma's
		// negotiation uses exact matching and doesn't interpret wildcards per
		// RFC 9110 section 12.5.1. Clients sending unsupported types like text/plain
		// will still receive JSON rather than 406, which is acceptable per RFC 9110
		// section 12.4.1 (servers MAY disregard Accept and return a default).
		api = humachi.New(r, humaCfg)
		addCBORContentTypes(api)
		routes.Register(api, deps.authn, deps.provider, deps.company)
	})
	return router, api
}

// addCBORContentTypes documents application/cbor next to every JSON request
// and response body.
func addCBORContentTypes(api huma.API) {
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)
}
