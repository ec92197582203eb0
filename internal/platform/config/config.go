// Package config loads process configuration from .env, an optional config file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Blob backends.
const (
	BlobBackendFirebase = "firebase"
	BlobBackendS3       = "s3"
	BlobBackendMemory   = "memory"
)

// Store backends.
const (
	StoreBackendFirestore = "firestore"
	StoreBackendMemory    = "memory"
)

// Config holds all application configuration.
type Config struct {
	Port      string
	Version   string
	Log       LogConfig
	Firebase  FirebaseConfig
	Admin     AdminConfig
	Company   CompanyConfig
	Blob      BlobConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	HTTP      HTTPConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// FirebaseConfig holds the Firebase project settings.
type FirebaseConfig struct {
	ProjectID           string
	CredentialsFile     string
	StorageBucket       string
	APIKey              string
	AuthEmulatorHost    string
	StorageEmulatorHost string
	IdentityToolkitURL  string
}

// AdminConfig identifies the single administrator account.
type AdminConfig struct {
	UID string
}

// CompanyConfig locates the singleton profile and its products.
type CompanyConfig struct {
	Store              string
	ProfileID          string
	ProfilesCollection string
	ProductsCollection string
}

// BlobConfig selects and configures the image store.
type BlobConfig struct {
	Backend       string
	Prefix        string
	MaxImageBytes int64
	S3            S3Config
}

// S3Config holds settings for S3-compatible storage.
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	UsePathStyle  bool
}

// SessionConfig holds cookie session settings.
type SessionConfig struct {
	Secret string
	Name   string
	MaxAge time.Duration
	Secure bool
}

// RateLimitConfig holds per-IP request limits.
type RateLimitConfig struct {
	Requests     int
	Window       time.Duration
	AuthRequests int
	AuthWindow   time.Duration
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	MaxBodyBytes       int64
	CORSAllowedOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("version", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("firebase.identity_toolkit_url", "https://identitytoolkit.googleapis.com")
	v.SetDefault("company.store", StoreBackendFirestore)
	v.SetDefault("company.profile_id", "main_company_info")
	v.SetDefault("company.profiles_collection", "infos")
	v.SetDefault("company.products_collection", "produits")
	v.SetDefault("blob.backend", BlobBackendFirebase)
	v.SetDefault("blob.prefix", "dataItemImages")
	v.SetDefault("blob.max_image_bytes", 5<<20)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("session.name", "company_admin_session")
	v.SetDefault("session.max_age", 24*time.Hour)
	v.SetDefault("session.secure", true)
	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.auth_requests", 5)
	v.SetDefault("rate_limit.auth_window", time.Minute)
	v.SetDefault("http.max_body_bytes", 8<<20)
	v.SetDefault("cors.allowed_origins", "*")
}

// Load reads configuration. Priority (highest first):
//  1. environment variables (e.g. FIREBASE_PROJECT_ID, BLOB_BACKEND)
//  2. .env in the working directory
//  3. config.yaml in the working directory or /etc/company-admin
//  4. built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/company-admin")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Env names that do not follow the key layout.
	_ = v.BindEnv("firebase.credentials_file", "GOOGLE_APPLICATION_CREDENTIALS")
	_ = v.BindEnv("firebase.auth_emulator_host", "FIREBASE_AUTH_EMULATOR_HOST")
	_ = v.BindEnv("firebase.storage_emulator_host", "FIREBASE_STORAGE_EMULATOR_HOST", "STORAGE_EMULATOR_HOST")
	_ = v.BindEnv("firebase.project_id", "FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT")

	cfg := &Config{
		Port:    v.GetString("port"),
		Version: v.GetString("version"),
		Log:     LogConfig{Level: v.GetString("log.level")},
		Firebase: FirebaseConfig{
			ProjectID:           v.GetString("firebase.project_id"),
			CredentialsFile:     v.GetString("firebase.credentials_file"),
			StorageBucket:       v.GetString("firebase.storage_bucket"),
			APIKey:              v.GetString("firebase.api_key"),
			AuthEmulatorHost:    v.GetString("firebase.auth_emulator_host"),
			StorageEmulatorHost: v.GetString("firebase.storage_emulator_host"),
			IdentityToolkitURL:  v.GetString("firebase.identity_toolkit_url"),
		},
		Admin: AdminConfig{UID: v.GetString("admin.uid")},
		Company: CompanyConfig{
			Store:              v.GetString("company.store"),
			ProfileID:          v.GetString("company.profile_id"),
			ProfilesCollection: v.GetString("company.profiles_collection"),
			ProductsCollection: v.GetString("company.products_collection"),
		},
		Blob: BlobConfig{
			Backend:       strings.ToLower(v.GetString("blob.backend")),
			Prefix:        strings.Trim(v.GetString("blob.prefix"), "/"),
			MaxImageBytes: v.GetInt64("blob.max_image_bytes"),
			S3: S3Config{
				Endpoint:      v.GetString("s3.endpoint"),
				Region:        v.GetString("s3.region"),
				Bucket:        v.GetString("s3.bucket"),
				AccessKey:     v.GetString("s3.access_key"),
				SecretKey:     v.GetString("s3.secret_key"),
				PublicBaseURL: strings.TrimRight(v.GetString("s3.public_base_url"), "/"),
				UsePathStyle:  v.GetBool("s3.use_path_style"),
			},
		},
		Session: SessionConfig{
			Secret: v.GetString("session.secret"),
			Name:   v.GetString("session.name"),
			MaxAge: v.GetDuration("session.max_age"),
			Secure: v.GetBool("session.secure"),
		},
		RateLimit: RateLimitConfig{
			Requests:     v.GetInt("rate_limit.requests"),
			Window:       v.GetDuration("rate_limit.window"),
			AuthRequests: v.GetInt("rate_limit.auth_requests"),
			AuthWindow:   v.GetDuration("rate_limit.auth_window"),
		},
		HTTP: HTTPConfig{
			MaxBodyBytes:       v.GetInt64("http.max_body_bytes"),
			CORSAllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
		},
	}
	if cfg.Firebase.AuthEmulatorHost != "" {
		cfg.Firebase.IdentityToolkitURL = "http://" + cfg.Firebase.AuthEmulatorHost + "/identitytoolkit.googleapis.com"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Admin.UID == "" {
		errs = append(errs, errors.New("ADMIN_UID is required"))
	}
	if c.Firebase.ProjectID == "" {
		errs = append(errs, errors.New("FIREBASE_PROJECT_ID is required"))
	}
	if c.Company.ProfileID == "" {
		errs = append(errs, errors.New("COMPANY_PROFILE_ID must not be empty"))
	}
	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.Blob.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("BLOB_MAX_IMAGE_BYTES must be positive"))
	}
	switch c.Company.Store {
	case StoreBackendFirestore, StoreBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown COMPANY_STORE %q", c.Company.Store))
	}
	switch c.Blob.Backend {
	case BlobBackendFirebase:
		if c.Firebase.StorageBucket == "" {
			errs = append(errs, errors.New("FIREBASE_STORAGE_BUCKET is required for the firebase blob backend"))
		}
	case BlobBackendS3:
		if c.Blob.S3.Bucket == "" || c.Blob.S3.PublicBaseURL == "" {
			errs = append(errs, errors.New("S3_BUCKET and S3_PUBLIC_BASE_URL are required for the s3 blob backend"))
		}
	case BlobBackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown BLOB_BACKEND %q", c.Blob.Backend))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
