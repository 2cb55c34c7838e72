package config

import (
	"os"

	"github.com/joho/godotenv"
)

// DefaultSecretKey is the insecure fallback used when SECRET_KEY is unset.
// Kept only so the app runs out of the box; override it in production.
const DefaultSecretKey = "troque_isto_por_uma_chave_secreta"

// Config holds runtime settings for the storefront server.
type Config struct {
	Port         string
	DBPath       string
	TemplateDir  string
	StaticDir    string
	SecretKey    string
	SecureCookie bool

	// Image storage. Backend is "local" or "s3".
	UploadBackend string
	UploadDir     string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
}

// UsingDefaultSecret reports whether the insecure fallback key is in use.
func (c Config) UsingDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// Load reads an optional .env file and then the environment, filling in
// development defaults for anything unset.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Port:          getenv("PORT", "8080"),
		DBPath:        getenv("DB_PATH", "loja.db"),
		TemplateDir:   getenv("TEMPLATE_DIR", "web/templates"),
		StaticDir:     getenv("STATIC_DIR", "web/static"),
		SecretKey:     getenv("SECRET_KEY", DefaultSecretKey),
		SecureCookie:  os.Getenv("SECURE_COOKIE") == "true",
		UploadBackend: getenv("UPLOAD_BACKEND", "local"),
		UploadDir:     getenv("UPLOAD_DIR", "web/static/img"),
		S3Bucket:      getenv("S3_BUCKET", "sneaker-shop"),
		S3Region:      getenv("S3_REGION", "us-east-1"),
		S3Endpoint:    os.Getenv("S3_ENDPOINT"),
		S3AccessKey:   os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:   os.Getenv("S3_SECRET_KEY"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
