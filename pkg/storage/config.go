package storage

import "time"

// Config holds S3-compatible storage settings, read from the environment.
type Config struct {
	Bucket    string `env:"STORAGE_BUCKET,required"`
	AccessKey string `env:"STORAGE_ACCESS_KEY,required"`
	SecretKey string `env:"STORAGE_SECRET_KEY,required"`
	Region    string `env:"STORAGE_REGION" envDefault:"us-east-1"`

	// Endpoint targets S3-compatible services such as MinIO; PathStyle is usually needed with it.
	Endpoint  string `env:"STORAGE_ENDPOINT"`
	PathStyle bool   `env:"STORAGE_PATH_STYLE"`

	// PublicURL is a CDN prefix for public objects.
	PublicURL string `env:"STORAGE_PUBLIC_URL"`

	SignedURLExpiry time.Duration `env:"STORAGE_SIGNED_URL_EXPIRY" envDefault:"15m"`
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.SignedURLExpiry <= 0 {
		c.SignedURLExpiry = 15 * time.Minute
	}
	return nil
}
