package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported store drivers.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory" // process-local maps, for development and tests
)

// Supported attachment backends.
const (
	BackendFS = "fs"
	BackendS3 = "s3"
)

// Config holds the process-wide settings. It is built once at startup and
// passed by value or pointer into the components that need it; nothing reads
// the environment after Load returns.
type Config struct {
	Port string

	TokenSecret string
	TokenTTL    time.Duration

	StoreDriver string
	DatabaseDSN string

	MongoURI        string
	MongoDB         string
	MongoAuthSource string
	MongoUser       string
	MongoPass       string

	PublicDir         string
	AttachmentBackend string
	S3Bucket          string
	S3Region          string
	S3Endpoint        string
	S3AccessKey       string
	S3SecretKey       string

	RabbitMQURL    string
	PasswordHasher string
}

// SetDefaults registers the default value of every supported key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("TOKEN_SECRET_WORD", "1234SuperSecret*")
	v.SetDefault("TOKEN_EXPIRATION_TIME", "30 minutes")

	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("DATABASE_DSN", "messages.db")

	v.SetDefault("MONGO_USER", "usuario")
	v.SetDefault("MONGO_PASS", "passusuario")
	v.SetDefault("MONGO_PORT", "27017")
	v.SetDefault("MONGO_AUTHSOURCE", "admin")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB", "messages-db")

	v.SetDefault("PUBLIC_DIR", "./public")
	v.SetDefault("ATTACHMENT_BACKEND", BackendFS)
	v.SetDefault("S3_BUCKET", "message-images")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")

	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("PASSWORD_HASHER", "sha256")
}

// Load reads configuration from the environment (and anything else already
// registered on v) and validates it.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	ttl, err := ParseTTL(v.GetString("TOKEN_EXPIRATION_TIME"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_EXPIRATION_TIME: %w", err)
	}

	cfg := &Config{
		Port:              v.GetString("PORT"),
		TokenSecret:       v.GetString("TOKEN_SECRET_WORD"),
		TokenTTL:          ttl,
		StoreDriver:       strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		MongoURI:          v.GetString("MONGO_URI"),
		MongoDB:           v.GetString("MONGO_DB"),
		MongoAuthSource:   v.GetString("MONGO_AUTHSOURCE"),
		MongoUser:         v.GetString("MONGO_USER"),
		MongoPass:         v.GetString("MONGO_PASS"),
		PublicDir:         v.GetString("PUBLIC_DIR"),
		AttachmentBackend: strings.ToLower(v.GetString("ATTACHMENT_BACKEND")),
		S3Bucket:          v.GetString("S3_BUCKET"),
		S3Region:          v.GetString("S3_REGION"),
		S3Endpoint:        v.GetString("S3_ENDPOINT"),
		S3AccessKey:       v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:       v.GetString("S3_SECRET_KEY"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		PasswordHasher:    strings.ToLower(v.GetString("PASSWORD_HASHER")),
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = fmt.Sprintf("mongodb://%s:%s@mongo:%s", cfg.MongoUser, cfg.MongoPass, v.GetString("MONGO_PORT"))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ListenAddr returns the address Fiber should listen on.
func (c *Config) ListenAddr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func (c *Config) validate() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("TOKEN_SECRET_WORD must not be empty")
	}
	switch c.StoreDriver {
	case DriverMongo, DriverPostgres, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.AttachmentBackend {
	case BackendFS:
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when ATTACHMENT_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unsupported ATTACHMENT_BACKEND %q", c.AttachmentBackend)
	}
	switch c.PasswordHasher {
	case "sha256", "bcrypt":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.PasswordHasher)
	}
	return nil
}

var ttlUnits = map[string]time.Duration{
	"ms": time.Millisecond, "msec": time.Millisecond, "msecs": time.Millisecond,
	"millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second,
	"second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute,
	"minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour,
	"hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

// ParseTTL accepts Go durations ("30m", "1h30m"), human forms ("30 minutes",
// "2 days") and a bare number of seconds ("1800").
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if d, err := time.ParseDuration(s); err == nil {
		return positive(d, s)
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return positive(time.Duration(n*float64(time.Second)), s)
	}

	fields := strings.Fields(strings.ToLower(s))
	if len(fields) != 2 {
		return 0, fmt.Errorf("cannot parse duration %q", s)
	}
	n, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse duration %q: %w", s, err)
	}
	unit, ok := ttlUnits[fields[1]]
	if !ok {
		return 0, fmt.Errorf("unknown duration unit %q", fields[1])
	}
	return positive(time.Duration(n*float64(unit)), s)
}

func positive(d time.Duration, raw string) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", raw)
	}
	return d, nil
}
