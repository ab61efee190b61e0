package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Storage      StorageConfig
	Cloudinary   CloudinaryConfig
	Upload       UploadConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Storage.validate(cfg.Cloudinary); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BREADDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"BREADDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BREADDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BREADDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BREADDESK_DB_DSN"`
	Driver string `envconfig:"BREADDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BREADDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"BREADDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BREADDESK_DB_USER"`
	LegacyPassword string `envconfig:"BREADDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"BREADDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"BREADDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BREADDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BREADDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BREADDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BREADDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BREADDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BREADDESK_REDIS_ADDR"`
	Password     string        `envconfig:"BREADDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"BREADDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BREADDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BREADDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BREADDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BREADDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BREADDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BREADDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BREADDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BREADDESK_JWT_EXPIRATION_MINUTES" default:"720"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BREADDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BREADDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BREADDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BREADDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BREADDESK_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BREADDESK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BREADDESK_AUTO_MIGRATE" default:"false"`
}

type StorageConfig struct {
	Driver      string `envconfig:"BREADDESK_STORAGE_DRIVER" default:"disk"`
	DiskBaseDir string `envconfig:"BREADDESK_STORAGE_DISK_DIR" default:"storage"`
	DiskBaseURL string `envconfig:"BREADDESK_STORAGE_DISK_URL" default:"http://localhost:8080/storage"`
}

type CloudinaryConfig struct {
	URL          string `envconfig:"BREADDESK_CLOUDINARY_URL"`
	FolderPrefix string `envconfig:"BREADDESK_CLOUDINARY_FOLDER_PREFIX" default:"uploads"`
}

type UploadConfig struct {
	MaxUploadMB int `envconfig:"BREADDESK_MAX_UPLOAD_MB" default:"15"`
}

// MaxUploadBytes converts the configured megabyte limit into bytes.
func (u UploadConfig) MaxUploadBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 0
	}
	return int64(u.MaxUploadMB) * 1024 * 1024
}

func (s StorageConfig) validate(cld CloudinaryConfig) error {
	switch strings.ToLower(strings.TrimSpace(s.Driver)) {
	case StorageDriverDisk:
		if s.DiskBaseDir == "" {
			return fmt.Errorf("%s is required for the disk storage driver", EnvStorageDiskDir)
		}
		return nil
	case StorageDriverCloudinary:
		if cld.URL == "" {
			return fmt.Errorf("%s is required for the cloudinary storage driver", EnvCloudinaryURL)
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver %q", s.Driver)
	}
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
