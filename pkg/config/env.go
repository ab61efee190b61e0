package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names so
// the prefix only matters for unnamed additions.
const EnvPrefix = "breaddesk"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "BREADDESK_DB_DSN"
	EnvDBHost = "BREADDESK_DB_HOST"
	EnvDBUser = "BREADDESK_DB_USER"
	EnvDBName = "BREADDESK_DB_NAME"

	EnvStorageDiskDir = "BREADDESK_STORAGE_DISK_DIR"
	EnvCloudinaryURL  = "BREADDESK_CLOUDINARY_URL"
)

const (
	StorageDriverDisk       = "disk"
	StorageDriverCloudinary = "cloudinary"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
