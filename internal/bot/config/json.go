package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/homeworkbot/internal/flagx"
	"github.com/dmitrijs2005/homeworkbot/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. It relies on timex.Duration, so intervals can be given either as
// strings like "30s" or as integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	TelegramToken   string         `json:"telegram_token"`
	DatabaseDSN     string         `json:"database_dsn"`
	StagingDir      string         `json:"staging_dir"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
	DownloadTimeout timex.Duration `json:"download_timeout"`
	UploadTimeout   timex.Duration `json:"upload_timeout"`
	WorkerPoolSize  int64          `json:"worker_pool_size"`
	MetricsAddr     string         `json:"metrics_addr"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics. The caller is expected to merge
// these values with defaults and command-line flags as part of the full
// configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.TelegramToken = c.TelegramToken
	config.DatabaseDSN = c.DatabaseDSN
	config.StagingDir = c.StagingDir
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.DownloadTimeout = time.Duration(c.DownloadTimeout.Duration)
	config.UploadTimeout = time.Duration(c.UploadTimeout.Duration)
	config.WorkerPoolSize = c.WorkerPoolSize
	config.MetricsAddr = c.MetricsAddr
}
