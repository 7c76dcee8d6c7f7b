package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/homeworkbot/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-t string   Telegram Bot API token
//	-d string   PostgreSQL DSN
//	-f string   local staging directory
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-o int      download timeout, seconds
//	-l int      upload timeout, seconds
//	-w int      worker pool size
//	-m string   metrics bind address
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration flags
// are accepted as integers in seconds and converted to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-t", "-d", "-f", "-u", "-p", "-b", "-g", "-e", "-o", "-l", "-w", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.TelegramToken, "t", config.TelegramToken, "telegram bot token")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StagingDir, "f", config.StagingDir, "staging directory")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	downloadTimeout := fs.Int("o", int(config.DownloadTimeout.Seconds()), "download timeout (in seconds)")
	uploadTimeout := fs.Int("l", int(config.UploadTimeout.Seconds()), "upload timeout (in seconds)")

	fs.Int64Var(&config.WorkerPoolSize, "w", config.WorkerPoolSize, "worker pool size")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics bind address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.DownloadTimeout = time.Duration(*downloadTimeout) * time.Second
	config.UploadTimeout = time.Duration(*uploadTimeout) * time.Second
}
