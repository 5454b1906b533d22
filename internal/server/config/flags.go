package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mediakeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-b string   base URL used in generated upload URLs
//	-d string   PostgreSQL DSN
//	-r string   storage root directory
//	-s string   upload URL signing secret
//	-t int      upload URL lifetime, minutes
//	-m int      maximum upload size, bytes
//	-i int      database reconnect interval, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-r", "-s", "-t", "-m", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.BaseURL, "b", config.BaseURL, "base URL for upload links")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.StorageRoot, "r", config.StorageRoot, "storage root directory")
	fs.StringVar(&config.UploadSecret, "s", config.UploadSecret, "upload URL signing secret")

	uploadURLLifetime := fs.Int("t", int(config.UploadURLLifetime.Minutes()), "upload_url_lifetime (in minutes)")
	fs.Int64Var(&config.MaxFileSize, "m", config.MaxFileSize, "max upload size (in bytes)")
	reconnectInterval := fs.Int("i", int(config.ReconnectInterval.Seconds()), "reconnect_interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.UploadURLLifetime = time.Duration(*uploadURLLifetime) * time.Minute
	config.ReconnectInterval = time.Duration(*reconnectInterval) * time.Second
}
