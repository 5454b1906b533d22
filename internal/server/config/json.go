package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mediakeeper/internal/flagx"
	"github.com/dmitrijs2005/mediakeeper/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP  string         `json:"endpoint_addr_http"`
	BaseURL           string         `json:"base_url"`
	DatabaseDSN       string         `json:"database_dsn"`
	StorageRoot       string         `json:"storage_root"`
	UploadSecret      string         `json:"upload_secret"`
	UploadURLLifetime timex.Duration `json:"upload_url_lifetime"`
	MaxFileSize       int64          `json:"max_file_size"`
	ReconnectInterval timex.Duration `json:"reconnect_interval"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {
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

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.BaseURL = c.BaseURL
	config.DatabaseDSN = c.DatabaseDSN
	config.StorageRoot = c.StorageRoot
	config.UploadSecret = c.UploadSecret
	config.UploadURLLifetime = c.UploadURLLifetime.Std()
	config.MaxFileSize = c.MaxFileSize
	config.ReconnectInterval = c.ReconnectInterval.Std()
}
