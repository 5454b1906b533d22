package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "Test1 OK", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-b", "https://media.example.com", "-d", "db",
			"-r", "/var/lib/media", "-s", "secret", "-t", "5", "-m", "1048576", "-i", "10",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:  "127.0.0.1:9090",
				BaseURL:           "https://media.example.com",
				DatabaseDSN:       "db",
				StorageRoot:       "/var/lib/media",
				UploadSecret:      "secret",
				UploadURLLifetime: 5 * time.Minute,
				MaxFileSize:       1048576,
				ReconnectInterval: 10 * time.Second,
			}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
