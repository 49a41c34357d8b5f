package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fibkeeper/internal/flagx"
	"github.com/dmitrijs2005/fibkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config for decoding config files. Pointer fields tell
// "absent" apart from a zero value, so a file only overrides what it sets.
type FileConfig struct {
	EndpointAddrHTTP        *string         `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC        *string         `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	SecretKey               *string         `json:"secret_key" yaml:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration" yaml:"session_validity_duration"`
	SessionCleanupInterval  *timex.Duration `json:"session_cleanup_interval" yaml:"session_cleanup_interval"`
	CookieSecure            *bool           `json:"cookie_secure" yaml:"cookie_secure"`
	AuthUsername            *string         `json:"auth_username" yaml:"auth_username"`
	AuthPassword            *string         `json:"auth_password" yaml:"auth_password"`
	AuthPasswordHash        *string         `json:"auth_password_hash" yaml:"auth_password_hash"`
}

func decodeFile(path string, fc *FileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, fc)
	default:
		return json.Unmarshal(data, fc)
	}
}

// parseFile overlays values from the file named by -c/-config. Files ending
// in .yaml or .yml are read as YAML, anything else as JSON. A missing flag
// means no file; an unreadable or malformed file panics.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	fc := &FileConfig{}
	if err := decodeFile(path, fc); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&config.SecretKey, fc.SecretKey)
	setString(&config.AuthUsername, fc.AuthUsername)
	setString(&config.AuthPassword, fc.AuthPassword)
	setString(&config.AuthPasswordHash, fc.AuthPasswordHash)

	if fc.SessionValidityDuration != nil {
		config.SessionValidityDuration = fc.SessionValidityDuration.Duration
	}
	if fc.SessionCleanupInterval != nil {
		config.SessionCleanupInterval = fc.SessionCleanupInterval.Duration
	}
	if fc.CookieSecure != nil {
		config.CookieSecure = *fc.CookieSecure
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
