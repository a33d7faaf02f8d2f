package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Overlay copies values that were explicitly set on v (by flag or TODO_*
// environment variable) over c. Unset keys leave the file values alone.
func Overlay(c *Config, v *viper.Viper) {
	if v == nil {
		return
	}
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			if s := strings.TrimSpace(v.GetString(key)); s != "" {
				*dst = s
			}
		}
	}

	setString("data_dir", &c.DataDir)
	setString("storage_backend", &c.Storage.Backend)
	setString("storage_key", &c.Storage.Key)
	setString("sqlite_path", &c.Storage.SQLitePath)
	setString("addr", &c.Server.Addr)
	setString("static_dir", &c.Server.StaticDir)
	setString("log_level", &c.Log.Level)
	setString("log_format", &c.Log.Format)
	setString("default_filter", &c.UI.DefaultFilter)

	if v.IsSet("dev_static") {
		c.Server.DevStatic = v.GetBool("dev_static")
	}
	if v.IsSet("event_limit") {
		if n := v.GetInt("event_limit"); n > 0 {
			c.Telemetry.EventLimit = n
		}
	}

	c.ApplyDefaults()
}
