// Package config loads, validates, and defaults the overlayd TOML configuration.
package config
