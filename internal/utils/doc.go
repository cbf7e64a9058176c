// Package utils exposes the configuration loader and logger factory shared by
// every command: Viper with mapstructure decode hooks for configuration and
// zap for structured logging.
package utils
