// Package config loads service settings with viper.
//
// Values are resolved in this order, later sources winning: built-in
// defaults, config.yaml, a .env file, the process environment and finally
// command-line flags bound by the caller. Keys use their environment
// spelling everywhere, for example PORT or GOOGLE_REFRESH_TOKEN.
package config
