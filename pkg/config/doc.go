// Package config loads typed configuration structs from environment
// variables using caarlos0/env tags, with automatic .env discovery via
// godotenv. Each configuration type is parsed once per process and
// cached, so provider adapters can load their config independently
// without repeated environment parsing.
//
// Example:
//
//	type GitHubOAuthConfig struct {
//		ClientID     string `env:"GITHUB_OAUTH_CLIENT_ID,required"`
//		ClientSecret string `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
//		RedirectURL  string `env:"GITHUB_OAUTH_REDIRECT_URL,required"`
//	}
//
//	var cfg GitHubOAuthConfig
//	if err := config.Load(&cfg); err != nil {
//		// missing required variables, malformed values, ...
//	}
package config
