// Package config provides configuration management for the card catalog.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: embedded SQLite file or MySQL connection details
//   - Storage: optional S3/MinIO patch artifact archive
//   - Log: logging level and format
//   - Sources: vendor feed endpoints, cache and timeout settings
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
