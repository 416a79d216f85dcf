// Package config loads typed configuration structs from environment
// variables (github.com/caarlos0/env) with optional .env file support
// (github.com/joho/godotenv). Every component of the orchestrator
// declares its own Config struct next to the code that consumes it and
// loads it through this package at process start.
package config
