// Package main is the entry point for the quizhub server.
//
// MAIN PACKAGE IN GO:
// Every Go program starts execution in the main() function of the "main" package.
// The main package should be kept minimal — its job is to:
// 1. Read configuration (from env vars, flags, or config files)
// 2. Create dependencies (logger, database connections, etc.)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
// This separation makes the app testable and its components reusable.
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// A project might have multiple executables (e.g., cmd/server, cmd/migrate, cmd/cli).
// Each gets its own directory with its own main.go.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/tasnim/quizhub/internal/server"
)

func main() {
	// === 1. SET UP LOGGING ===
	// slog.New creates a structured logger. slog.NewTextHandler outputs human-readable logs.
	// os.Stdout means logs go to the terminal. slog.LevelDebug enables all log levels.
	//
	// Log levels (from least to most severe): Debug → Info → Warn → Error
	// In production, you'd use LevelInfo or LevelWarn to reduce noise.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// === 2. READ CONFIGURATION ===
	// We read the port from the PORT environment variable, defaulting to 8080.
	// os.Getenv returns "" if the variable isn't set, so we check and provide a default.
	//
	// In a larger app, you'd use a config library (like viper) or a config struct
	// loaded from a YAML/TOML file. For a service this size, env vars are simple and standard.
	port := 8080
	if portStr := os.Getenv("PORT"); portStr != "" {
		var err error
		port, err = strconv.Atoi(portStr) // Atoi = ASCII to Integer
		if err != nil {
			logger.Error("invalid PORT value", slog.String("value", portStr))
			os.Exit(1)
		}
	}

	// === 3. SECRETS ===
	// Both secrets are REQUIRED — an auth service with a default signing key
	// or a default pepper is worse than one that refuses to start. Generate
	// them with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	//   CREDENTIAL_PEPPER=$(openssl rand -hex 32)
	//
	// server.New validates minimum lengths, so we only check presence here.
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	credentialPepper := os.Getenv("CREDENTIAL_PEPPER")
	if credentialPepper == "" {
		logger.Error("CREDENTIAL_PEPPER is required")
		os.Exit(1)
	}

	// === 4. DATABASE PATH ===
	// DB_PATH selects the storage backend:
	//   DB_PATH=/var/lib/quizhub/prod.db  → SQLite persistence
	//   unset                             → in-memory (dev/demo only)
	dbPath := os.Getenv("DB_PATH")
	if dbPath != "" {
		// Ensure the data directory exists.
		// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
		dbDir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 5. STATIC FILES ===
	// Optional: STATIC_DIR points at the frontend build output. When unset,
	// the server is API-only.
	staticDir := os.Getenv("STATIC_DIR")
	if staticDir != "" {
		staticDir, _ = filepath.Abs(staticDir)
	}

	// === 6. CREATE AND START THE SERVER ===
	cfg := server.Config{
		Port:             port,
		StaticDir:        staticDir,
		DBPath:           dbPath,
		JWTSecret:        jwtSecret,
		CredentialPepper: credentialPepper,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
