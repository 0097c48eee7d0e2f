package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("CC_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("CC_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("CC_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "data"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("CC_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "log"
	}
	return logFolderPath
}

func GetListen() string {
	return os.Getenv("CC_LISTEN")
}

func GetPort() string {
	port := os.Getenv("CC_PORT")
	if port == "" {
		port = "8080"
	}
	return port
}

// GetWebDomain returns the optional Host allow-list value. Empty means any host.
func GetWebDomain() string {
	return os.Getenv("CC_WEB_DOMAIN")
}

// GetSessionSecret returns the cookie-store secret. Empty means a random
// per-process secret, which invalidates sessions on restart.
func GetSessionSecret() string {
	return os.Getenv("CC_SESSION_SECRET")
}

func GetOpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

// GetOpenAIBaseURL returns an optional endpoint override for the completion
// API. Used by tests and proxy deployments.
func GetOpenAIBaseURL() string {
	return os.Getenv("OPENAI_BASE_URL")
}
