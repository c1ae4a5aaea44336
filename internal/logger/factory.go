package logger

import "github.com/rs/zerolog"

// Static getters for the names used in config log.levels.

// GetEngineLogger returns the logger for the engine writer loop.
func GetEngineLogger() zerolog.Logger {
	return GetLogger("engine")
}

// GetStoreLogger returns the logger for the durable store.
func GetStoreLogger() zerolog.Logger {
	return GetLogger("store")
}

// GetPersistLogger returns the logger for the persistence adapter.
func GetPersistLogger() zerolog.Logger {
	return GetLogger("persist")
}

// GetGeneratorLogger returns the logger for AI providers.
func GetGeneratorLogger() zerolog.Logger {
	return GetLogger("generator")
}

// GetCLILogger returns the logger for command handlers.
func GetCLILogger() zerolog.Logger {
	return GetLogger("cli")
}
