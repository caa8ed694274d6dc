package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Имя приложения; под ним лежит каталог данных пользователя.
const AppName = "TerminSystem"

// DefaultDBFile — имя файла хранилища внутри каталога данных.
const DefaultDBFile = "termins.db"

type Config struct {
	DataDir  string
	DBFile   string
	LogDev   bool
	PageSize int
}

// Load читает конфигурацию из окружения.
// Каталог данных: CLINIC_DATA_DIR, иначе %APPDATA%\TerminSystem (Windows)
// или ~/TerminSystem. Каталог создаётся при необходимости.
func Load() (*Config, error) {
	cfg := &Config{
		DataDir:  getEnv("CLINIC_DATA_DIR", defaultDataDir()),
		DBFile:   getEnv("CLINIC_DB_FILE", DefaultDBFile),
		LogDev:   getEnvBool("CLINIC_LOG_DEV", false),
		PageSize: getEnvInt("CLINIC_PAGE_SIZE", 20),
	}

	// минимальная валидация
	if cfg.DataDir == "" || cfg.DBFile == "" {
		return nil, fmt.Errorf("invalid config: data dir and db file must not be empty")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", cfg.DataDir, err)
	}

	return cfg, nil
}

// DBPath возвращает полный путь к файлу хранилища.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// BackupDir возвращает каталог для резервных копий.
func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backups")
}

func defaultDataDir() string {
	base := os.Getenv("APPDATA")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return AppName
		}
		base = home
	}
	return filepath.Join(base, AppName)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
