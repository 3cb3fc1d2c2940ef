package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dbizzy/internal/graph"
)

// DBConfig describes the live database whose schema is drawn.
type DBConfig struct {
	Type         string `yaml:"type" toml:"type" json:"type"`
	Host         string `yaml:"host" toml:"host" json:"host"`
	Port         int    `yaml:"port" toml:"port" json:"port"`
	Username     string `yaml:"username" toml:"username" json:"username"`
	Password     string `yaml:"password" toml:"password" json:"password"`
	DatabaseName string `yaml:"database_name" toml:"database_name" json:"database_name"`
	DSN          string `yaml:"dsn" toml:"dsn" json:"dsn"` // optional explicit DSN
}

type ServerConfig struct {
	Port   int    `yaml:"port" toml:"port" json:"port"`
	WebDir string `yaml:"web_dir" toml:"web_dir" json:"web_dir"`
}

// DiagramConfig selects the schema file and how it is drawn.
type DiagramConfig struct {
	SchemaFile    string `yaml:"schema_file" toml:"schema_file" json:"schema_file"`
	Format        string `yaml:"format" toml:"format" json:"format"` // dot, mermaid or json
	graph.Options `yaml:",inline"`
}

type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" toml:"debounce_ms" json:"debounce_ms"`
}

// Debounce returns the configured debounce, 300ms when unset.
func (w WatchConfig) Debounce() time.Duration {
	if w.DebounceMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(w.DebounceMS) * time.Millisecond
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
}

type AppConfig struct {
	Database DBConfig      `yaml:"database" toml:"database" json:"database"`
	Server   ServerConfig  `yaml:"server" toml:"server" json:"server"`
	Diagram  DiagramConfig `yaml:"diagram" toml:"diagram" json:"diagram"`
	Watch    WatchConfig   `yaml:"watch" toml:"watch" json:"watch"`
	Log      LogConfig     `yaml:"log" toml:"log" json:"log"`
}

// LoadFile loads the config from path, as TOML when the file ends in .toml
// and as YAML otherwise.
func LoadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	f, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(f, &cfg); err != nil {
			return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}
	if err := yaml.Unmarshal(f, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv loads a .env file from the working directory, when there is one,
// and then overrides cfg with the DBIZZY_* environment variables that are set.
func ApplyEnv(cfg *AppConfig) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return applyEnv(cfg, os.Getenv)
}

func applyEnv(cfg *AppConfig, getenv func(string) string) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"DBIZZY_DB_TYPE", &cfg.Database.Type},
		{"DBIZZY_DB_HOST", &cfg.Database.Host},
		{"DBIZZY_DB_USERNAME", &cfg.Database.Username},
		{"DBIZZY_DB_PASSWORD", &cfg.Database.Password},
		{"DBIZZY_DB_DATABASE", &cfg.Database.DatabaseName},
		{"DBIZZY_DB_DSN", &cfg.Database.DSN},
		{"DBIZZY_LOG_LEVEL", &cfg.Log.Level},
	}
	for _, s := range strs {
		if v := getenv(s.key); v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"DBIZZY_DB_PORT", &cfg.Database.Port},
		{"DBIZZY_PORT", &cfg.Server.Port},
	}
	for _, i := range ints {
		v := getenv(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = n
	}
	return nil
}

// NormalizeDriver maps common aliases to canonical driver names.
func NormalizeDriver(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	if canonical, ok := driverAliases[d]; ok {
		return canonical
	}
	return d
}

var driverAliases = map[string]string{
	"postgresql": "postgres",
	"pg":         "postgres",
	"postgres":   "postgres",
	"mysql":      "mysql",
	"mariadb":    "mysql",
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
	"mssql":      "sqlserver",
	"sqlserver":  "sqlserver",
	"godror":     "godror",
	"oracle":     "godror",
}

// BuildDriverAndDSN produces a driver name and DSN string for supported DB types.
// An explicit DSN wins over the individual connection fields.
func BuildDriverAndDSN(db DBConfig) (driver string, dsn string, err error) {
	driver = NormalizeDriver(db.Type)
	if db.DSN != "" {
		return driver, db.DSN, nil
	}

	switch driver {
	case "postgres":
		dsn = fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "mysql":
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "sqlite":
		if db.DatabaseName == "" {
			return "", "", fmt.Errorf("sqlite needs a file path in database_name")
		}
		dsn = fmt.Sprintf("file:%s?mode=ro", db.DatabaseName)
	case "sqlserver":
		dsn = fmt.Sprintf("sqlserver://%s:%s@%s:%d?database=%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	case "godror":
		// EZCONNECT
		dsn = fmt.Sprintf("%s/%s@%s:%d/%s",
			db.Username, db.Password, db.Host, db.Port, db.DatabaseName)
	default:
		return "", "", fmt.Errorf("unsupported database type: %s", db.Type)
	}
	return driver, dsn, nil
}
