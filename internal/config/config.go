package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the YAML file read when no explicit path is given.
const DefaultFile = "pipeline.yaml"

type Config struct {
	DataPath      string `yaml:"data_path"`
	OutputPath    string `yaml:"output_path"`
	WorkerCount   int    `yaml:"worker_count"`
	ExportXLSX    bool   `yaml:"export_xlsx"`
	DatabaseURL   string `yaml:"database_url"`
	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUser     string `yaml:"neo4j_user"`
	Neo4jPassword string `yaml:"neo4j_password"`

	// Keybinds extends or overrides the keybind placeholders used in item
	// descriptions, e.g. {"ability1": "Q"}.
	Keybinds map[string]string `yaml:"keybinds"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		DataPath:    "/app/repo",
		OutputPath:  "../../output",
		WorkerCount: 8,
		Neo4jUser:   "neo4j",
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// PIPELINE_CONFIG, or pipeline.yaml), a .env file and the environment, in
// increasing order of precedence. A missing YAML file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getEnv("PIPELINE_CONFIG", DefaultFile)
	}
	if err := loadYAML(path, cfg); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg.DataPath = getEnv("DATA_PATH", cfg.DataPath)
	cfg.OutputPath = getEnv("OUTPUT_PATH", cfg.OutputPath)
	cfg.WorkerCount = getEnvInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.ExportXLSX = getEnvBool("EXPORT_XLSX", cfg.ExportXLSX)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Neo4jURI = getEnv("NEO4J_URI", cfg.Neo4jURI)
	cfg.Neo4jUser = getEnv("NEO4J_USER", cfg.Neo4jUser)
	cfg.Neo4jPassword = getEnv("NEO4J_PASSWORD", cfg.Neo4jPassword)

	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("Loaded config file")
	return nil
}

// OutputDir resolves OutputPath against DataPath unless it is absolute.
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.OutputPath) {
		return filepath.Clean(c.OutputPath)
	}
	return filepath.Join(c.DataPath, c.OutputPath)
}

// PublishEnabled reports whether artifacts should be uploaded to PostgreSQL.
func (c *Config) PublishEnabled() bool { return c.DatabaseURL != "" }

// GraphEnabled reports whether relations should be loaded into Neo4j.
func (c *Config) GraphEnabled() bool { return c.Neo4jURI != "" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
