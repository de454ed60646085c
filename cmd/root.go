package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inheir-ai/inheir-console/internal/api"
	"github.com/inheir-ai/inheir-console/internal/session"
	"github.com/inheir-ai/inheir-console/internal/store"
)

var (
	cfgFile    string
	apiBaseURL string
	dbPath     string
	redisURL   string
	logLevel   string
	docsDir    string
	apiTimeout time.Duration
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inheir-console",
	Short: "Terminal client for the Inheir.ai case portal",
	Long: `Inheir-Console is a terminal client for the Inheir.ai legal research
platform: sign in, open and manage property cases, chat with the case
assistant, and run one-shot location risk analysis.

Features:
- Case creation from a watched documents folder
- Per-case assistant chat with offline transcript cache
- GIS address risk analysis
- Property report submission and admin review
- Redis Streams sync between console instances`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsole(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.inheir-console.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "http://localhost:8000", "Inheir.ai backend base URL")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "./data/inheir-console.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&redisURL, "redis", "", "Redis connection URL for multi-instance sync (optional)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&docsDir, "docs-dir", "./documents", "Watched folder for case documents")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "timeout", 30*time.Second, "Backend request timeout")

	// Bind flags to viper
	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("redis.url", rootCmd.PersistentFlags().Lookup("redis"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("documents.dir", rootCmd.PersistentFlags().Lookup("docs-dir"))
	viper.BindPFlag("api.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".inheir-console" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".inheir-console")
	}

	viper.SetEnvPrefix("INHEIR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	viper.SetDefault("api.base_url", "http://localhost:8000")
	viper.SetDefault("database.path", "./data/inheir-console.db")
	viper.SetDefault("redis.url", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("documents.dir", "./documents")
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("ui.theme", "dark")
}

// Config represents the application configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Documents DocumentsConfig `mapstructure:"documents"`
	UI        UIConfig        `mapstructure:"ui"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DocumentsConfig struct {
	Dir string `mapstructure:"dir"`
}

type UIConfig struct {
	Theme string `mapstructure:"theme"`
}

// GetConfig returns the current configuration values
func GetConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: viper.GetString("api.base_url"),
			Timeout: viper.GetDuration("api.timeout"),
		},
		Database: DatabaseConfig{
			Path: viper.GetString("database.path"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("redis.url"),
		},
		Log: LogConfig{
			Level: viper.GetString("log.level"),
		},
		Documents: DocumentsConfig{
			Dir: viper.GetString("documents.dir"),
		},
		UI: UIConfig{
			Theme: viper.GetString("ui.theme"),
		},
	}
}

// buildLogger constructs the process logger. The TUI logs to a file so the
// screen stays clean; headless commands log to stderr.
func buildLogger(level string, toFile bool) (*zap.SugaredLogger, func(), error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if toFile {
		cfg.OutputPaths = []string{"./inheir-console.log"}
		cfg.ErrorOutputPaths = []string{"./inheir-console.log"}
	} else {
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	zap.ReplaceGlobals(logger)
	sugar := logger.Sugar()
	return sugar, func() { _ = logger.Sync() }, nil
}

// openWorkspace wires the pieces every command needs: backend client plus
// the local cache and session store.
func openWorkspace(logger *zap.SugaredLogger) (*api.Client, *store.Store, *session.KVStore, error) {
	cfg := GetConfig()

	client, err := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create API client: %w", err)
	}

	if dir := filepath.Dir(cfg.Database.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	st, err := store.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open local store: %w", err)
	}

	return client, st, session.NewKVStore(st), nil
}
