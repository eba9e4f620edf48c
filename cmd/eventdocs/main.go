package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"eventdocs/internal/config"
	"eventdocs/internal/observability"
)

var (
	rootCmd = &cobra.Command{
		Use:   "eventdocs",
		Short: "eventdocs builds documentation and architecture graphs from an EventCatalog project",
	}
	configPath string
	projectDir string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "eventdocs.yaml", "Path to the config file")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", "", "Catalog project directory (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Path to the SQLite database (overrides config)")

	listCmd.Flags().Bool("all-versions", false, "Include every version, not just the latest")

	graphCmd.Flags().String("mode", "simple", "Graph mode: simple or full")
	graphCmd.Flags().String("format", "json", "Output format: json or mermaid")
	graphCmd.Flags().Bool("save", false, "Store the graph in the database")

	exportCmd.Flags().StringP("out", "o", "llms.txt", "Output file for the llms.txt export")
	exportCmd.Flags().String("pages", "", "Also write one markdown page per record into this directory")

	validateCmd.Flags().Bool("strict", false, "Exit non-zero when any reference is unresolved")

	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")
	serveCmd.Flags().Bool("watch", false, "Rescan the project when files change")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig applies the persistent flags on top of config.yaml and the
// environment.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if projectDir != "" {
		cfg.Project.Dir = projectDir
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	return cfg
}

func newLogger(cfg *config.Config) *zap.Logger {
	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}
