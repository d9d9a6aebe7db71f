package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/moolen/casa/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const Version = "0.1.0"

// envPrefix maps a flag such as --data-dir onto CASA_DATA_DIR
const envPrefix = "CASA_"

var (
	logLevelFlags []string // Supports multiple --log-level flags
	logFormat     string
	envFile       string
)

var rootCmd = &cobra.Command{
	Use:   "casa",
	Short: "casa - INAD route risk classification",
	Long: `casa classifies airline routes by their rate of inadmissible passengers (INAD)
per passenger volume, flags high-risk routes per half-year period and detects
routes that stay flagged across periods.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFile(envFile); err != nil {
			return err
		}
		if err := applyEnvDefaults(cmd.Flags()); err != nil {
			return err
		}
		logging.SetFormat(logFormat)
		return setupLog(logLevelFlags)
	},
}

// Execute runs the root command and prints any error to stderr
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func init() {
	// Supports per-package log levels: --log-level debug --log-level records=debug
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level",
		[]string{"info"},
		"Log level for packages. Use 'default=level' for default, or 'package.name=level' for per-package.\n"+
			"Examples: --log-level debug (all), --log-level service=debug --log-level records=warn")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format (text, json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "File with KEY=value lines loaded into the environment if it exists")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historicCmd)
	rootCmd.AddCommand(systemicCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serverCmd)
}

// loadEnvFile loads path without overriding variables already set. A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnvDefaults sets every flag not given on the command line from its CASA_*
// environment variable, if present.
func applyEnvDefaults(flags *pflag.FlagSet) error {
	var firstErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || firstErr != nil {
			return
		}
		value, ok := os.LookupEnv(envKey(f.Name))
		if !ok {
			return
		}
		if err := flags.Set(f.Name, value); err != nil {
			firstErr = fmt.Errorf("invalid %s: %w", envKey(f.Name), err)
		}
	})
	return firstErr
}

// envKey converts a flag name to its environment variable: data-dir -> CASA_DATA_DIR
func envKey(flagName string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// setupLog initializes the logging system with parsed log level flags
// Priority: CLI flags > LOG_LEVEL_* environment variables > default
func setupLog(flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(flags)
	if err != nil {
		return err
	}
	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags parses CLI flags and environment variables
//
// CLI format: ["debug"], ["default=info", "service=debug"], or ["info"]
// Env vars: LOG_LEVEL_CONFIG_WATCHER=debug (package name uppercased, dots to underscores)
func parseLogLevelFlags(flags []string) (string, map[string]string, error) {
	result := make(map[string]string)

	for _, envPair := range os.Environ() {
		if !strings.HasPrefix(envPair, "LOG_LEVEL_") {
			continue
		}
		key, level, ok := strings.Cut(envPair, "=")
		if !ok {
			continue
		}
		result[convertEnvKeyToPackageName(key)] = level
	}

	for _, flag := range flags {
		pkg, level, ok := strings.Cut(flag, "=")
		if !ok {
			result["default"] = flag
			continue
		}
		result[pkg] = level
	}

	defaultLevel := "info"
	if level, exists := result["default"]; exists {
		defaultLevel = level
		delete(result, "default")
	}

	if _, err := logging.ParseLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if _, err := logging.ParseLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %w", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

// convertEnvKeyToPackageName converts LOG_LEVEL_CONFIG_WATCHER -> config.watcher
func convertEnvKeyToPackageName(envKey string) string {
	name := strings.TrimPrefix(envKey, "LOG_LEVEL_")
	return strings.ToLower(strings.ReplaceAll(name, "_", "."))
}
