package main

import (
	"fmt"
	"os"

	"github.com/aretw0/questionnaire/internal/cli"
	"github.com/aretw0/questionnaire/internal/config"
	"github.com/aretw0/questionnaire/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "questionnaire",
	Short: "Questionnaire authors and runs ordered question flows",
	Long: `Questionnaire lets you configure an ordered list of questions (free text or
multiple choice) and walk respondents through them one at a time.
Question lists and sessions are stored in files, memory or Redis.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Commands return their errors so deferred cleanup runs before the process exits.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	addConfigFlags(rootCmd.PersistentFlags())
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to a YAML or JSON config file")
	flags.String("store", config.StoreFile, "Storage backend: memory, file or redis")
	flags.String("dir", ".questionnaire", "Data directory of the file store")
	flags.StringP("questionnaire", "q", "default", "Questionnaire ID to work on")
	flags.String("redis-addr", "localhost:6379", "Redis address (redis store)")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
}

// loadConfig applies config file, environment and explicitly set flags, in that order.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	override := func(flag string, dst *string) {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}
	override("store", &cfg.Store)
	override("dir", &cfg.DataDir)
	override("questionnaire", &cfg.Questionnaire)
	override("redis-addr", &cfg.Redis.Addr)
	override("log-level", &cfg.Log.Level)
	override("log-format", &cfg.Log.Format)

	return cfg, cfg.Validate()
}

// loadApp bootstraps the service. Callers must Close the app.
func loadApp(cmd *cobra.Command, reg prometheus.Registerer) (*cli.App, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, fail("Error loading configuration", err)
	}

	app, err := cli.Bootstrap(cmd.Context(), cfg, nil, reg)
	if err != nil {
		return nil, cfg, fail("Error initializing questionnaire", err)
	}
	return app, cfg, nil
}

// commandError prints the human message of domain errors and keeps the chain for errors.Is.
type commandError struct {
	op  string
	err error
}

func (e *commandError) Error() string { return e.op + ": " + domain.Message(e.err) }

func (e *commandError) Unwrap() error { return e.err }

func fail(op string, err error) error {
	if err == nil {
		return nil
	}
	return &commandError{op: op, err: err}
}
