package command

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Reconcile duplicate patient records of a PG company",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Local overrides; a missing .env is fine
		_ = godotenv.Load()
		return os.Setenv("LOG_LEVEL", logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "v", "info", "Log Level")
}

// Run executes a given function with dependencies supplied by the service DI graph.
// `f` must return an error or nothing.
func Run(f interface{}) error {
	opts := append(Dependencies(), fx.NopLogger, fx.Invoke(f))
	app := fx.New(opts...)
	return app.Err()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
