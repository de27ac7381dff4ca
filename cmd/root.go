package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/clinio/clinio_backend/cmd/http"
	systemcmd "github.com/clinio/clinio_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "clinio",
	Short: "Clinio multi-tenant clinic platform: commission resolution and billing.",
	Long: `Clinio is a multi-tenant platform for aesthetic and dental clinics.
It resolves commission rules, generates commission records when payments are
confirmed, and tracks payouts for professionals, sellers and reception staff.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
}
