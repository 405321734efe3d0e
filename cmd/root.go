/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pdfqa-be",
	Short: "Question answering over your own PDF documents",
	Long: `pdfqa-be stores uploaded PDFs per user, indexes them into a vector
store and answers questions about them with a retrieval augmented LLM call.

Run "pdfqa-be start" to serve the HTTP API, or use the upload and
maintenance commands to work on a user's data directly.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pdfqa-be.yaml, then config/config.yaml)")
}

// initConfig resolves which config file to load. Environment variables
// always override values from the file.
func initConfig() {
	if cfgFile != "" {
		return
	}

	if home, err := os.UserHomeDir(); err == nil {
		v := viper.New()
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".pdfqa-be")
		if err := v.ReadInConfig(); err == nil {
			cfgFile = v.ConfigFileUsed()
		}
	}
	if cfgFile == "" {
		if _, err := os.Stat("config/config.yaml"); err == nil {
			cfgFile = "config/config.yaml"
		}
	}
	if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", cfgFile)
	}
}
