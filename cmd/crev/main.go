package main

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/womingyoutian/crev/pkg/config"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "crev",
		Short: "crev is a decentralized code-review web-of-trust tool",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.LoadFromEnv(); err != nil {
				log.WithError(err).Debug("config load failed")
			}
			level, err := log.ParseLevel(config.AppConfig.Logging.Level)
			if err == nil {
				log.SetLevel(level)
			}
			return nil
		},
	}
	rootCmd.AddCommand(idCmd())
	rootCmd.AddCommand(proofCmd())
	rootCmd.AddCommand(trustCmd())

	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}
