package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/madfam-org/ticketbooth/internal/cli"
)

func main() {
	cfg, err := cli.LoadConfig()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	logrus.SetLevel(cfg.LogLevel)
	logrus.SetOutput(os.Stderr)

	rootCmd := cli.NewRootCommand(cfg)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
