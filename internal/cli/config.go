package cli

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

type Config struct {
	LogLevel logrus.Level

	// API Configuration
	APIURL string
	APIKey string

	Output string
}

// LoadConfig reads CLI settings from TICKETBOOTH_* environment variables.
// Flags given on the command line override them.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("TICKETBOOTH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("log-level", "warn")
	v.SetDefault("api-url", "http://localhost:8080")
	v.SetDefault("output", OutputTable)

	if err := v.BindEnv("api-key", "TICKETBOOTH_API_KEY", "TOKENS_API_KEY"); err != nil {
		return nil, err
	}

	logLevel, err := logrus.ParseLevel(v.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	config := &Config{
		LogLevel: logLevel,
		APIURL:   v.GetString("api-url"),
		APIKey:   v.GetString("api-key"),
		Output:   strings.ToLower(v.GetString("output")),
	}

	return config, nil
}

func validateOutput(format string) error {
	switch format {
	case OutputTable, OutputJSON, OutputYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected table, json or yaml)", format)
	}
}
