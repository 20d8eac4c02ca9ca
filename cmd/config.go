/*
Copyright © 2026 Ahmed Coding
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ahmed-coding/Gravitas-Core/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "GRAVITAS"
	configName = ".gravitas"
)

// InitConfig reads in the config file and environment variables.
// Precedence: flags > environment > config file > defaults.
func InitConfig() {
	config.SetDefaults()

	// Load a project-root .env first if present, so GRAVITAS_* keys in it
	// are visible to AutomaticEnv below. A missing .env is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix) // e.g. GRAVITAS_VERBOSE
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(configName) // ./.gravitas.yaml or $HOME/.gravitas.yaml
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; a malformed one is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Warning: config file error: %v\n", err)
		}
	} else if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "[DEBUG] Using config file: %s\n", viper.ConfigFileUsed())
	}
}
