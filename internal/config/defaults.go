package config

import "github.com/spf13/viper"

// SetDefaults registers every configuration key with its default value.
// Keys follow the section.key convention so they can be overridden via
// .gravitas.yaml, GRAVITAS_* environment variables, or flags.
func SetDefaults() {
	viper.SetDefault("verbose", false)

	viper.SetDefault("store.path", "")

	viper.SetDefault("policy.max_retries_per_step", 3)
	viper.SetDefault("policy.identical_failure_threshold", 2)
	viper.SetDefault("policy.hard_stop_on_repeated_failure", true)

	viper.SetDefault("controller.strict_transitions", false)
}

// PolicyFromConfig reads the retry policy out of the loaded config.
func PolicyFromConfig() (maxRetries, identicalThreshold int, hardStop bool) {
	return viper.GetInt("policy.max_retries_per_step"),
		viper.GetInt("policy.identical_failure_threshold"),
		viper.GetBool("policy.hard_stop_on_repeated_failure")
}
