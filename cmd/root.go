/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "0.3.0"

var (
	cfgFile  string
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "hrify",
	Short: "Polite HR replies in one click",
	Long: `hrify turns a short note about a candidate into a ready-to-send reply:
a rejection, an offer or a reminder.

The backend ("hrify serve") holds the prompts and talks to the LLM; the
client commands ("hrify submit", "hrify check") prevalidate text locally
before anything is sent.

Use "hrify submit --help" for the form options.`,
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// envBindings maps config keys to the environment names the backend has
// always used.
var envBindings = map[string][]string{
	"server.port":            {"PORT"},
	"server.debug":           {"HRIFY_DEBUG", "FLASK_DEBUG"},
	"server.allowed_origins": {"HRIFY_ALLOWED_ORIGINS"},
	"rate_limit.requests":    {"RATE_LIMIT_REQUESTS"},
	"rate_limit.window":      {"RATE_LIMIT_WINDOW"},
	"banned_words":           {"BANNED_WORDS"},
	"prompts.path":           {"PROMPTS_PATH"},
	"prompts.reload":         {"PROMPTS_RELOAD"},
	"openai.api_key":         {"OPENAI_API_KEY"},
	"openai.model":           {"OPENAI_MODEL"},
	"openai.base_url":        {"OPENAI_BASE_URL"},
	"provider":               {"HRIFY_PROVIDER"},
	"ollama.url":             {"OLLAMA_URL"},
	"ollama.model":           {"OLLAMA_MODEL"},
	"redis.addr":             {"REDIS_ADDR"},
	"redis.password":         {"REDIS_PASSWORD"},
	"redis.db":               {"REDIS_DB"},
	"db":                     {"HRIFY_DB"},
	"endpoint":               {"HRIFY_ENDPOINT"},
	"lang":                   {"HRIFY_LANG"},
	"log.level":              {"HRIFY_LOG_LEVEL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.debug", true)
	v.SetDefault("server.allowed_origins", "*")
	v.SetDefault("rate_limit.requests", 50)
	v.SetDefault("rate_limit.window", 60)
	v.SetDefault("banned_words", "дурак,идиот")
	v.SetDefault("prompts.path", "prompts.json")
	v.SetDefault("prompts.reload", true)
	v.SetDefault("openai.model", "gpt-5-mini")
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("provider", "openai")
	v.SetDefault("ollama.url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2")
	v.SetDefault("redis.db", 0)
	v.SetDefault("db", "./data/hrify.db")
	v.SetDefault("endpoint", "http://localhost:5000/process")
	v.SetDefault("log.level", "info")
}

func initConfig() error {
	if err := loadDotEnv(envFile); err != nil {
		return err
	}

	setDefaults(viper.GetViper())
	for key, envs := range envBindings {
		if err := viper.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	} else {
		viper.SetConfigName("hrify")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	if logLevel != "" {
		viper.Set("log.level", logLevel)
	}
	return configureLogging(viper.GetString("log.level"))
}

// loadDotEnv copies KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing default file
// is not an error.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("env file not found: %s", path)
		}
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		os.Setenv(name, v.GetString(key))
	}
	return nil
}

func configureLogging(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ./hrify.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Dotenv file loaded before the environment (default ./.env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("db", "./data/hrify.db", "Database path for the request log and preferences (env HRIFY_DB)")

	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
}
