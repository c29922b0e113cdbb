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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/hrify/internal/detector"
	"github.com/valpere/hrify/internal/moderation"
	"github.com/valpere/hrify/internal/prompts"
	"github.com/valpere/hrify/internal/server"
)

var noRecord bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP backend",
	Long: `Run the backend that answers POST /process.

Routes:
  GET  /health          liveness
  GET  /debug/env       provider and prompts status (no secrets)
  GET  /debug/prompts   languages and scenarios found in prompts.json
  POST /process         {"text","scenario","ui_lang"} -> {"result"} or {"error"}`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gen, err := buildGenerator()
		if err != nil {
			return err
		}
		if err := gen.IsAvailable(ctx); err != nil {
			logrus.WithError(err).Warn("generator is not configured; /process will return an error")
		}

		limiter, closeLimiter := buildLimiter(ctx)
		defer closeLimiter()

		cfg := server.Config{
			AllowedOrigins: splitList(viper.GetString("server.allowed_origins")),
			Debug:          viper.GetBool("server.debug"),
			Prompts: prompts.NewStore(viper.GetString("prompts.path"), viper.GetBool("prompts.reload")).
				WithLogger(logrus.StandardLogger()),
			Detector:   detector.New(),
			Generator:  gen,
			Limiter:    limiter,
			Moderation: moderation.Parse(viper.GetString("banned_words")),
			Logger:     logrus.StandardLogger(),
		}

		if !noRecord {
			db, err := openStore()
			if err != nil {
				logrus.WithError(err).Warn("request log disabled")
			} else {
				defer db.Close()
				cfg.Recorder = db
			}
		}

		srv, err := server.NewServer(cfg)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		logrus.WithFields(logrus.Fields{
			"provider": gen.Name(),
			"model":    gen.Model(),
			"prompts":  viper.GetString("prompts.path"),
		}).Info("starting hrify backend")

		return srv.Run(ctx, fmt.Sprintf(":%d", viper.GetInt("server.port")))
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 5000, "Port to listen on (env PORT)")
	serveCmd.Flags().String("prompts", "prompts.json", "Path to prompts.json (env PROMPTS_PATH)")
	serveCmd.Flags().String("provider", "openai", "LLM provider: openai or ollama (env HRIFY_PROVIDER)")
	serveCmd.Flags().String("redis", "", "Redis address for a shared rate limiter (env REDIS_ADDR)")
	serveCmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not write the request log")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("prompts.path", serveCmd.Flags().Lookup("prompts"))
	viper.BindPFlag("provider", serveCmd.Flags().Lookup("provider"))
	viper.BindPFlag("redis.addr", serveCmd.Flags().Lookup("redis"))
}
