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
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/valpere/hrify/internal/generator"
	"github.com/valpere/hrify/internal/i18n"
	"github.com/valpere/hrify/internal/ratelimit"
	"github.com/valpere/hrify/internal/store"
)

// buildGenerator constructs the LLM provider named by the provider setting.
func buildGenerator() (generator.Service, error) {
	switch name := strings.ToLower(strings.TrimSpace(viper.GetString("provider"))); name {
	case "", "openai":
		return generator.NewOpenAIService(generator.ServiceConfig{
			APIKey:  viper.GetString("openai.api_key"),
			Model:   viper.GetString("openai.model"),
			BaseURL: viper.GetString("openai.base_url"),
		}), nil
	case "ollama":
		svc := generator.NewOllamaService(viper.GetString("ollama.url"), viper.GetString("ollama.model"))
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := svc.Ping(ctx); err != nil {
			logrus.WithError(err).Warn("Ollama is not reachable yet")
		}
		return svc, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}

// buildLimiter returns a Redis-backed limiter when redis.addr is set and
// reachable, otherwise the in-process one.
func buildLimiter(ctx context.Context) (ratelimit.Limiter, func()) {
	cfg := ratelimit.Config{
		Requests: viper.GetInt("rate_limit.requests"),
		Window:   time.Duration(viper.GetInt("rate_limit.window")) * time.Second,
	}

	addr := strings.TrimSpace(viper.GetString("redis.addr"))
	if addr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		rl, err := ratelimit.NewRedisLimiter(pingCtx, ratelimit.RedisOptions{
			Address:  addr,
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		}, cfg)
		if err == nil {
			logrus.WithField("addr", addr).Info("using Redis rate limiter")
			return rl, func() { rl.Close() }
		}
		logrus.WithError(err).Warn("falling back to in-memory rate limiter")
	}
	return ratelimit.NewMemoryLimiter(cfg), func() {}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func openStore() (*store.Store, error) {
	db, err := store.New(viper.GetString("db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// resolveLang picks the UI language: explicit flag, then HRIFY_LANG, then
// the saved preference, then the default.
func resolveLang(ctx context.Context, flagLang string) string {
	if flagLang != "" {
		return i18n.Resolve(flagLang)
	}
	if env := viper.GetString("lang"); env != "" {
		return i18n.Resolve(env)
	}
	db, err := openStore()
	if err != nil {
		logrus.WithError(err).Debug("language preference unavailable")
		return i18n.DefaultLang
	}
	defer db.Close()

	saved, ok, err := db.GetPreference(ctx, store.LangPreferenceKey)
	if err != nil || !ok {
		return i18n.DefaultLang
	}
	return i18n.Resolve(saved)
}

// readInput returns the text from args, the input file, or stdin, in that
// order of preference.
func readInput(args []string, inputPath string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if inputPath != "" {
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		return string(data), nil
	}
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}
