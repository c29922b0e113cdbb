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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/hrify/internal"
	"github.com/valpere/hrify/internal/client"
	"github.com/valpere/hrify/internal/i18n"
	"github.com/valpere/hrify/internal/markdown"
	"github.com/valpere/hrify/internal/submitter"
)

var (
	submitScenario string
	submitLang     string
	submitInput    string
	submitCopyTo   string
	submitHTML     bool
)

var errSubmitFailed = errors.New("submission failed")

var submitCmd = &cobra.Command{
	Use:   "submit [text...]",
	Short: "Prevalidate text and request a reply from the backend",
	Long: `Prevalidate text and send it to the backend for one scenario.

Scenarios:
  - reject   polite rejection
  - hire     offer / next steps
  - remind   reminder to a candidate

Text comes from the arguments, --input, or stdin. Text that fails the local
checks (too short, repeated characters, too few letters, too many symbols)
is never sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scenario, err := internal.ParseScenario(submitScenario)
		if err != nil {
			return err
		}

		text, err := readInput(args, submitInput, os.Stdin)
		if err != nil {
			return err
		}

		ctx := context.Background()

		lang := resolveLang(ctx, submitLang)
		tr := i18n.MustLoad().Translator(lang)

		var format func(string) string
		if submitHTML {
			format = markdown.ToHTML
		}
		display := submitter.NewTerminalDisplay(tr, cmd.OutOrStdout(), cmd.ErrOrStderr(), format)

		svc := client.New(viper.GetString("endpoint"))
		out := submitter.New(svc, display, lang).Submit(ctx, text, scenario)

		if out.Kind != submitter.KindSuccess {
			cmd.SilenceErrors = true
			cmd.SilenceUsage = true
			return errSubmitFailed
		}

		if submitCopyTo != "" {
			if err := os.WriteFile(submitCopyTo, []byte(markdown.ToPlainText(out.Text)+"\n"), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", submitCopyTo, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", tr.T("copied"), submitCopyTo)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVarP(&submitScenario, "scenario", "s", "", "Scenario: reject, hire or remind (required)")
	submitCmd.Flags().StringVarP(&submitLang, "lang", "l", "", "UI language: ru, en or es (default: saved preference)")
	submitCmd.Flags().StringVarP(&submitInput, "input", "i", "", "Read text from file")
	submitCmd.Flags().StringVar(&submitCopyTo, "copy-to", "", "Also write the reply as plain text to this file")
	submitCmd.Flags().BoolVar(&submitHTML, "html", false, "Print the reply rendered as HTML")
	submitCmd.Flags().String("endpoint", "http://localhost:5000/process", "Backend endpoint (env HRIFY_ENDPOINT)")

	submitCmd.MarkFlagRequired("scenario")
	viper.BindPFlag("endpoint", submitCmd.Flags().Lookup("endpoint"))
}
