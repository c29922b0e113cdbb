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
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/hrify/internal/i18n"
	"github.com/valpere/hrify/internal/store"
)

var langCmd = &cobra.Command{
	Use:   "lang [code]",
	Short: "Show or save the UI language",
	Long: `Without arguments, print the current UI language. With a code
(ru, en, es), save it as the preference used by submit and check.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s (supported: %s)\n", resolveLang(ctx, ""), strings.Join(i18n.Supported, ", "))
			return nil
		}

		lang := i18n.Normalize(args[0])
		if !i18n.IsSupported(lang) {
			return fmt.Errorf("unsupported language %q (supported: %s)", args[0], strings.Join(i18n.Supported, ", "))
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.SetPreference(ctx, store.LangPreferenceKey, lang); err != nil {
			return fmt.Errorf("failed to save language: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", i18n.MustLoad().Translator(lang).T("langSaved"), lang)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(langCmd)
}
