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
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/hrify/internal/i18n"
	"github.com/valpere/hrify/internal/validator"
)

var (
	checkInput string
	checkCSV   bool
	checkLang  string
)

var checkCmd = &cobra.Command{
	Use:   "check [text...]",
	Short: "Run the local prevalidation on text without sending it",
	Long: `Run the local checks on each argument, or on each non-blank line of
--input (or stdin), and print the verdicts. Nothing is sent to the backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lines := args
		if len(lines) == 0 {
			raw, err := readInput(nil, checkInput, os.Stdin)
			if err != nil {
				return err
			}
			sc := bufio.NewScanner(strings.NewReader(raw))
			sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for sc.Scan() {
				if strings.TrimSpace(sc.Text()) != "" {
					lines = append(lines, sc.Text())
				}
			}
			if err := sc.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
		}
		if len(lines) == 0 {
			return fmt.Errorf("no text to check")
		}

		tr := i18n.MustLoad().Translator(resolveLang(cmd.Context(), checkLang))
		out := cmd.OutOrStdout()

		if checkCSV {
			w := csv.NewWriter(out)
			w.Write([]string{"text", "accepted", "reason", "message"})
			for _, line := range lines {
				v := validator.Check(line)
				w.Write([]string{line, fmt.Sprintf("%v", v.Accepted), string(v.Reason), verdictMessage(tr, v)})
			}
			w.Flush()
			return w.Error()
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERDICT\tREASON\tTEXT")
		for _, line := range lines {
			v := validator.Check(line)
			snippet := []rune(strings.TrimSpace(line))
			if len(snippet) > 40 {
				snippet = append(snippet[:37], []rune("...")...)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", verdictMessage(tr, v), v.Reason, string(snippet))
		}
		return w.Flush()
	},
}

func verdictMessage(tr *i18n.Translator, v validator.Verdict) string {
	if v.Accepted {
		return tr.T("accepted")
	}
	return tr.T(string(v.Reason))
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkInput, "input", "i", "", "File with one text per line")
	checkCmd.Flags().BoolVar(&checkCSV, "csv", false, "Print CSV instead of a table")
	checkCmd.Flags().StringVarP(&checkLang, "lang", "l", "", "Language for messages: ru, en or es")
}
