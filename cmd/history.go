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
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the backend request log",
	Long:  `List, summarise, and clear the SQLite log of processed requests.`,
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := db.ListRequests(cmd.Context(), historyLimit)
		if err != nil {
			return fmt.Errorf("failed to list requests: %w", err)
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No requests recorded.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tSCENARIO\tUI\tPROMPT\tSTATUS\tMS\tTEXT")
		for _, r := range records {
			snippet := []rune(r.Text)
			if len(snippet) > 40 {
				snippet = append(snippet[:37], []rune("...")...)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				r.Timestamp.Local().Format("2006-01-02 15:04"),
				r.Scenario, r.UILang, r.PromptLang, r.Status, r.LatencyMs, string(snippet))
		}
		return w.Flush()
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show request log statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Total requests: %d\n", stats.Total)
		fmt.Fprintf(out, "Succeeded:      %d\n", stats.Succeeded)
		fmt.Fprintf(out, "Failed:         %d\n", stats.Failed)
		fmt.Fprintf(out, "Avg latency:    %.0f ms\n", stats.AvgLatencyMs)

		scenarios := make([]string, 0, len(stats.ByScenario))
		for sc := range stats.ByScenario {
			scenarios = append(scenarios, sc)
		}
		sort.Strings(scenarios)
		for _, sc := range scenarios {
			fmt.Fprintf(out, "  %-12s %d\n", sc, stats.ByScenario[sc])
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all entries from the request log",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.ClearRequests(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to clear request log: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d requests.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyListCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Maximum number of requests to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyClearCmd)
}
