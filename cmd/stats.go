package cmd

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kjans/mboxkit/config"
	"github.com/kjans/mboxkit/stats"
)

var (
	statsReportDir string
	statsTopN      int
)

var trackedHeaders = []string{"Delivered-To", "Subject", "From", "To"}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Analyse an mbox container and show header value statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd)
		if err != nil {
			return err
		}

		logger, cleanup, err := setupLogger(cfg)
		if err != nil {
			return err
		}
		defer func() {
			_ = cleanup()
		}()
		slog.SetDefault(logger)

		f, err := newFilter(cfg)
		if err != nil {
			return err
		}

		res, _, err := runParse(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}

		counter := make(map[string]map[string]int, len(trackedHeaders))
		for _, h := range trackedHeaders {
			counter[h] = make(map[string]int)
		}

		selected := f.Select(res.Messages)
		for _, msg := range selected {
			for _, name := range trackedHeaders {
				for _, value := range msg.Headers.GetAll(name) {
					if value != "" {
						counter[name][value]++
					}
				}
			}
		}

		skipped := len(res.Messages) - len(selected)
		fmt.Printf("Analyzed %d messages (skipped %d by filters)\n\n", len(selected), skipped)

		if hits := f.Stats().Hits; len(hits) > 0 {
			fmt.Println("Filter hits:")
			printFilterHits(hits)
			fmt.Println()
		}

		for _, header := range trackedHeaders {
			fmt.Printf("Top %d %s:\n", statsTopN, header)
			stats.PrettyPrintTop(counter[header], statsTopN)
			fmt.Println()
		}

		if err := saveCSVReports(counter, trackedHeaders, statsReportDir, 1000); err != nil {
			return fmt.Errorf("error saving CSV reports: %w", err)
		}

		fmt.Printf("\nReports saved to directory: %s\n", statsReportDir)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsReportDir, "output", "o", ".", "Output directory for CSV reports")
	statsCmd.Flags().IntVarP(&statsTopN, "top", "t", 10, "Number of top items to display in statistics")
	rootCmd.AddCommand(statsCmd)
}

func printFilterHits(hits map[string]int) {
	type pair struct {
		Pattern string
		Count   int
	}
	var pairs []pair
	for pattern, count := range hits {
		pairs = append(pairs, pair{pattern, count})
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		return pairs[i].Pattern < pairs[j].Pattern
	})

	for _, p := range pairs {
		fmt.Printf("  %s: %d hits\n", p.Pattern, p.Count)
	}
}

func saveCSVReports(counter map[string]map[string]int, headers []string, dir string, limit int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, header := range headers {
		counts := counter[header]

		filename := fmt.Sprintf("report_%s.csv", normalizeHeaderName(header))
		filePath := filepath.Join(dir, filename)

		file, err := os.Create(filePath)
		if err != nil {
			return err
		}

		writer := csv.NewWriter(file)

		if err := writer.Write([]string{"Value", "Count"}); err != nil {
			file.Close()
			return err
		}

		type pair struct {
			Key   string
			Value int
		}
		var pairs []pair
		for k, v := range counts {
			pairs = append(pairs, pair{k, v})
		}
		sort.Slice(pairs, func(i, j int) bool {
			return pairs[i].Value > pairs[j].Value
		})

		for i := 0; i < limit && i < len(pairs); i++ {
			record := []string{
				pairs[i].Key,
				strconv.Itoa(pairs[i].Value),
			}
			if err := writer.Write(record); err != nil {
				file.Close()
				return err
			}
		}

		writer.Flush()
		file.Close()

		if err := writer.Error(); err != nil {
			return err
		}
	}

	return nil
}

func normalizeHeaderName(header string) string {
	name := strings.ToLower(header)
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
