// internal/cli/grade.go
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"casematch-workers/internal/casematch"
)

var gradeCmd = &cobra.Command{
	Use:   "grade [total]",
	Short: "Show the grade for a total score, or list all grade tiers",
	Long: `Grade maps a total score (0-100) to its letter grade using the
configured thresholds. Without an argument it lists every tier.

Examples:
  casematch grade 89.5
  casematch grade -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGrade,
}

func init() {
	rootCmd.AddCommand(gradeCmd)
}

type gradeRow struct {
	casematch.GradeDisplay
	MinTotal float64 `json:"minTotal"`
}

func runGrade(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts := casematch.DefaultOptions()
	if cfg != nil {
		opts = cfg.Scoring.ToOptions()
	}
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		g := opts.Grades
		rows := []gradeRow{
			{casematch.DisplayForGrade(casematch.GradeS), g.S},
			{casematch.DisplayForGrade(casematch.GradeA), g.A},
			{casematch.DisplayForGrade(casematch.GradeB), g.B},
			{casematch.DisplayForGrade(casematch.GradeC), g.C},
			{casematch.DisplayForGrade(casematch.GradeD), 0},
		}
		if outputFmt == "json" {
			return writeJSON(out, rows)
		}
		return writeGradeTable(out, rows)
	}

	total, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid total %q: %w", args[0], err)
	}
	if total < 0 || total > 100 {
		return fmt.Errorf("total %v out of range [0, 100]", total)
	}

	agg, err := casematch.NewAggregator(opts)
	if err != nil {
		return fmt.Errorf("invalid scoring configuration: %w", err)
	}
	display := casematch.DisplayForGrade(agg.Grade(total))
	if outputFmt == "json" {
		return writeJSON(out, struct {
			Total float64 `json:"total"`
			casematch.GradeDisplay
			Percent string `json:"percent"`
		}{total, display, casematch.PercentBadge(total)})
	}
	fmt.Fprintf(out, "%s %s (%s, %s)\n", display.Grade, casematch.PercentBadge(total), display.Label, display.Color)
	return nil
}
