// internal/cli/output.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"casematch-workers/internal/casematch"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeMatchTable(w io.Writer, page casematch.MatchPage) error {
	if len(page.Cards) == 0 {
		fmt.Fprintln(w, "No matching cases.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCASE\tGRADE\tMATCH\tVEC\tKEY\tMETA\tREASONS")
	fmt.Fprintln(tw, "-\t----\t-----\t-----\t---\t---\t----\t-------")

	for i, card := range page.Cards {
		vec, key, meta := "-", "-", "-"
		if card.Scores != nil {
			vec = formatScore(card.Scores.VectorSimilarity)
			key = formatScore(card.Scores.KeywordMatch)
			meta = formatScore(card.Scores.MetadataMatch)
		}
		grade := string(card.Grade.Grade)
		if card.Degraded {
			grade += "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			page.Page.Offset+i+1,
			truncate(card.Title, 30),
			grade,
			card.Percent,
			vec, key, meta,
			reasonSummary(card),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nShowing %d of %d matches", page.Page.Returned, page.Page.Total)
	if page.Page.HasMore {
		fmt.Fprint(w, " (more available)")
	}
	fmt.Fprintln(w)
	if page.DegradedCount > 0 {
		fmt.Fprintf(w, "* %d scored without vector similarity\n", page.DegradedCount)
	}
	if page.ExcludedCount > 0 {
		fmt.Fprintf(w, "%d candidates excluded\n", page.ExcludedCount)
	}
	return nil
}

func writeGradeTable(w io.Writer, rows []gradeRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GRADE\tLABEL\tCOLOR\tMIN TOTAL")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Grade, r.Label, r.Color, formatScore(r.MinTotal))
	}
	return tw.Flush()
}

func reasonSummary(card casematch.MatchCard) string {
	parts := make([]string, 0, len(card.Badges)+1)
	for _, b := range card.Badges {
		parts = append(parts, b.Description)
	}
	if card.OverflowLabel != "" {
		parts = append(parts, card.OverflowLabel)
	}
	return strings.Join(parts, ", ")
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
