// internal/cli/rank.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"casematch-workers/internal/casematch"
	"casematch-workers/internal/embedding"
)

var rankCmd = &cobra.Command{
	Use:   "rank <file|->",
	Short: "Score and rank candidate cases against a query",
	Long: `Rank reads a JSON document holding a query and its candidate cases,
scores every candidate and prints the requested page of match cards.

Input shape:
  {"query": {...}, "candidates": [...], "minGrade": "B", "offset": 0, "limit": 10, "view": "summary"}

Examples:
  casematch rank request.json
  casematch rank --min-grade A -o json request.json
  cat request.json | casematch rank -`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

var (
	rankMinGrade string
	rankLimit    int
	rankView     string
)

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&rankMinGrade, "min-grade", "", "Override the request's minimum grade (S, A, B, C, D)")
	rankCmd.Flags().IntVar(&rankLimit, "limit", 0, "Override the request's page size")
	rankCmd.Flags().StringVar(&rankView, "view", "", "Override the card view (summary, expanded)")
}

// rankRequest is the file format accepted by the rank command.
type rankRequest struct {
	Query      casematch.Query           `json:"query"`
	Candidates []casematch.CandidateCase `json:"candidates"`
	MinGrade   casematch.Grade           `json:"minGrade,omitempty"`
	Offset     int                       `json:"offset,omitempty"`
	Limit      int                       `json:"limit,omitempty"`
	View       casematch.CardView        `json:"view,omitempty"`
}

func runRank(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}

	req, err := readRankRequest(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	if rankMinGrade != "" {
		req.MinGrade = casematch.Grade(rankMinGrade)
	}
	if rankLimit > 0 {
		req.Limit = rankLimit
	}
	if rankView != "" {
		req.View = casematch.CardView(rankView)
	}
	if req.View == "" {
		req.View = casematch.ViewSummary
	}
	if !req.View.Valid() {
		return fmt.Errorf("unknown view %q", req.View)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	opts := casematch.DefaultOptions()
	badgeCap := casematch.DefaultBadgeCap
	var embedder casematch.Embedder
	if cfg != nil {
		opts = cfg.Scoring.ToOptions()
		badgeCap = cfg.Presentation.BadgeCap
		if cfg.Embedding.Enabled {
			embedder = embedding.NewClient(cfg.Embedding)
		}
	}

	ranker, err := casematch.NewRanker(opts, embedder, log)
	if err != nil {
		return fmt.Errorf("invalid scoring configuration: %w", err)
	}

	result, err := ranker.Rank(cmd.Context(), &req.Query, req.Candidates, casematch.RankOptions{
		MinGrade: req.MinGrade,
		Offset:   req.Offset,
		Limit:    req.Limit,
	})
	if err != nil {
		return err
	}

	page := casematch.NewPresenter(badgeCap).Render(result, req.View)
	out := cmd.OutOrStdout()
	if outputFmt == "json" {
		return writeJSON(out, page)
	}
	return writeMatchTable(out, page)
}

func readRankRequest(stdin io.Reader, path string) (*rankRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}

	var req rankRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}
