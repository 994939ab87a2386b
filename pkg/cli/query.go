package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/SureOnThisShiningNight/openrank/pkg/data"
)

const (
	queryResultLimitDefault = 100
)

var (
	queryLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Limits number of results returned",
		Value: queryResultLimitDefault,
	}

	queryRunFlag = &cli.StringFlag{
		Name:     "run",
		Usage:    "Run identifier (see: openrank query runs)",
		Required: true,
	}

	queryCmd = &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Query persisted scoring runs",
		Subcommands: []*cli.Command{
			{
				Name:   "runs",
				Usage:  "List persisted scoring runs",
				Action: cmdQueryRuns,
			},
			{
				Name:   "top",
				Usage:  "Rank one run's repositories by total score",
				Action: cmdQueryTop,
				Flags: []cli.Flag{
					queryRunFlag,
					queryLimitFlag,
				},
			},
		},
	}
)

func cmdQueryRuns(c *cli.Context) error {
	cfg := getConfig(c)

	runs, err := data.ListRuns(cfg.DB)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	return encode(runs)
}

func cmdQueryTop(c *cli.Context) error {
	cfg := getConfig(c)
	runID := c.String(queryRunFlag.Name)

	if _, err := data.GetRun(cfg.DB, runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("run %q not found", runID)
		}
		return fmt.Errorf("getting run %s: %w", runID, err)
	}

	ranks, err := data.GetTopRepos(cfg.DB, runID, c.Int(queryLimitFlag.Name))
	if err != nil {
		return fmt.Errorf("ranking run %s: %w", runID, err)
	}
	return encode(ranks)
}
