package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/data"
)

const queryResultLimitDefault = 100

var (
	queryLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Limits number of results returned",
		Value: queryResultLimitDefault,
	}

	queryOffsetFlag = &cli.IntFlag{
		Name:  "offset",
		Usage: "Number of results to skip",
	}

	historyCmd = &cli.Command{
		Name:    "history",
		Aliases: []string{"h"},
		Usage:   "Query persisted credit assessments",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "List past assessments, newest first",
				Aliases: []string{"l"},
				Action:  cmdHistoryList,
				Flags: []cli.Flag{
					queryLimitFlag,
					queryOffsetFlag,
				},
			},
			{
				Name:    "scores",
				Usage:   "List the credit score trend, newest first",
				Aliases: []string{"s"},
				Action:  cmdHistoryScores,
				Flags: []cli.Flag{
					queryLimitFlag,
				},
			},
			{
				Name:   "latest",
				Usage:  "Show the most recent assessment",
				Action: cmdHistoryLatest,
			},
			{
				Name:   "status",
				Usage:  "Show database row counts",
				Action: cmdHistoryStatus,
			},
		},
	}
)

func boundedLimit(c *cli.Context) int {
	limit := c.Int(queryLimitFlag.Name)
	if limit <= 0 || limit > queryResultLimitDefault {
		limit = queryResultLimitDefault
	}
	return limit
}

func cmdHistoryList(c *cli.Context) error {
	cfg := getConfig(c)

	offset := c.Int(queryOffsetFlag.Name)
	if offset < 0 {
		offset = 0
	}

	list, err := data.GetPredictions(cfg.DB, boundedLimit(c), offset)
	if err != nil {
		return fmt.Errorf("failed to query predictions: %w", err)
	}

	return encode(list)
}

func cmdHistoryScores(c *cli.Context) error {
	cfg := getConfig(c)

	list, err := data.GetScoreHistory(cfg.DB, boundedLimit(c))
	if err != nil {
		return fmt.Errorf("failed to query score history: %w", err)
	}

	return encode(list)
}

func cmdHistoryLatest(c *cli.Context) error {
	cfg := getConfig(c)

	p, err := data.GetLatestPrediction(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query latest prediction: %w", err)
	}
	if p == nil {
		fmt.Println("{}")
		return nil
	}

	return encode(p)
}

func cmdHistoryStatus(c *cli.Context) error {
	cfg := getConfig(c)

	state, err := data.GetDataState(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to query data state: %w", err)
	}

	return encode(state)
}
