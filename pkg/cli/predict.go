package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/model"
	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/predict"
)

var (
	fileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Path to the transaction statement CSV file",
		Required: true,
	}

	customerFlag = &cli.StringFlag{
		Name:    "customer",
		Aliases: []string{"c"},
		Usage:   "Score only this customer (phone number), must be present in the file",
	}

	allCustomersFlag = &cli.BoolFlag{
		Name:  "all",
		Usage: "Score every customer found in the file, not just the first",
	}

	artifactsFlag = &cli.StringFlag{
		Name:  "artifacts",
		Usage: "Path to a model artifacts YAML file (optional, default: built-in model)",
	}

	classifierURLFlag = &cli.StringFlag{
		Name:  "classifier-url",
		Usage: "Score through a remote classifier service instead of the local model",
	}

	predictCmd = &cli.Command{
		Name:    "predict",
		Aliases: []string{"p"},
		Usage:   "Score a transaction statement and persist the assessment",
		Action:  cmdPredict,
		Flags: []cli.Flag{
			fileFlag,
			customerFlag,
			allCustomersFlag,
			artifactsFlag,
			classifierURLFlag,
		},
	}
)

func cmdPredict(c *cli.Context) error {
	filePath := c.String(fileFlag.Name)
	cfg := getConfig(c)
	ctx := context.Background()

	classifier, err := getClassifier(ctx, c.String(classifierURLFlag.Name), c.String(artifactsFlag.Name))
	if err != nil {
		return err
	}

	svc, err := predict.New(nil, classifier, cfg.DB)
	if err != nil {
		return fmt.Errorf("creating scoring service: %w", err)
	}

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("opening statement file: %w", err)
	}
	defer f.Close()

	out, err := svc.PredictCSV(ctx, f, filePath, c.String(customerFlag.Name), c.Bool(allCustomersFlag.Name))
	if err != nil {
		return fmt.Errorf("scoring %s: %w", filePath, err)
	}

	if out.DroppedRows > 0 {
		slog.Warn("dropped unparsable rows", "rows", out.DroppedRows)
	}

	return encode(out)
}

// getClassifier picks the scoring backend: remote service when a URL is
// given, otherwise a local model from artifacts or the built-in one.
func getClassifier(ctx context.Context, classifierURL, artifactsPath string) (model.Classifier, error) {
	if classifierURL != "" {
		token, err := getAPIToken()
		if err != nil {
			slog.Debug("no API token, calling classifier unauthenticated", "error", err)
			token = ""
		}
		return model.NewRemoteClassifier(ctx, classifierURL, token)
	}

	if artifactsPath != "" {
		m, err := model.LoadArtifacts(artifactsPath)
		if err != nil {
			return nil, fmt.Errorf("loading model artifacts: %w", err)
		}
		slog.Debug("loaded model artifacts", "path", artifactsPath, "version", m.Version())
		return m, nil
	}

	return model.Default(), nil
}
