// Package predict runs the full assessment pipeline: CSV table in,
// persisted credit assessments out. It owns no shared mutable state; the
// classifier artifact is handed in at construction and treated as
// immutable.
package predict

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/data"
	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/feature"
	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/model"
	"github.com/Bempong-Sylvester-Obese/AI-credit-score-program/pkg/score"
)

// concurrency cap for per-customer classifier calls in batch mode.
const maxConcurrentScores = 8

// Service scores uploaded transaction batches.
type Service struct {
	engine     *feature.Engine
	classifier model.Classifier
	db         *sql.DB
}

// New assembles a scoring service. A nil engine gets default column
// mapping. The db is optional: when nil, results are returned but not
// persisted.
func New(engine *feature.Engine, classifier model.Classifier, db *sql.DB) (*Service, error) {
	if classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if engine == nil {
		engine = feature.NewEngine(nil)
	}
	return &Service{
		engine:     engine,
		classifier: classifier,
		db:         db,
	}, nil
}

// Outcome is the result of scoring one uploaded batch.
type Outcome struct {
	Predictions []*data.Prediction `json:"predictions" yaml:"predictions"`
	DroppedRows int                `json:"dropped_rows" yaml:"droppedRows"`
}

// First returns the lead prediction, matching the single-customer upload
// flow where only the first customer in the file matters.
func (o *Outcome) First() *data.Prediction {
	if len(o.Predictions) == 0 {
		return nil
	}
	return o.Predictions[0]
}

// PredictCSV parses and scores a transaction CSV stream.
//
// With customerID set, only that customer's aggregate is scored; it must be
// present in the file. With all=false and no customerID, only the first
// customer is scored. With all=true every customer is scored, concurrently.
// Feature errors (*feature.SchemaError, feature.ErrEmptyInput) pass through
// untyped-wrapped so callers can map them to user-facing responses.
func (s *Service) PredictCSV(ctx context.Context, r io.Reader, fileName, customerID string, all bool) (*Outcome, error) {
	table, err := feature.ParseCSV(r)
	if err != nil {
		return nil, err
	}
	return s.PredictTable(ctx, table, fileName, customerID, all)
}

// PredictTable scores an already-parsed table. See PredictCSV.
func (s *Service) PredictTable(ctx context.Context, t *feature.Table, fileName, customerID string, all bool) (*Outcome, error) {
	res, err := s.engine.Transform(t)
	if err != nil {
		return nil, err
	}

	targets := res.Customers
	switch {
	case customerID != "":
		targets = nil
		for _, c := range res.Customers {
			if c.CustomerID == customerID {
				targets = []*feature.CustomerFeatures{c}
				break
			}
		}
		if targets == nil {
			return nil, fmt.Errorf("customer %s not found in input", customerID)
		}
	case !all:
		targets = res.Customers[:1]
	}

	slog.Debug("scoring customers",
		"customers", len(targets), "rows", len(res.Records), "dropped", res.DroppedRows)

	predictions := make([]*data.Prediction, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScores)

	for i, c := range targets {
		i, c := i, c
		g.Go(func() error {
			p, err := s.assess(gctx, c, fileName, res.DroppedRows)
			if err != nil {
				return err
			}
			predictions[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.db != nil {
		for _, p := range predictions {
			if err := data.SavePrediction(s.db, p); err != nil {
				return nil, fmt.Errorf("saving prediction for %s: %w", p.CustomerID, err)
			}
		}
	}

	return &Outcome{
		Predictions: predictions,
		DroppedRows: res.DroppedRows,
	}, nil
}

func (s *Service) assess(ctx context.Context, c *feature.CustomerFeatures, fileName string, dropped int) (*data.Prediction, error) {
	vector := c.Vector()

	p, err := s.classifier.Predict(ctx, vector)
	if err != nil {
		return nil, fmt.Errorf("classifier failed for %s: %w", c.CustomerID, err)
	}

	assessment, err := score.Assess(p)
	if err != nil {
		// Out-of-domain probability: classifier fault, not user input.
		return nil, fmt.Errorf("classifier fault for %s: %w", c.CustomerID, err)
	}

	return &data.Prediction{
		CustomerID:       c.CustomerID,
		CreditScore:      assessment.CreditScore,
		RiskProbability:  assessment.RiskProbability,
		RiskCategory:     string(assessment.RiskCategory),
		Interpretation:   assessment.Interpretation,
		Features:         vector,
		TransactionCount: c.TxnCount,
		DroppedRows:      dropped,
		FileName:         fileName,
	}, nil
}
