package data

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	insertPredictionSQL = `INSERT INTO prediction (
			id,
			customer_id,
			credit_score,
			risk_probability,
			risk_category,
			interpretation,
			features,
			transaction_count,
			dropped_rows,
			file_name,
			created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectPredictionSQL = `SELECT
			id,
			customer_id,
			credit_score,
			risk_probability,
			risk_category,
			interpretation,
			features,
			transaction_count,
			dropped_rows,
			file_name,
			created_at
		FROM prediction
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`

	selectScoreHistorySQL = `SELECT
			credit_score,
			risk_category,
			risk_probability,
			created_at
		FROM prediction
		ORDER BY created_at DESC, id
		LIMIT ?
	`
)

// Prediction is a persisted credit assessment for one customer upload.
type Prediction struct {
	ID               string             `json:"id" yaml:"id"`
	CustomerID       string             `json:"customer_id" yaml:"customerId"`
	CreditScore      int                `json:"credit_score" yaml:"creditScore"`
	RiskProbability  float64            `json:"risk_probability" yaml:"riskProbability"`
	RiskCategory     string             `json:"risk_category" yaml:"riskCategory"`
	Interpretation   string             `json:"interpretation,omitempty" yaml:"interpretation,omitempty"`
	Features         map[string]float64 `json:"feature_values,omitempty" yaml:"featureValues,omitempty"`
	TransactionCount int                `json:"transaction_count" yaml:"transactionCount"`
	DroppedRows      int                `json:"dropped_rows" yaml:"droppedRows"`
	FileName         string             `json:"file_name,omitempty" yaml:"fileName,omitempty"`
	CreatedAt        string             `json:"created_at" yaml:"createdAt"`
}

// ScoreHistoryItem is a compact history entry for charting score over time.
type ScoreHistoryItem struct {
	Score           int     `json:"score" yaml:"score"`
	Date            string  `json:"date" yaml:"date"`
	Category        string  `json:"category" yaml:"category"`
	RiskProbability float64 `json:"risk_probability" yaml:"riskProbability"`
}

// SavePrediction inserts a prediction, assigning id and created_at when
// absent. The feature vector is stored as JSON.
func SavePrediction(db *sql.DB, p *Prediction) error {
	if db == nil {
		return errDBNotInitialized
	}
	if p == nil {
		return errors.New("prediction required")
	}
	if p.CustomerID == "" {
		return errors.New("prediction customer_id required")
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt == "" {
		p.CreatedAt = time.Now().UTC().Format(timeFormat)
	}

	var features []byte
	if p.Features != nil {
		var err error
		features, err = json.Marshal(p.Features)
		if err != nil {
			return errors.Wrap(err, "failed to marshal prediction features")
		}
	}

	stmt, err := db.Prepare(insertPredictionSQL)
	if err != nil {
		return errors.Wrap(err, "failed to prepare prediction insert statement")
	}
	defer stmt.Close()

	if _, err = stmt.Exec(
		p.ID,
		p.CustomerID,
		p.CreditScore,
		p.RiskProbability,
		p.RiskCategory,
		p.Interpretation,
		string(features),
		p.TransactionCount,
		p.DroppedRows,
		p.FileName,
		p.CreatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to insert prediction")
	}

	return nil
}

// GetPredictions returns persisted predictions, newest first.
func GetPredictions(db *sql.DB, limit, offset int) ([]*Prediction, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit < 1 {
		return nil, errors.Errorf("invalid limit: %d", limit)
	}
	if offset < 0 {
		return nil, errors.Errorf("invalid offset: %d", offset)
	}

	stmt, err := db.Prepare(selectPredictionSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare prediction select statement")
	}
	defer stmt.Close()

	rows, err := stmt.Query(limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute prediction select statement")
	}
	defer rows.Close()

	list := make([]*Prediction, 0)
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate prediction rows")
	}

	return list, nil
}

// GetLatestPrediction returns the most recent prediction, or nil when the
// history is empty.
func GetLatestPrediction(db *sql.DB) (*Prediction, error) {
	list, err := GetPredictions(db, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// GetScoreHistory returns the recent score trajectory, newest first.
func GetScoreHistory(db *sql.DB, limit int) ([]*ScoreHistoryItem, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit < 1 {
		return nil, errors.Errorf("invalid limit: %d", limit)
	}

	stmt, err := db.Prepare(selectScoreHistorySQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare score history statement")
	}
	defer stmt.Close()

	rows, err := stmt.Query(limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute score history statement")
	}
	defer rows.Close()

	list := make([]*ScoreHistoryItem, 0)
	for rows.Next() {
		item := &ScoreHistoryItem{}
		if err := rows.Scan(&item.Score, &item.Category, &item.RiskProbability, &item.Date); err != nil {
			return nil, errors.Wrap(err, "failed to scan score history row")
		}
		list = append(list, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate score history rows")
	}

	return list, nil
}

func scanPrediction(rows *sql.Rows) (*Prediction, error) {
	p := &Prediction{}
	var interpretation, features, fileName sql.NullString

	if err := rows.Scan(
		&p.ID,
		&p.CustomerID,
		&p.CreditScore,
		&p.RiskProbability,
		&p.RiskCategory,
		&interpretation,
		&features,
		&p.TransactionCount,
		&p.DroppedRows,
		&fileName,
		&p.CreatedAt,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan prediction row")
	}

	p.Interpretation = interpretation.String
	p.FileName = fileName.String

	if features.Valid && features.String != "" {
		if err := json.Unmarshal([]byte(features.String), &p.Features); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal prediction features")
		}
	}

	return p, nil
}
