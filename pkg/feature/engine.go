package feature

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

var (
	dateLayouts = []string{
		"2006-01-02",
		"2006/01/02",
		"02/01/2006",
		"01/02/2006",
		time.RFC3339,
	}

	hourLayouts = []string{
		"15:04",
		"15:04:05",
		"3:04 PM",
		"3:04PM",
	}
)

// Transaction is a single cleaned statement row.
type Transaction struct {
	CustomerID string    `json:"customer_id"`
	Date       time.Time `json:"date"`
	Hour       float64   `json:"hour"`
	Type       string    `json:"transaction_type"`
	Amount     float64   `json:"amount"`
}

// CustomerFeatures is the per-customer aggregate computed from all of that
// customer's transactions. The first eight fields form the model input
// vector; the rest are informational extras carried for reporting.
type CustomerFeatures struct {
	CustomerID string `json:"customer_id" yaml:"customerId"`

	TxnCount         int     `json:"txn_count" yaml:"txnCount"`
	NetAmount        float64 `json:"net_amount" yaml:"netAmount"`
	AvgAmount        float64 `json:"avg_amount" yaml:"avgAmount"`
	AmountStd        float64 `json:"amount_std" yaml:"amountStd"`
	TotalDeposits    int     `json:"total_deposits" yaml:"totalDeposits"`
	TotalWithdrawals int     `json:"total_withdrawals" yaml:"totalWithdrawals"`
	DWR              float64 `json:"dwr" yaml:"dwr"`
	DurationDays     int     `json:"customer_duration_days" yaml:"customerDurationDays"`
	HourMean         float64 `json:"hour_mean" yaml:"hourMean"`
	HourStd          float64 `json:"hour_std" yaml:"hourStd"`

	AmountMin      float64 `json:"amount_min" yaml:"amountMin"`
	AmountMax      float64 `json:"amount_max" yaml:"amountMax"`
	AvgAbsAmount   float64 `json:"avg_abs_amount" yaml:"avgAbsAmount"`
	TotalAbsAmount float64 `json:"total_abs_amount" yaml:"totalAbsAmount"`
	TxnFrequency   float64 `json:"txn_frequency" yaml:"txnFrequency"`
}

// Vector returns the named feature values consumed by the classifier.
func (f *CustomerFeatures) Vector() map[string]float64 {
	return map[string]float64{
		"txn_count":              float64(f.TxnCount),
		"net_amount":             f.NetAmount,
		"avg_amount":             f.AvgAmount,
		"amount_std":             f.AmountStd,
		"dwr":                    f.DWR,
		"customer_duration_days": float64(f.DurationDays),
		"hour_mean":              f.HourMean,
		"hour_std":               f.HourStd,
	}
}

// Result is the output of a full Transform pass.
type Result struct {
	// Customers holds one aggregate per distinct customer id,
	// in first-seen input order.
	Customers []*CustomerFeatures `json:"customers" yaml:"customers"`
	// Records are the cleaned rows that survived coercion, in input order.
	Records []Transaction `json:"-" yaml:"-"`
	// DroppedRows counts rows discarded for unparseable amount, date,
	// or missing customer id.
	DroppedRows int `json:"dropped_rows" yaml:"droppedRows"`
}

// Engine turns raw transaction tables into per-customer feature vectors.
// It is stateless apart from its column configuration and safe for
// concurrent use.
type Engine struct {
	cfg *Config
}

func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Engine{cfg: cfg}
}

// Transform runs the full pipeline: schema validation, row cleaning, and
// per-customer aggregation. Returns *SchemaError when required columns are
// absent and ErrEmptyInput when no rows survive cleaning.
func (e *Engine) Transform(t *Table) (*Result, error) {
	if err := e.Validate(t); err != nil {
		return nil, err
	}

	records, dropped := e.Clean(t)
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	return &Result{
		Customers:   e.Aggregate(records),
		Records:     records,
		DroppedRows: dropped,
	}, nil
}

// Validate checks the input schema, collecting every missing required
// column into a single SchemaError.
func (e *Engine) Validate(t *Table) error {
	var missing []string
	for _, col := range e.cfg.RequiredColumns() {
		if t == nil || t.ColumnIndex(col) < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// Clean coerces raw cells into typed transactions. Rows with an amount or
// date that cannot be parsed, or with an empty customer id, are dropped and
// counted. A bad time value is not fatal: the row keeps the fallback hour.
func (e *Engine) Clean(t *Table) (records []Transaction, dropped int) {
	dateIdx := t.ColumnIndex(e.cfg.DateColumn)
	timeIdx := t.ColumnIndex(e.cfg.TimeColumn)
	typeIdx := t.ColumnIndex(e.cfg.TypeColumn)
	custIdx := t.ColumnIndex(e.cfg.CustomerColumn)
	amountIdx := t.ColumnIndex(e.cfg.AmountColumn)

	records = make([]Transaction, 0, len(t.Rows))
	for _, row := range t.Rows {
		customer := strings.TrimSpace(cell(row, custIdx))
		if customer == "" {
			dropped++
			continue
		}

		amount, ok := parseAmount(cell(row, amountIdx))
		if !ok {
			dropped++
			continue
		}

		date, ok := parseDate(cell(row, dateIdx))
		if !ok {
			dropped++
			continue
		}

		records = append(records, Transaction{
			CustomerID: customer,
			Date:       date,
			Hour:       parseHour(cell(row, timeIdx)),
			Type:       strings.TrimSpace(cell(row, typeIdx)),
			Amount:     amount,
		})
	}
	return records, dropped
}

// Aggregate groups cleaned transactions by customer id and computes the
// feature table. Output order follows first appearance in the input so the
// same rows always yield the same result.
func (e *Engine) Aggregate(records []Transaction) []*CustomerFeatures {
	groups := make(map[string][]Transaction)
	order := make([]string, 0)
	for _, r := range records {
		if _, ok := groups[r.CustomerID]; !ok {
			order = append(order, r.CustomerID)
		}
		groups[r.CustomerID] = append(groups[r.CustomerID], r)
	}

	out := make([]*CustomerFeatures, 0, len(order))
	for _, id := range order {
		out = append(out, aggregateCustomer(id, groups[id]))
	}
	return out
}

// Join broadcasts each customer's aggregate back onto every one of their
// cleaned rows, preserving input row order.
func Join(records []Transaction, customers []*CustomerFeatures) []JoinedRow {
	byID := make(map[string]*CustomerFeatures, len(customers))
	for _, c := range customers {
		byID[c.CustomerID] = c
	}

	rows := make([]JoinedRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, JoinedRow{
			Transaction: r,
			Features:    byID[r.CustomerID],
		})
	}
	return rows
}

// JoinedRow pairs an original cleaned row with its customer aggregate.
type JoinedRow struct {
	Transaction
	Features *CustomerFeatures `json:"features"`
}

func aggregateCustomer(id string, txns []Transaction) *CustomerFeatures {
	n := len(txns)
	amounts := make([]float64, n)
	hours := make([]float64, n)

	f := &CustomerFeatures{
		CustomerID: id,
		TxnCount:   n,
		AmountMin:  math.Inf(1),
		AmountMax:  math.Inf(-1),
	}

	first, last := txns[0].Date, txns[0].Date
	for i, t := range txns {
		amounts[i] = t.Amount
		hours[i] = t.Hour

		f.NetAmount += t.Amount
		f.TotalAbsAmount += math.Abs(t.Amount)

		switch {
		case t.Amount > 0:
			f.TotalDeposits++
		case t.Amount < 0:
			f.TotalWithdrawals++
		}

		if t.Amount < f.AmountMin {
			f.AmountMin = t.Amount
		}
		if t.Amount > f.AmountMax {
			f.AmountMax = t.Amount
		}
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}

	f.AvgAmount = stat.Mean(amounts, nil)
	f.AmountStd = sampleStdDev(amounts)
	f.AvgAbsAmount = f.TotalAbsAmount / float64(n)
	f.DWR = float64(f.TotalDeposits) / (float64(f.TotalWithdrawals) + dwrEpsilon)
	f.DurationDays = int(last.Sub(first) / (24 * time.Hour))
	f.HourMean = stat.Mean(hours, nil)
	f.HourStd = sampleStdDev(hours)
	f.TxnFrequency = float64(n) / float64(f.DurationDays+1)

	return f
}

// sampleStdDev is the n-1 denominator standard deviation, resolved to 0
// for single samples instead of NaN.
func sampleStdDev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	sd := stat.StdDev(vals, nil)
	if math.IsNaN(sd) {
		return 0
	}
	return sd
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// parseAmount coerces a raw cell into a signed amount. Thousands separators
// are tolerated; anything else non-numeric fails the row.
func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	v, _ := d.Float64()
	return v, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Truncate(24 * time.Hour), true
		}
	}
	return time.Time{}, false
}

func parseHour(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return hourFallback
	}
	for _, layout := range hourLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.Hour())
		}
	}
	return hourFallback
}
