package feature

const (
	// Default column names as they appear in mobile-money statement exports.
	DateColumnDefault     = "Date"
	TimeColumnDefault     = "Time"
	TypeColumnDefault     = "Transaction Type"
	CustomerColumnDefault = "Phone Number"
	AmountColumnDefault   = "Amount"

	// Hour used when the time column is absent, empty, or unparseable.
	hourFallback = 12.0

	// Epsilon added to the withdrawal count to keep dwr finite.
	dwrEpsilon = 1e-6
)

// Config maps the logical transaction fields to column names in the input.
type Config struct {
	DateColumn     string `json:"date_column" yaml:"dateColumn"`
	TimeColumn     string `json:"time_column" yaml:"timeColumn"`
	TypeColumn     string `json:"type_column" yaml:"typeColumn"`
	CustomerColumn string `json:"customer_column" yaml:"customerColumn"`
	AmountColumn   string `json:"amount_column" yaml:"amountColumn"`
}

// DefaultConfig returns the column mapping for standard statement exports.
func DefaultConfig() *Config {
	return &Config{
		DateColumn:     DateColumnDefault,
		TimeColumn:     TimeColumnDefault,
		TypeColumn:     TypeColumnDefault,
		CustomerColumn: CustomerColumnDefault,
		AmountColumn:   AmountColumnDefault,
	}
}

// RequiredColumns lists every column that must be present in the input
// schema, in the order they are reported when missing.
func (c *Config) RequiredColumns() []string {
	return []string{
		c.DateColumn,
		c.TimeColumn,
		c.TypeColumn,
		c.CustomerColumn,
		c.AmountColumn,
	}
}
