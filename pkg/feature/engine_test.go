package feature

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(rows ...[]string) *Table {
	return &Table{
		Columns: []string{"Date", "Time", "Transaction Type", "Phone Number", "Amount"},
		Rows:    rows,
	}
}

func TestValidate_AllColumnsPresent(t *testing.T) {
	e := NewEngine(nil)
	assert.NoError(t, e.Validate(testTable()))
}

func TestValidate_ReportsEveryMissingColumn(t *testing.T) {
	e := NewEngine(nil)
	tbl := &Table{Columns: []string{"Date", "Transaction Type"}}

	err := e.Validate(tbl)
	require.Error(t, err)

	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Time", "Phone Number", "Amount"}, schemaErr.Missing)
	assert.Contains(t, err.Error(), "Amount")
	assert.Contains(t, err.Error(), "Phone Number")
}

func TestValidate_NilTable(t *testing.T) {
	e := NewEngine(nil)
	err := e.Validate(nil)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Len(t, schemaErr.Missing, 5)
}

func TestValidate_CustomColumns(t *testing.T) {
	cfg := &Config{
		DateColumn:     "dt",
		TimeColumn:     "tm",
		TypeColumn:     "kind",
		CustomerColumn: "msisdn",
		AmountColumn:   "value",
	}
	e := NewEngine(cfg)
	tbl := &Table{Columns: []string{"dt", "tm", "kind", "msisdn", "value"}}
	assert.NoError(t, e.Validate(tbl))
}

func TestClean_DropsBadAmountAndDate(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"2023-01-01", "12:00", "MoMo", "233001", "100.00"},
		[]string{"2023-01-02", "12:00", "MoMo", "233001", "not-a-number"},
		[]string{"never", "12:00", "MoMo", "233001", "50.00"},
		[]string{"2023-01-03", "12:00", "MoMo", "", "25.00"},
	)

	records, dropped := e.Clean(tbl)
	assert.Len(t, records, 1)
	assert.Equal(t, 3, dropped)
	assert.Equal(t, 100.0, records[0].Amount)
}

func TestClean_BadTimeKeepsRowWithFallbackHour(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"2023-01-01", "garbage", "MoMo", "233001", "100.00"},
		[]string{"2023-01-02", "", "MoMo", "233001", "-40.00"},
		[]string{"2023-01-03", "09:30", "MoMo", "233001", "10.00"},
	)

	records, dropped := e.Clean(tbl)
	require.Len(t, records, 3)
	assert.Zero(t, dropped)
	assert.Equal(t, 12.0, records[0].Hour)
	assert.Equal(t, 12.0, records[1].Hour)
	assert.Equal(t, 9.0, records[2].Hour)
}

func TestClean_AmountWithThousandsSeparator(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable([]string{"2023-01-01", "12:00", "MoMo", "233001", "1,500.25"})

	records, dropped := e.Clean(tbl)
	require.Len(t, records, 1)
	assert.Zero(t, dropped)
	assert.InDelta(t, 1500.25, records[0].Amount, 1e-9)
}

func TestTransform_EndToEnd(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"2023-01-01", "12:00", "MoMo Transaction", "233123456789", "-150.00"},
		[]string{"2023-01-15", "14:30", "MoMo Transaction", "233123456789", "500.00"},
	)

	res, err := e.Transform(tbl)
	require.NoError(t, err)
	require.Len(t, res.Customers, 1)

	f := res.Customers[0]
	assert.Equal(t, "233123456789", f.CustomerID)
	assert.Equal(t, 2, f.TxnCount)
	assert.InDelta(t, 350.0, f.NetAmount, 1e-9)
	assert.Equal(t, 1, f.TotalDeposits)
	assert.Equal(t, 1, f.TotalWithdrawals)
	assert.Equal(t, 14, f.DurationDays)
	assert.InDelta(t, 13.0, f.HourMean, 1e-9)
}

func TestTransform_MissingColumn(t *testing.T) {
	e := NewEngine(nil)
	tbl := &Table{
		Columns: []string{"Date", "Time", "Transaction Type", "Phone Number"},
		Rows:    [][]string{{"2023-01-01", "12:00", "MoMo", "233001"}},
	}

	_, err := e.Transform(tbl)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"Amount"}, schemaErr.Missing)
}

func TestTransform_EmptyAfterCleaning(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"bad-date", "12:00", "MoMo", "233001", "100.00"},
		[]string{"2023-01-01", "12:00", "MoMo", "233001", "bad-amount"},
	)

	_, err := e.Transform(tbl)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestTransform_NoRows(t *testing.T) {
	e := NewEngine(nil)
	_, err := e.Transform(testTable())
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestAggregate_SingleTransactionCustomer(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable([]string{"2023-03-10", "08:15", "MoMo", "233002", "250.00"})

	res, err := e.Transform(tbl)
	require.NoError(t, err)
	require.Len(t, res.Customers, 1)

	f := res.Customers[0]
	assert.Equal(t, 1, f.TxnCount)
	assert.Equal(t, 0.0, f.AmountStd)
	assert.Equal(t, 0.0, f.HourStd)
	assert.Equal(t, 0, f.DurationDays)
	assert.InDelta(t, 1.0, f.TxnFrequency, 1e-9)
}

func TestAggregate_ZeroWithdrawals(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"2023-01-01", "10:00", "MoMo", "233003", "100.00"},
		[]string{"2023-01-02", "11:00", "MoMo", "233003", "200.00"},
	)

	res, err := e.Transform(tbl)
	require.NoError(t, err)

	f := res.Customers[0]
	assert.Equal(t, 2, f.TotalDeposits)
	assert.Equal(t, 0, f.TotalWithdrawals)
	assert.InDelta(t, 2.0/1e-6, f.DWR, 1.0)
	assert.False(t, f.DWR < 0)
}

func TestAggregate_ZeroAmountIsNeitherDepositNorWithdrawal(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"2023-01-01", "10:00", "MoMo", "233004", "0.00"},
		[]string{"2023-01-02", "11:00", "MoMo", "233004", "-10.00"},
	)

	res, err := e.Transform(tbl)
	require.NoError(t, err)

	f := res.Customers[0]
	assert.Equal(t, 0, f.TotalDeposits)
	assert.Equal(t, 1, f.TotalWithdrawals)
}

func TestAggregate_SampleStdDev(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"2023-01-01", "10:00", "MoMo", "233005", "10.00"},
		[]string{"2023-01-02", "10:00", "MoMo", "233005", "20.00"},
		[]string{"2023-01-03", "10:00", "MoMo", "233005", "30.00"},
	)

	res, err := e.Transform(tbl)
	require.NoError(t, err)

	// sample (n-1) stddev of 10,20,30 is exactly 10
	assert.InDelta(t, 10.0, res.Customers[0].AmountStd, 1e-9)
	assert.Equal(t, 0.0, res.Customers[0].HourStd)
}

func TestAggregate_MultipleCustomersFirstSeenOrder(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"2023-01-01", "10:00", "MoMo", "B", "10.00"},
		[]string{"2023-01-01", "10:00", "MoMo", "A", "20.00"},
		[]string{"2023-01-02", "10:00", "MoMo", "B", "-5.00"},
	)

	res, err := e.Transform(tbl)
	require.NoError(t, err)
	require.Len(t, res.Customers, 2)
	assert.Equal(t, "B", res.Customers[0].CustomerID)
	assert.Equal(t, "A", res.Customers[1].CustomerID)
	assert.Equal(t, 2, res.Customers[0].TxnCount)
	assert.Equal(t, 1, res.Customers[1].TxnCount)
}

func TestAggregate_SupplementalFields(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"2023-01-01", "10:00", "MoMo", "233006", "-150.00"},
		[]string{"2023-01-15", "14:30", "MoMo", "233006", "500.00"},
	)

	res, err := e.Transform(tbl)
	require.NoError(t, err)

	f := res.Customers[0]
	assert.InDelta(t, -150.0, f.AmountMin, 1e-9)
	assert.InDelta(t, 500.0, f.AmountMax, 1e-9)
	assert.InDelta(t, 650.0, f.TotalAbsAmount, 1e-9)
	assert.InDelta(t, 325.0, f.AvgAbsAmount, 1e-9)
	assert.InDelta(t, 2.0/15.0, f.TxnFrequency, 1e-9)
}

func TestVector_ContainsExactlyModelFeatures(t *testing.T) {
	f := &CustomerFeatures{TxnCount: 3, NetAmount: 100, DWR: 1.5, DurationDays: 10}
	v := f.Vector()

	want := []string{
		"txn_count", "net_amount", "avg_amount", "amount_std",
		"dwr", "customer_duration_days", "hour_mean", "hour_std",
	}
	assert.Len(t, v, len(want))
	for _, k := range want {
		assert.Contains(t, v, k)
	}
	assert.Equal(t, 3.0, v["txn_count"])
	assert.Equal(t, 10.0, v["customer_duration_days"])
}

func TestJoin_BroadcastsAggregates(t *testing.T) {
	e := NewEngine(nil)
	tbl := testTable(
		[]string{"2023-01-01", "10:00", "MoMo", "X", "10.00"},
		[]string{"2023-01-02", "10:00", "MoMo", "Y", "20.00"},
		[]string{"2023-01-03", "10:00", "MoMo", "X", "30.00"},
	)

	res, err := e.Transform(tbl)
	require.NoError(t, err)

	rows := Join(res.Records, res.Customers)
	require.Len(t, rows, 3)
	assert.Equal(t, "X", rows[0].CustomerID)
	require.NotNil(t, rows[0].Features)
	assert.Equal(t, 2, rows[0].Features.TxnCount)
	assert.Same(t, rows[0].Features, rows[2].Features)
	assert.Equal(t, 1, rows[1].Features.TxnCount)
}

func TestParseCSV(t *testing.T) {
	in := "Date,Time,Transaction Type,Phone Number,Amount\n2023-01-01,12:00,MoMo,233001,100.00\n"
	tbl, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, tbl.Columns, 5)
	assert.Len(t, tbl.Rows, 1)
	assert.Equal(t, 0, tbl.ColumnIndex("Date"))
	assert.Equal(t, -1, tbl.ColumnIndex("Nope"))
}

func TestParseCSV_Empty(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader("Date,Time,Transaction Type,Phone Number,Amount\n"))
	require.NoError(t, err)
	assert.Empty(t, tbl.Rows)
}
