package data

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	db, err := GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInit_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestInit_EmptyPath(t *testing.T) {
	err := Init("")
	assert.Error(t, err)
}

func TestInit_Idempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	require.NoError(t, Init(dbPath))
	assert.NoError(t, Init(dbPath))
}

func TestInit_CreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	var count int64
	err := db.QueryRow("SELECT COUNT(*) FROM prediction").Scan(&count)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetDataState(t *testing.T) {
	db := setupTestDB(t)

	state, err := GetDataState(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state["prediction"])
	assert.Equal(t, int64(0), state["profile"])

	require.NoError(t, SavePrediction(db, &Prediction{CustomerID: "233001", CreditScore: 700, RiskCategory: "Good"}))

	state, err = GetDataState(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state["prediction"])
	assert.Equal(t, int64(1), state["customer"])
}

func TestGetDataState_NilDB(t *testing.T) {
	_, err := GetDataState(nil)
	assert.Error(t, err)
}
