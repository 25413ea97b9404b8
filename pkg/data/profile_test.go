package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile_Empty(t *testing.T) {
	db := setupTestDB(t)

	p, err := GetProfile(db)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestSaveAndGetProfile(t *testing.T) {
	db := setupTestDB(t)

	in := &Profile{
		FirstName:        "Ama",
		LastName:         "Mensah",
		Mobile:           "233123456789",
		EmploymentStatus: "employed",
		Email:            "ama@example.com",
	}
	require.NoError(t, SaveProfile(db, in))
	assert.NotEmpty(t, in.UpdatedAt)

	got, err := GetProfile(db)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ama", got.FirstName)
	assert.Equal(t, "Mensah", got.LastName)
	assert.Equal(t, "233123456789", got.Mobile)
	assert.Equal(t, "ama@example.com", got.Email)
}

func TestSaveProfile_Upsert(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, SaveProfile(db, &Profile{FirstName: "Ama"}))
	require.NoError(t, SaveProfile(db, &Profile{FirstName: "Kofi", Email: "kofi@example.com"}))

	got, err := GetProfile(db)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Kofi", got.FirstName)
	assert.Equal(t, "kofi@example.com", got.Email)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM profile").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSaveProfile_NilDB(t *testing.T) {
	assert.Error(t, SaveProfile(nil, &Profile{}))
}

func TestSaveProfile_NilProfile(t *testing.T) {
	db := setupTestDB(t)
	assert.Error(t, SaveProfile(db, nil))
}

func TestGetProfile_NilDB(t *testing.T) {
	_, err := GetProfile(nil)
	assert.Error(t, err)
}
