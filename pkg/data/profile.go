package data

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

const (
	upsertProfileSQL = `INSERT INTO profile (
			id,
			first_name,
			last_name,
			postal_address,
			mobile,
			employment_status,
			email,
			updated_at
		)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			first_name = ?,
			last_name = ?,
			postal_address = ?,
			mobile = ?,
			employment_status = ?,
			email = ?,
			updated_at = ?
	`

	selectProfileSQL = `SELECT
			first_name,
			last_name,
			postal_address,
			mobile,
			employment_status,
			email,
			updated_at
		FROM profile
		WHERE id = 1
	`
)

// Profile holds the applicant details attached to this installation.
// A single row; the scoring pipeline does not read it.
type Profile struct {
	FirstName        string `json:"first_name,omitempty" yaml:"firstName,omitempty"`
	LastName         string `json:"last_name,omitempty" yaml:"lastName,omitempty"`
	PostalAddress    string `json:"postal_address,omitempty" yaml:"postalAddress,omitempty"`
	Mobile           string `json:"mobile,omitempty" yaml:"mobile,omitempty"`
	EmploymentStatus string `json:"employment_status,omitempty" yaml:"employmentStatus,omitempty"`
	Email            string `json:"email,omitempty" yaml:"email,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty" yaml:"updatedAt,omitempty"`
}

// SaveProfile creates or replaces the profile row.
func SaveProfile(db *sql.DB, p *Profile) error {
	if db == nil {
		return errDBNotInitialized
	}
	if p == nil {
		return errors.New("profile required")
	}

	p.UpdatedAt = time.Now().UTC().Format(timeFormat)

	stmt, err := db.Prepare(upsertProfileSQL)
	if err != nil {
		return errors.Wrap(err, "failed to prepare profile upsert statement")
	}
	defer stmt.Close()

	if _, err = stmt.Exec(
		p.FirstName, p.LastName, p.PostalAddress, p.Mobile, p.EmploymentStatus, p.Email, p.UpdatedAt,
		p.FirstName, p.LastName, p.PostalAddress, p.Mobile, p.EmploymentStatus, p.Email, p.UpdatedAt,
	); err != nil {
		return errors.Wrap(err, "failed to upsert profile")
	}

	return nil
}

// GetProfile returns the stored profile, or nil when none was saved yet.
func GetProfile(db *sql.DB) (*Profile, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	p := &Profile{}
	var firstName, lastName, postal, mobile, employment, email sql.NullString

	err := db.QueryRow(selectProfileSQL).Scan(
		&firstName, &lastName, &postal, &mobile, &employment, &email, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to select profile")
	}

	p.FirstName = firstName.String
	p.LastName = lastName.String
	p.PostalAddress = postal.String
	p.Mobile = mobile.String
	p.EmploymentStatus = employment.String
	p.Email = email.String

	return p, nil
}
