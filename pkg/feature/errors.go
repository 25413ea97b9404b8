package feature

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput indicates that no valid transaction rows survived cleaning.
var ErrEmptyInput = errors.New("no valid transaction rows in input")

// SchemaError reports every required column missing from the input schema,
// not just the first one, so the caller can fix the upload in one pass.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}
