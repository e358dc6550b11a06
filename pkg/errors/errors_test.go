package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicates_Wrapped(t *testing.T) {
	v := fmt.Errorf("prepare: %w", NewValidation("puesto_id", "不存在"))
	nf := fmt.Errorf("load: %w", &NotFoundError{Entity: "puesto", Key: "p1"})
	c := fmt.Errorf("sync: %w", &ConflictError{PostID: "p1", Date: "2025-01-03"})

	assert.True(t, IsValidation(v))
	assert.False(t, IsValidation(nf))
	assert.True(t, IsNotFound(nf))
	assert.False(t, IsNotFound(c))
	assert.True(t, IsConflict(c))
	assert.False(t, IsConflict(errors.New("x")))
}

func TestPartialFailureError_Message(t *testing.T) {
	err := &PartialFailureError{
		PostID:    "p1",
		Succeeded: 3,
		Failed: []DayFailure{
			{Date: "2025-01-03", Error: "timeout"},
			{Date: "2025-01-09", Error: "timeout"},
		},
	}
	msg := err.Error()
	assert.Contains(t, msg, "p1")
	assert.Contains(t, msg, "2025-01-03,2025-01-09")
	assert.Contains(t, msg, "2 天")
}

func TestErrPostLocked_Wrap(t *testing.T) {
	err := fmt.Errorf("%w: %v", ErrPostLocked, "context deadline exceeded")
	assert.True(t, errors.Is(err, ErrPostLocked))
}
