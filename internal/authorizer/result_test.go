package authorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// A zero Result is what every error path returns; it must never read as an
// approval.
func TestZeroResultIsNotApproved(t *testing.T) {
	var res Result
	assert.NotEqual(t, OutcomeApproved, res.Outcome)
	assert.Equal(t, CodeDeclined, res.Outcome.Code())
}

func TestOutcomeCodes(t *testing.T) {
	assert.Equal(t, CodeApproved, OutcomeApproved.Code())
	assert.Equal(t, CodeInsufficientFunds, OutcomeInsufficientFunds.Code())
	assert.Equal(t, CodeDeclined, OutcomeDeclined.Code())
	// Out-of-range values degrade to the generic decline.
	assert.Equal(t, CodeDeclined, Outcome(42).Code())
}
