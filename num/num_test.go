package num_test

import (
	"testing"

	"github.com/ruleflow-dev/ruleflow/assert"
	"github.com/ruleflow-dev/ruleflow/num"
)

func TestParse(t *testing.T) {
	n, err := num.Parse("42")
	assert.NilError(t, err)
	assert.Equal(t, n, 42)

	n, err = num.Parse("inf")
	assert.NilError(t, err)
	assert.Equal(t, n, num.Inf)

	n, err = num.Parse("-inf")
	assert.NilError(t, err)
	assert.Equal(t, n, num.NegInf)

	_, err = num.Parse("forty")
	assert.ErrorContains(t, err, "invalid number literal")
}

func TestFormatRoundTrips(t *testing.T) {
	for _, s := range []string{"0", "-7", "inf", "-inf"} {
		n, err := num.Parse(s)
		assert.NilError(t, err)
		assert.Equal(t, num.Format(n), s)
	}
}
