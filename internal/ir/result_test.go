package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResult_Range(t *testing.T) {
	r := Result{StartOrdpos: 5, EndOrdpos: 9}
	assert.Equal(t, int64(4), r.Range())
}

func TestResult_RangeZeroWidth(t *testing.T) {
	r := Result{StartOrdpos: 3, EndOrdpos: 3}
	assert.Equal(t, int64(0), r.Range())
}
