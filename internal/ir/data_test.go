package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrigCoord_Less(t *testing.T) {
	assert.True(t, OrigCoord{Seg: 1, Pos: 0}.Less(OrigCoord{Seg: 2, Pos: 0}))
	assert.True(t, OrigCoord{Seg: 1, Pos: 5}.Less(OrigCoord{Seg: 1, Pos: 6}))
	assert.False(t, OrigCoord{Seg: 1, Pos: 6}.Less(OrigCoord{Seg: 1, Pos: 5}))
	assert.False(t, OrigCoord{Seg: 1, Pos: 5}.Less(OrigCoord{Seg: 1, Pos: 5}))
}
