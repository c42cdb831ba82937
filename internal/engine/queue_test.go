package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/patternmatch/strusmatch/internal/ir"
)

func TestWorkQueue_PushPop(t *testing.T) {
	q := newWorkQueue()
	ev := ir.EventHandle{Kind: ir.KindTerm, ID: 1}
	q.push(ev, ir.EventData{StartOrdpos: 1})

	got, ok := q.pop()
	assert.True(t, ok)
	assert.Equal(t, ev, got.event)
	assert.Equal(t, int64(1), got.data.StartOrdpos)
}

func TestWorkQueue_FIFOOrder(t *testing.T) {
	q := newWorkQueue()
	for i := int64(1); i <= 3; i++ {
		q.push(ir.EventHandle{Kind: ir.KindTerm, ID: uint32(i)}, ir.EventData{StartOrdpos: i})
	}

	for i := int64(1); i <= 3; i++ {
		got, ok := q.pop()
		assert.True(t, ok)
		assert.Equal(t, uint32(i), got.event.ID)
	}
	_, ok := q.pop()
	assert.False(t, ok)
}

func TestWorkQueue_LenTracksUnpopped(t *testing.T) {
	q := newWorkQueue()
	assert.Equal(t, 0, q.len())
	q.push(ir.EventHandle{Kind: ir.KindTerm, ID: 1}, ir.EventData{})
	q.push(ir.EventHandle{Kind: ir.KindTerm, ID: 2}, ir.EventData{})
	assert.Equal(t, 2, q.len())
	q.pop()
	assert.Equal(t, 1, q.len())
}

func TestWorkQueue_PopEmptyReturnsFalse(t *testing.T) {
	q := newWorkQueue()
	_, ok := q.pop()
	assert.False(t, ok)
}

func TestWorkQueue_CompactsAfterManyPops(t *testing.T) {
	q := newWorkQueue()
	for i := 0; i < 200; i++ {
		q.push(ir.EventHandle{Kind: ir.KindTerm, ID: uint32(i + 1)}, ir.EventData{})
	}
	for i := 0; i < 150; i++ {
		_, ok := q.pop()
		assert.True(t, ok)
	}
	assert.Equal(t, 50, q.len())

	for i := 150; i < 200; i++ {
		got, ok := q.pop()
		assert.True(t, ok)
		assert.Equal(t, uint32(i+1), got.event.ID)
	}
}
