package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigType_String(t *testing.T) {
	cases := map[SigType]string{
		SigAny:         "any",
		SigAnd:         "and",
		SigSequence:    "sequence",
		SigSequenceImm: "sequence_imm",
		SigWithin:      "within",
		SigDel:         "del",
	}
	for sig, want := range cases {
		assert.Equal(t, want, sig.String())
	}
}

func TestJoinOp_String(t *testing.T) {
	cases := map[JoinOp]string{
		JoinSequence:       "sequence",
		JoinSequenceImm:    "sequence_imm",
		JoinSequenceStruct: "sequence_struct",
		JoinWithin:         "within",
		JoinWithinStruct:   "within_struct",
		JoinAny:            "any",
		JoinAnd:            "and",
	}
	for op, want := range cases {
		assert.Equal(t, want, op.String())
	}
}

func TestProgram_SealIsIdempotent(t *testing.T) {
	p := &Program{ID: 1}
	assert.False(t, p.Sealed())

	p.Seal()
	assert.True(t, p.Sealed())

	p.Seal()
	assert.True(t, p.Sealed())
}

func TestProgram_KeyTriggers(t *testing.T) {
	p := &Program{
		Triggers: []Trigger{
			{Event: EventHandle{Kind: KindTerm, ID: 1}, IsKey: false},
			{Event: EventHandle{Kind: KindTerm, ID: 2}, IsKey: true},
			{Event: EventHandle{Kind: KindTerm, ID: 3}, IsKey: true},
		},
	}

	keys := p.KeyTriggers()
	assert.Len(t, keys, 2)
	assert.Equal(t, uint32(2), keys[0].Event.ID)
	assert.Equal(t, uint32(3), keys[1].Event.ID)
}

func TestProgram_KeyTriggersEmpty(t *testing.T) {
	p := &Program{}
	assert.Empty(t, p.KeyTriggers())
}
