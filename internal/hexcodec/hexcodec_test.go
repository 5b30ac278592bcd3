package hexcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepair(t *testing.T) {
	t.Run("ascii passes through untouched", func(t *testing.T) {
		in := "JOIN TestPerson 30/1/2017"
		assert.Equal(t, in, Repair(in))
	})

	t.Run("single devanagari code point", func(t *testing.T) {
		assert.Equal(t, "इ", Repair("0907"))
	})

	t.Run("devanagari word", func(t *testing.T) {
		// U+092F U+093E U+0926 spells the Hindi remind keyword.
		assert.Equal(t, "याद", Repair("092f093e0926"))
	})

	t.Run("gujarati block marker", func(t *testing.T) {
		// U+0A95 U+0AAE
		assert.Equal(t, "કમ", Repair("0a950aae"))
	})

	t.Run("mixed tokens decode independently", func(t *testing.T) {
		assert.Equal(t, "याद Rahul 11/09/2013", Repair("092f093e0926 Rahul 11/09/2013"))
	})

	t.Run("hex without a block marker is left alone", func(t *testing.T) {
		assert.Equal(t, "1234", Repair("1234"))
		assert.Equal(t, "deadbeef", Repair("deadbeef"))
	})

	t.Run("wrong length is left alone", func(t *testing.T) {
		assert.Equal(t, "090", Repair("090"))
		assert.Equal(t, "09070", Repair("09070"))
	})

	t.Run("non hex characters disqualify the token", func(t *testing.T) {
		assert.Equal(t, "09zz", Repair("09zz"))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := Repair("092f093e0926 Rahul")
		assert.Equal(t, once, Repair(once))

		ascii := "JOIN PAULA 25:11:2012"
		assert.Equal(t, ascii, Repair(Repair(ascii)))
	})
}

func TestDecodeEcho(t *testing.T) {
	t.Run("decodes prefixed body", func(t *testing.T) {
		assert.Equal(t, "याद", DecodeEcho("@U092F093E0926"))
	})

	t.Run("no prefix passes through", func(t *testing.T) {
		in := "Your child has been subscribed"
		assert.Equal(t, in, DecodeEcho(in))
	})

	t.Run("ragged payload passes through", func(t *testing.T) {
		assert.Equal(t, "@U092", DecodeEcho("@U092"))
		assert.Equal(t, "@U", DecodeEcho("@U"))
	})
}
