package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferPositions(t *testing.T) {
	b := NewBuffer("ab\ncdé\n\nf")

	assert.Equal(t, 4, b.LineCount())
	assert.Equal(t, 9, b.Len())

	p, err := b.PositionAt(5)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Line())
	assert.Equal(t, 2, p.Column())

	p, err = b.PositionAt(7)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Line())
	assert.Equal(t, 0, p.Column())

	off, err := b.OffsetAt(3, 1)
	require.NoError(t, err)
	assert.Equal(t, 9, off)

	_, err = b.OffsetAt(0, 3)
	assert.ErrorIs(t, err, ErrOutOfRange)

	line, err := b.Line(1)
	require.NoError(t, err)
	assert.Equal(t, "cdé", line)
}

func TestBufferReplace(t *testing.T) {
	b := NewBuffer("hello\nworld")

	c, err := b.Replace(NewPosition(0, 5), NewPosition(1, 0), " big ")
	require.NoError(t, err)
	assert.Equal(t, "hello big world", b.String())
	assert.Equal(t, Replacement, c.Kind())
	assert.Equal(t, 1, c.RemovedLength)
	assert.Equal(t, Shift{Lines: -1, Columns: 10, Offset: 4}, c.Shift())

	start, err := c.Start.Offset()
	require.NoError(t, err)
	assert.Equal(t, 5, start)

	text, err := b.Text(context.Background(), NewRange(NewPosition(0, 6), NewPosition(0, 9)))
	require.NoError(t, err)
	assert.Equal(t, "big", text)
}

func TestBufferTracksShiftedRange(t *testing.T) {
	b := NewBuffer("one\ntwo three")
	r := NewRange(NewPositionWithOffset(1, 4, 8), NewPositionWithOffset(1, 9, 13))

	c, err := b.Replace(NewPosition(0, 0), NewPosition(0, 0), "zero\n")
	require.NoError(t, err)
	require.Equal(t, ChangeBefore, r.ProcessChange(c))

	text, err := b.Slice(r)
	require.NoError(t, err)
	assert.Equal(t, "three", text)
	assert.Equal(t, 2, r.From.Line())
}
