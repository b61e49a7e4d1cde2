package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pos(line, column, offset int) Position {
	return NewPositionWithOffset(line, column, offset)
}

func TestInsertionBeforeRangeShiftsLines(t *testing.T) {
	r := NewRange(NewPosition(2, 0), NewPosition(2, 10))
	c := Change{Start: NewPosition(0, 0), End: NewPosition(0, 0), Text: "AB\nCD"}

	assert.Equal(t, 1, c.Shift().Lines)

	rel := r.ProcessChange(c)
	assert.Equal(t, ChangeBefore, rel)
	assert.Equal(t, 3, r.From.Line())
	assert.Equal(t, 3, r.To.Line())
	assert.Equal(t, 0, r.From.Column())
	assert.Equal(t, 10, r.To.Column())
}

func TestDeletionDerivation(t *testing.T) {
	c := Change{Start: pos(0, 2, 2), End: pos(0, 7, 7), RemovedLength: 5}

	assert.Equal(t, Deletion, c.Kind())
	assert.Equal(t, -5, c.Size())
	assert.Equal(t, -5, c.Shift().Offset)
	assert.Equal(t, -5, c.Shift().Columns)
	assert.Equal(t, 0, c.Shift().Lines)
}

func TestChangeShift(t *testing.T) {
	tests := []struct {
		name   string
		change Change
		want   Shift
		kind   ChangeKind
		size   int
	}{
		{
			name:   "single line insertion",
			change: Change{Start: pos(1, 4, 10), End: pos(1, 4, 10), Text: "abc"},
			want:   Shift{Lines: 0, Columns: 3, Offset: 3},
			kind:   Insertion,
			size:   3,
		},
		{
			name:   "multi line insertion",
			change: Change{Start: pos(1, 4, 10), End: pos(1, 4, 10), Text: "ab\ncdef"},
			want:   Shift{Lines: 1, Columns: 4 - 4, Offset: 7},
			kind:   Insertion,
			size:   7,
		},
		{
			name:   "multi line deletion",
			change: Change{Start: pos(1, 4, 10), End: pos(3, 2, 30), RemovedLength: 20},
			want:   Shift{Lines: -2, Columns: 2, Offset: -20},
			kind:   Deletion,
			size:   -20,
		},
		{
			name:   "single line replacement",
			change: Change{Start: pos(0, 3, 3), End: pos(0, 5, 5), Text: "wxyz", RemovedLength: 2},
			want:   Shift{Lines: 0, Columns: 2, Offset: 2},
			kind:   Replacement,
			size:   2,
		},
		{
			name:   "multi line replacement",
			change: Change{Start: pos(0, 3, 3), End: pos(2, 5, 25), Text: "a\nbcd", RemovedLength: 22},
			want:   Shift{Lines: -1, Columns: 3 - 5, Offset: 5 - 22},
			kind:   Replacement,
			size:   5 - 22,
		},
		{
			name:   "non ascii insertion counts runes",
			change: Change{Start: pos(0, 0, 0), End: pos(0, 0, 0), Text: "é€"},
			want:   Shift{Lines: 0, Columns: 2, Offset: 2},
			kind:   Insertion,
			size:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.change.Shift())
			assert.Equal(t, tt.kind, tt.change.Kind())
			assert.Equal(t, tt.size, tt.change.Size())
		})
	}
}

func TestProcessChangeClassification(t *testing.T) {
	// "hello world" on line 0, range covers "world" [6, 11].
	newRange := func() Range { return NewRange(pos(0, 6, 6), pos(0, 11, 11)) }

	tests := []struct {
		name   string
		change Change
		want   Relation
		from   int
		to     int
	}{
		{"after", Change{Start: pos(0, 12, 12), End: pos(0, 12, 12), Text: "!"}, ChangeAfter, 6, 11},
		{"before", Change{Start: pos(0, 0, 0), End: pos(0, 0, 0), Text: "oh "}, ChangeBefore, 9, 14},
		{"within", Change{Start: pos(0, 7, 7), End: pos(0, 8, 8), Text: "OO", RemovedLength: 1}, ChangeWithin, 6, 12},
		{"within at end", Change{Start: pos(0, 11, 11), End: pos(0, 11, 11), Text: "s"}, ChangeWithin, 6, 12},
		{"within at start", Change{Start: pos(0, 6, 6), End: pos(0, 6, 6), Text: "w"}, ChangeWithin, 6, 12},
		{"across start", Change{Start: pos(0, 4, 4), End: pos(0, 8, 8), RemovedLength: 4}, ChangeAcross, 6, 11},
		{"across end", Change{Start: pos(0, 10, 10), End: pos(0, 12, 12), RemovedLength: 2}, ChangeAcross, 6, 11},
		{"covering", Change{Start: pos(0, 0, 0), End: pos(0, 12, 12), RemovedLength: 12}, ChangeAcross, 6, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRange()
			assert.Equal(t, tt.want, r.ProcessChange(tt.change))

			from, err := r.From.Offset()
			require.NoError(t, err)
			to, err := r.To.Offset()
			require.NoError(t, err)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
			assert.Equal(t, tt.from, r.From.Column())
			assert.Equal(t, tt.to, r.To.Column())
		})
	}
}

func TestRelationIsTotal(t *testing.T) {
	r := NewRange(pos(0, 5, 5), pos(0, 10, 10))
	for start := 0; start <= 15; start++ {
		for end := start; end <= 15; end++ {
			c := Change{Start: pos(0, start, start), End: pos(0, end, end), RemovedLength: end - start}
			rel := r.Relation(c)

			intersects := end >= 5 && start <= 10
			contained := start >= 5 && end <= 10
			switch {
			case contained:
				assert.Equal(t, ChangeWithin, rel, "change [%d, %d]", start, end)
			case intersects:
				assert.Equal(t, ChangeAcross, rel, "change [%d, %d]", start, end)
			case end < 5:
				assert.Equal(t, ChangeBefore, rel, "change [%d, %d]", start, end)
			default:
				assert.Equal(t, ChangeAfter, rel, "change [%d, %d]", start, end)
			}
		}
	}
}

func TestBeforeOnOtherLineKeepsColumns(t *testing.T) {
	r := NewRange(pos(1, 2, 8), pos(3, 4, 30))
	c := Change{Start: pos(0, 1, 1), End: pos(0, 3, 3), Text: "xxxxx", RemovedLength: 2}

	assert.Equal(t, ChangeBefore, r.ProcessChange(c))
	assert.Equal(t, 2, r.From.Column())
	assert.Equal(t, 4, r.To.Column())
	assert.Equal(t, 1, r.From.Line())

	off, err := r.To.Offset()
	require.NoError(t, err)
	assert.Equal(t, 33, off)
}

func TestWithinOnOtherLineKeepsEndColumn(t *testing.T) {
	r := NewRange(pos(0, 0, 0), pos(4, 1, 40))
	c := Change{Start: pos(1, 0, 10), End: pos(1, 0, 10), Text: "\n"}

	assert.Equal(t, ChangeWithin, r.ProcessChange(c))
	assert.Equal(t, 5, r.To.Line())
	assert.Equal(t, 1, r.To.Column())
	assert.Equal(t, 0, r.From.Line())
}

func TestMalformedChangePanics(t *testing.T) {
	r := NewRange(pos(0, 0, 0), pos(0, 1, 1))
	c := Change{Start: pos(0, 3, 3), End: pos(0, 1, 1)}

	assert.PanicsWithValue(t, InvariantViolation{Message: "change starts at 0:3@3 after its end 0:1@1"}, func() {
		r.ProcessChange(c)
	})
}

func TestPositionOffsetAndTranslation(t *testing.T) {
	p := NewPosition(1, 2)
	_, err := p.Offset()
	assert.ErrorIs(t, err, ErrUnspecifiedOffset)

	q := pos(1, 2, 12)
	q.shiftLines(1, 5)
	q.shiftColumns(3)

	moved := q.WithTranslation(0, 4, 4)
	assert.Equal(t, 2, moved.Line())
	assert.Equal(t, 9, moved.Column())
	assert.True(t, moved.Shift().IsZero())
	off, err := moved.Offset()
	require.NoError(t, err)
	assert.Equal(t, 21, off)

	assert.Equal(t, 1, q.Baseline().Line())
}
