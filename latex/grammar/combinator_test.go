package grammar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exsitu-projects/ilatex-sub001/latex/source"
)

func newTestState(text string) *State {
	return newState(context.Background(), text, source.NewPositionWithOffset(0, 0, 0))
}

func TestManyStopsWithoutProgress(t *testing.T) {
	s := newTestState("aaa")
	values, ok := Many(RunOf("a", 0, func(r rune) bool { return r == 'a' }))(s)
	require.True(t, ok)
	assert.Equal(t, []string{"aaa", ""}, values)
	assert.True(t, s.atEnd())
}

func TestLookaheadDoesNotConsume(t *testing.T) {
	s := newTestState("abc")
	v, ok := Lookahead(Literal("ab"))(s)
	require.True(t, ok)
	assert.Equal(t, "ab", v)
	assert.Equal(t, 0, s.pos)
}

func TestNot(t *testing.T) {
	s := newTestState("ab")
	_, ok := Not("no a", Literal("a"))(s)
	assert.False(t, ok)
	assert.Equal(t, 0, s.pos)

	_, ok = Not("no b", Literal("b"))(s)
	assert.True(t, ok)
}

func TestAltResetsBetweenAlternatives(t *testing.T) {
	s := newTestState("abd")
	first := func(s *State) (string, bool) {
		if _, ok := Literal("ab")(s); !ok {
			return "", false
		}
		return Literal("c")(s)
	}
	v, ok := Alt(first, Literal("abd"))(s)
	require.True(t, ok)
	assert.Equal(t, "abd", v)
}

func TestFurthestFailureWins(t *testing.T) {
	pair := Named("pair", func(s *State) (string, bool) {
		if _, ok := Literal("ab")(s); !ok {
			return "", false
		}
		return Literal("y")(s)
	})
	p := Alt(Literal("abc"), pair)

	s := newTestState("abx")
	_, ok := p(s)
	require.False(t, ok)
	err := s.failure()
	assert.Equal(t, "0:2@2", err.Position.String())
	assert.Equal(t, []string{`"y"`}, err.Expected)
	assert.Equal(t, "'x'", err.Got)

	s = newTestState("x")
	_, ok = p(s)
	require.False(t, ok)
	err = s.failure()
	assert.Equal(t, "0:0@0", err.Position.String())
	assert.Equal(t, []string{`"ab"`, `"abc"`, "pair"}, err.Expected)
}

func TestOptional(t *testing.T) {
	s := newTestState("b")
	v, ok := Optional(Literal("a"), "none")(s)
	require.True(t, ok)
	assert.Equal(t, "none", v)
	assert.Equal(t, 0, s.pos)
}

func TestBalanced(t *testing.T) {
	stopAtComma := func(r rune) bool { return r == ',' }
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"a{b}c", "a{b}c", true},
		{"a{,}b,c", "a{,}b", true},
		{`a\{b`, `a\{b`, true},
		{"ab}c", "ab", true},
		{"a{b", "", false},
		{"a{{b}", "", false},
		{`ab\`, "", false},
		{`{a\`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := newTestState(tt.input)
			v, ok := balanced(0, stopAtComma)(s)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, v)
			if !ok {
				assert.Equal(t, 0, s.pos)
			}
		})
	}
}

func TestEscaped(t *testing.T) {
	isDollar := func(r rune) bool { return r == '$' }

	s := newTestState(`a\$b$c`)
	v, ok := escaped(isDollar)(s)
	require.True(t, ok)
	assert.Equal(t, `a\$b`, v)

	s = newTestState(`x\`)
	_, ok = escaped(isDollar)(s)
	require.False(t, ok)
	assert.Equal(t, 0, s.pos)
	assert.Equal(t, []string{"escaped character"}, s.failure().Expected)
}
