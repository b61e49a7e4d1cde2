package grammar

// Parser is a grammar rule. On success it returns its value and leaves the
// state after the consumed input; on failure it returns false and the
// caller is responsible for resetting the state.
type Parser[T any] func(*State) (T, bool)

// Literal matches lit exactly.
func Literal(lit string) Parser[string] {
	name := `"` + lit + `"`
	return func(s *State) (string, bool) {
		if !s.lookingAt(lit) {
			s.fail(s.pos, name)
			return "", false
		}
		s.advance(len([]rune(lit)))
		return lit, true
	}
}

// Rune matches a single rune satisfying pred.
func Rune(name string, pred func(rune) bool) Parser[rune] {
	return func(s *State) (rune, bool) {
		if s.atEnd() || !pred(s.peek()) {
			s.fail(s.pos, name)
			return 0, false
		}
		r := s.peek()
		s.advance(1)
		return r, true
	}
}

// RunOf matches the longest run of at least min runes satisfying pred.
func RunOf(name string, min int, pred func(rune) bool) Parser[string] {
	return func(s *State) (string, bool) {
		start := s.pos
		for !s.atEnd() && pred(s.peek()) {
			s.advance(1)
		}
		if s.pos-start < min {
			s.fail(s.pos, name)
			s.reset(start)
			return "", false
		}
		return s.slice(start, s.pos), true
	}
}

// Alt returns the result of the first alternative that matches.
func Alt[T any](alternatives ...Parser[T]) Parser[T] {
	return func(s *State) (T, bool) {
		start := s.mark()
		for _, p := range alternatives {
			if v, ok := p(s); ok {
				return v, true
			}
			s.reset(start)
		}
		var zero T
		return zero, false
	}
}

// Many matches p zero or more times. It stops at the first failure or when
// p matches without consuming input.
func Many[T any](p Parser[T]) Parser[[]T] {
	return func(s *State) ([]T, bool) {
		var values []T
		for {
			start := s.mark()
			v, ok := p(s)
			if !ok {
				s.reset(start)
				return values, true
			}
			values = append(values, v)
			if s.pos == start {
				return values, true
			}
		}
	}
}

// Optional matches p or nothing, in which case it returns absent.
func Optional[T any](p Parser[T], absent T) Parser[T] {
	return func(s *State) (T, bool) {
		start := s.mark()
		if v, ok := p(s); ok {
			return v, true
		}
		s.reset(start)
		return absent, true
	}
}

// Lookahead matches p without consuming input.
func Lookahead[T any](p Parser[T]) Parser[T] {
	return func(s *State) (T, bool) {
		start := s.mark()
		v, ok := p(s)
		s.reset(start)
		return v, ok
	}
}

// Not succeeds without consuming input when p does not match here.
func Not[T any](name string, p Parser[T]) Parser[struct{}] {
	return func(s *State) (struct{}, bool) {
		start := s.mark()
		_, ok := p(s)
		s.reset(start)
		if ok {
			s.fail(start, name)
			return struct{}{}, false
		}
		return struct{}{}, true
	}
}

func Map[T, U any](p Parser[T], f func(T) U) Parser[U] {
	return func(s *State) (U, bool) {
		v, ok := p(s)
		if !ok {
			var zero U
			return zero, false
		}
		return f(v), true
	}
}

// Named reports failures of p under name.
func Named[T any](name string, p Parser[T]) Parser[T] {
	return func(s *State) (T, bool) {
		start := s.pos
		v, ok := p(s)
		if !ok {
			s.fail(start, name)
		}
		return v, ok
	}
}

// Lazy defers building a rule until it is first used, which lets rules refer
// to each other.
func Lazy[T any](rule *Parser[T]) Parser[T] {
	return func(s *State) (T, bool) {
		return (*rule)(s)
	}
}
