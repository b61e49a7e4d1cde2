package source

// Relation tells where a change lies with respect to a range.
type Relation int

const (
	// ChangeBefore: the change ends before the range starts.
	ChangeBefore Relation = iota
	// ChangeWithin: the change is fully contained in the range.
	ChangeWithin
	// ChangeAcross: the change overlaps the range without being contained.
	ChangeAcross
	// ChangeAfter: the change starts after the range ends.
	ChangeAfter
)

func (r Relation) String() string {
	switch r {
	case ChangeBefore:
		return "Before"
	case ChangeWithin:
		return "Within"
	case ChangeAcross:
		return "Across"
	case ChangeAfter:
		return "After"
	}
	return "Unknown"
}

// Range delimits a span of text. From may temporarily exceed To while
// several shifts are being applied.
type Range struct {
	From Position
	To   Position
}

func NewRange(from, to Position) Range {
	return Range{From: from, To: to}
}

// Relation classifies c against r without mutating anything.
func (r Range) Relation(c Change) Relation {
	if c.Start.After(c.End) {
		violation("change starts at %s after its end %s", c.Start, c.End)
	}
	switch {
	case r.To.Before(c.Start):
		return ChangeAfter
	case r.From.After(c.End):
		return ChangeBefore
	case !c.Start.Before(r.From) && !c.End.After(r.To):
		return ChangeWithin
	case !c.End.Before(r.From) && !c.Start.After(r.To):
		return ChangeAcross
	}
	violation("cannot classify change %s against range %s", c, r)
	return ChangeAcross
}

// ProcessChange classifies c against r and shifts r accordingly.
//
// Before shifts both ends by the change's line and offset delta, and by its
// column delta for the ends lying on the change's end line. Within only moves
// To. After and Across leave r untouched; an Across range cannot be shifted
// meaningfully and its owner has to be reparsed.
func (r *Range) ProcessChange(c Change) Relation {
	rel := r.Relation(c)
	shift := c.Shift()

	switch rel {
	case ChangeBefore:
		fromOnEndLine := r.From.Line() == c.End.Line()
		toOnEndLine := r.To.Line() == c.End.Line()
		r.From.shiftLines(shift.Lines, shift.Offset)
		r.To.shiftLines(shift.Lines, shift.Offset)
		if fromOnEndLine {
			r.From.shiftColumns(shift.Columns)
		}
		if toOnEndLine {
			r.To.shiftColumns(shift.Columns)
		}
	case ChangeWithin:
		toOnEndLine := r.To.Line() == c.End.Line()
		r.To.shiftLines(shift.Lines, shift.Offset)
		if toOnEndLine {
			r.To.shiftColumns(shift.Columns)
		}
	}
	return rel
}

// Contains reports whether p lies in [From, To].
func (r Range) Contains(p Position) bool {
	return !p.Before(r.From) && !p.After(r.To)
}

// ContainsRange reports whether o lies entirely in r.
func (r Range) ContainsRange(o Range) bool {
	return r.Contains(o.From) && r.Contains(o.To)
}

// Intersects reports whether r and o share at least one position.
func (r Range) Intersects(o Range) bool {
	return !r.To.Before(o.From) && !o.To.Before(r.From)
}

func (r Range) IsEmpty() bool {
	return r.From.Equal(r.To)
}

// Length returns the number of runes spanned by r.
func (r Range) Length() (int, error) {
	from, err := r.From.Offset()
	if err != nil {
		return 0, err
	}
	to, err := r.To.Offset()
	if err != nil {
		return 0, err
	}
	return to - from, nil
}

func (r Range) String() string {
	return "[" + r.From.String() + " " + r.To.String() + "]"
}
