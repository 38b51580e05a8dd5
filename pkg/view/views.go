package view

// Box is a plain container that stacks its subviews in a column.
type Box struct {
	Base
}

// NewBox creates a Box.
func NewBox() *Box {
	b := &Box{}
	b.Init(TypeBox, b)
	return b
}

// Table is a scrolling container. It fills the available height and stacks
// its rows below PaddingTop.
type Table struct {
	Base

	// ContentOffset is the vertical scroll position.
	ContentOffset float64
}

// NewTable creates a Table.
func NewTable() *Table {
	t := &Table{}
	t.Init(TypeTable, t)
	return t
}

// Measure fills the available space unless a fixed size is set.
func (t *Table) Measure(available Size) Size {
	s := Size{Width: t.Layout.Width, Height: t.Layout.Height}
	if s.Width == 0 {
		s.Width = available.Width
	}
	if s.Height == 0 {
		s.Height = available.Height
	}
	return s
}

// ContentHeight returns the stacked height of the rows.
func (t *Table) ContentHeight() float64 {
	inner := t.ContentSize(t.Frame)
	var h float64
	for _, sv := range t.subviews {
		if sb := sv.base(); sb.Hidden || sb.Leaving {
			continue
		}
		h += sv.Measure(inner).Height
	}
	return h
}

// Reset clears the scroll position along with the base state.
func (t *Table) Reset() {
	t.Base.Reset()
	t.ContentOffset = 0
}

// Button is a tappable view.
type Button struct {
	Base

	Title       string
	Highlighted bool
	onTap       func()
}

// NewButton creates a Button.
func NewButton() *Button {
	b := &Button{}
	b.Init(TypeButton, b)
	b.intrinsic = Size{Width: 32, Height: 32}
	return b
}

// OnTap sets the tap callback, replacing any previous one.
func (b *Button) OnTap(fn func()) {
	b.onTap = fn
}

// Tap simulates a tap. Hidden buttons ignore taps.
// It reports whether a callback ran.
func (b *Button) Tap() bool {
	if b.Hidden || b.onTap == nil {
		return false
	}
	b.Highlighted = true
	defer func() { b.Highlighted = false }()
	b.onTap()
	return true
}

// Reset drops the callback and highlight state.
func (b *Button) Reset() {
	b.Base.Reset()
	b.Title = ""
	b.Highlighted = false
	b.onTap = nil
}

// Label displays a line of text.
type Label struct {
	Base

	Text string
}

// NewLabel creates a Label.
func NewLabel() *Label {
	l := &Label{}
	l.Init(TypeLabel, l)
	l.intrinsic = Size{Height: 20}
	return l
}

// Reset clears the text.
func (l *Label) Reset() {
	l.Base.Reset()
	l.Text = ""
}

// Card heights for the collapsed and expanded states.
const (
	CardHeight         = 80
	CardExpandedHeight = 160
)

// Card is a content card with a collapsed and an expanded form.
type Card struct {
	Base

	Title        string
	Expanded     bool
	BeingDeleted bool
}

// NewCard creates a Card.
func NewCard() *Card {
	c := &Card{}
	c.Init(TypeCard, c)
	return c
}

// Measure uses the card's intrinsic height for its current form.
func (c *Card) Measure(available Size) Size {
	w := c.Layout.Width
	if w == 0 {
		w = available.Width
	}
	h := c.Layout.Height
	if h == 0 {
		h = CardHeight
		if c.Expanded {
			h = CardExpandedHeight
		}
	}
	return Size{Width: w, Height: h}
}

// Reset returns the card to its collapsed form.
func (c *Card) Reset() {
	c.Base.Reset()
	c.Title = ""
	c.Expanded = false
	c.BeingDeleted = false
}
