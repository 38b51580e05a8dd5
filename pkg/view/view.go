package view

import "fmt"

// TypeID identifies a concrete view type (e.g., "box", "button").
type TypeID string

const (
	TypeBox    TypeID = "box"
	TypeTable  TypeID = "table"
	TypeButton TypeID = "button"
	TypeLabel  TypeID = "label"
	TypeCard   TypeID = "card"
)

// Size is a width/height pair in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// String returns the size as "WxH".
func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// ConfigFunc configures a view for its final size.
// Configuration closures must be idempotent; they run on every render.
type ConfigFunc func(v View, size Size)

// View is the capability set every realized node supports.
type View interface {
	// Type returns the view's type identifier.
	Type() TypeID

	// Configure runs fn against the view with the given size.
	Configure(fn ConfigFunc, size Size)

	// Measure returns the view's size given the space its parent offers.
	Measure(available Size) Size

	// ContentSize returns the space offered to subviews for a given frame.
	ContentSize(frame Size) Size

	// Attach inserts the view into parent's subviews at index,
	// detaching it from any previous parent first.
	Attach(parent View, index int)

	// Detach removes the view from its parent.
	Detach()

	// Reset clears per-use state (callbacks, highlight, hidden, layout).
	Reset()

	// Parent returns the current parent, or nil.
	Parent() View

	// Subviews returns the attached subviews in order.
	Subviews() []View

	base() *Base
}

// Destroyer is implemented by views that hold resources beyond memory.
// The pool calls Destroy when it evicts a retired view.
type Destroyer interface {
	Destroy()
}

// Factory constructs a fresh view.
type Factory func() View

// NewDefault constructs a view for typ. Unknown types get a Box that reports typ.
func NewDefault(typ TypeID) View {
	switch typ {
	case TypeBox:
		return NewBox()
	case TypeTable:
		return NewTable()
	case TypeButton:
		return NewButton()
	case TypeLabel:
		return NewLabel()
	case TypeCard:
		return NewCard()
	default:
		b := &Box{}
		b.Init(typ, b)
		return b
	}
}

// IndexOf returns the position of child in parent's subviews, or -1.
func IndexOf(parent, child View) int {
	if parent == nil {
		return -1
	}
	for i, v := range parent.Subviews() {
		if v == child {
			return i
		}
	}
	return -1
}

// BaseOf returns the shared state of v (layout, visibility, frame).
func BaseOf(v View) *Base {
	return v.base()
}
