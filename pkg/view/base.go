package view

// Layout holds the layout properties a configuration closure may set.
// A zero Width stretches to the available width; a zero Height sums the
// stacked subviews (or uses the view's intrinsic height).
type Layout struct {
	Width      float64
	Height     float64
	Padding    float64
	PaddingTop float64

	// Absolute views are positioned by their parent but excluded from stacking.
	Absolute bool
}

// Base implements the shared part of the View capability set.
// Concrete views embed Base and call Init with themselves.
type Base struct {
	typ      TypeID
	self     View
	parent   View
	subviews []View

	Layout Layout
	Hidden bool
	Alpha  float64

	// Leaving is set while the view plays its exit animation. It no longer
	// takes part in stacking.
	Leaving bool

	// Frame is the size assigned by the last layout pass.
	Frame Size

	intrinsic Size
}

// Init binds the view to its type and outer value. Views embedding Base must
// call it before use.
func (b *Base) Init(typ TypeID, self View) {
	b.typ = typ
	b.self = self
	b.Alpha = 1
}

func (b *Base) base() *Base { return b }

// Type implements View.
func (b *Base) Type() TypeID { return b.typ }

// Parent implements View.
func (b *Base) Parent() View { return b.parent }

// Subviews implements View.
func (b *Base) Subviews() []View { return b.subviews }

// Configure implements View.
func (b *Base) Configure(fn ConfigFunc, size Size) {
	b.Frame = size
	if fn != nil {
		fn(b.self, size)
	}
}

// Measure implements View.
func (b *Base) Measure(available Size) Size {
	w := b.Layout.Width
	if w == 0 {
		w = available.Width
	}
	h := b.Layout.Height
	if h == 0 {
		h = b.intrinsic.Height
		inner := Size{Width: w - 2*b.Layout.Padding, Height: available.Height}
		var stacked float64
		for _, sv := range b.subviews {
			sb := sv.base()
			if sb.Hidden || sb.Leaving || sb.Layout.Absolute {
				continue
			}
			stacked += sv.Measure(inner).Height
		}
		if stacked > 0 {
			h = stacked + 2*b.Layout.Padding + b.Layout.PaddingTop
		}
	}
	return Size{Width: w, Height: h}
}

// ContentSize implements View.
func (b *Base) ContentSize(frame Size) Size {
	return Size{
		Width:  max(0, frame.Width-2*b.Layout.Padding),
		Height: max(0, frame.Height-2*b.Layout.Padding-b.Layout.PaddingTop),
	}
}

// Attach implements View.
func (b *Base) Attach(parent View, index int) {
	if b.parent != nil {
		b.Detach()
	}
	pb := parent.base()
	if index < 0 || index > len(pb.subviews) {
		index = len(pb.subviews)
	}
	pb.subviews = append(pb.subviews, nil)
	copy(pb.subviews[index+1:], pb.subviews[index:])
	pb.subviews[index] = b.self
	b.parent = parent
}

// Detach implements View.
func (b *Base) Detach() {
	if b.parent == nil {
		return
	}
	pb := b.parent.base()
	for i, v := range pb.subviews {
		if v == b.self {
			pb.subviews = append(pb.subviews[:i], pb.subviews[i+1:]...)
			break
		}
	}
	b.parent = nil
}

// Reset implements View.
func (b *Base) Reset() {
	b.Layout = Layout{}
	b.Hidden = false
	b.Leaving = false
	b.Alpha = 1
	b.Frame = Size{}
}
