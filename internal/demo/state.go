package demo

import (
	"slices"

	"github.com/samber/lo"
)

// State is the table screen's state.
type State struct {
	// Items are the row identifiers, in display order.
	Items []int `json:"items"`

	// IndexBeingDeleted holds rows that are marked for removal but still shown.
	IndexBeingDeleted []int `json:"indexBeingDeleted"`
}

// NewState returns a state with rows 0..n-1.
func NewState(n int) State {
	return State{Items: lo.Range(n)}
}

// Pending reports whether row idx is marked for removal.
func (s State) Pending(idx int) bool {
	return lo.Contains(s.IndexBeingDeleted, idx)
}

// markPending returns a copy of s with idx marked for removal.
func (s State) markPending(idx int) State {
	if s.Pending(idx) {
		return s
	}
	s.IndexBeingDeleted = append(slices.Clone(s.IndexBeingDeleted), idx)
	return s
}

// drop returns a copy of s without row idx.
func (s State) drop(idx int) State {
	s.IndexBeingDeleted = lo.Without(s.IndexBeingDeleted, idx)
	s.Items = lo.Without(s.Items, idx)
	return s
}
