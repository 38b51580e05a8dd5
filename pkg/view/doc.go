// Package view provides the concrete view layer the reconciler drives.
//
// A View is a realized, mutable instance of a node type. Views are headless:
// they keep a subview list, a handful of layout properties, and the state a
// real widget would carry (titles, hidden flags, tap callbacks), which is
// enough to measure, configure, and inspect them without a windowing system.
//
// # Capabilities
//
// Every view supports the same capability set, selected by TypeID rather than
// reflection:
//
//   - Configure runs a node's configuration closure against the view
//   - Measure computes a size for an available size
//   - Attach/Detach insert and remove the view from a parent
//   - Reset clears per-use state before the view is pooled
//
// Concrete types (Box, Table, Button, Label, Card) embed Base and add their
// own fields. NewDefault constructs a view for any TypeID, falling back to a
// Box for types it does not know.
package view
