// Package vdom provides the node tree and the keyed diff engine.
//
// A Node is an immutable description of one desired view: its type, an
// optional key, an optional props snapshot, a configuration closure, and its
// children. Render functions build a fresh tree on every render and never
// touch concrete views.
//
// # Core Types
//
// Node is the building block. PatchOp is one reconciliation step (Insert,
// Remove, Move, Update) addressed by the node's path.
//
// # Builder API
//
// Nodes are created using variadic factory functions:
//
//	Table(Key("cards"), Config(styleTable),
//	    Box(Key("cell_0"), Card(Key("card_0")), Button(Config(deleteButton))),
//	)
//
// # Identity
//
// A node is identified inside its parent by its key ("k:<key>"), or, when it
// has none, by its position among its keyless siblings ("i:<n>"). Keyed
// siblings therefore keep their identity across reorders while keyless ones
// shift around them. A full path joins the segments from the root, e.g.
// "/k:cards/k:cell_2/i:0".
//
// # Diffing
//
// Diff compares two trees and returns the ordered ops that transform the
// concrete tree realized for the first into one matching the second. It
// emits nothing for identical trees, and never removes and re-inserts a
// keyed node that only moved. Duplicate sibling keys fail the diff.
package vdom
