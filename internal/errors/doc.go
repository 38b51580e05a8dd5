// Package errors provides coded, structured errors for tablenode.
//
// Every failure the engine can surface has a unique code (e.g., "E101") that
// maps to a category, a short message, and a longer explanation:
//
//   - E1xx: node tree errors (duplicate sibling keys, nil children)
//   - E2xx: recycling pool misuse
//   - E3xx: applier consistency failures
//   - E4xx: state mutation and component lifecycle errors
//   - E5xx: configuration errors
//
// # Usage
//
//	err := errors.New("E101").
//	    WithDetail(`key "cell_2" appears twice under /k:cards`)
//
//	fmt.Println(err.Format())
//
// Errors created from the same code match each other under errors.Is, so
// packages export a sentinel per code and return decorated copies:
//
//	var ErrDuplicateKey = errors.New("E101")
//
//	if stderrors.Is(err, vdom.ErrDuplicateKey) { ... }
package errors
