package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Node Tree Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryTree,
		Message:  "Duplicate sibling key",
		Detail:   "Two children of the same node carry the same key. Keys give list items a stable identity across renders and must be unique among siblings.",
	},
	"E102": {
		Category: CategoryTree,
		Message:  "Nil child node",
		Detail:   "A node was built with a nil child. Filter optional children out before adding them.",
	},

	// ============================================
	// Pool Errors (E200-E299)
	// ============================================

	"E201": {
		Category: CategoryPool,
		Message:  "View released while not in use",
		Detail:   "The view was never handed out by this pool, or it was already released. Releasing twice would let two nodes share one view.",
	},

	// ============================================
	// Applier Errors (E300-E399)
	// ============================================

	"E301": {
		Category: CategoryApply,
		Message:  "Rendered tree diverged from node tree",
		Detail:   "A patch referenced a path the rendered tree does not contain, or the applied tree does not match the new node tree. The component stops rendering.",
	},

	// ============================================
	// State Errors (E400-E499)
	// ============================================

	"E401": {
		Category: CategoryState,
		Message:  "State mutation failed",
		Detail:   "The mutation returned an error. The previously committed state was kept.",
	},
	"E402": {
		Category: CategoryState,
		Message:  "State mutation panicked",
		Detail:   "The mutation panicked. The previously committed state was kept.",
	},
	"E403": {
		Category: CategoryState,
		Message:  "Component detached",
		Detail:   "The component was detached or halted after a consistency failure and no longer accepts mutations.",
	},
	"E404": {
		Category: CategoryState,
		Message:  "Render rejected",
		Detail:   "The state produced an invalid tree. The previous state and views were kept.",
	},

	// ============================================
	// Config Errors (E500-E599)
	// ============================================

	"E501": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"E502": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
	},

	// ============================================
	// Transport Errors (E600-E699)
	// ============================================

	"E601": {
		Category: CategoryTransport,
		Message:  "Inspector client too slow",
		Detail:   "The client's outbound buffer was full and the patch batch was dropped.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
