package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// Registered error codes.
const (
	ErrInvalidTarget   = "E001"
	ErrUnknownField    = "E002"
	ErrValueType       = "E003"
	ErrScopeDisposed   = "E004"
	ErrDuplicateKey    = "E101"
	ErrRenderPanic     = "E102"
	ErrNilContainer    = "E103"
	ErrJobPanic        = "E201"
	ErrFrameTruncated  = "E301"
	ErrUnknownOp       = "E302"
	ErrFrameTooLarge   = "E303"
	ErrConfigParse     = "E401"
	ErrConfigInvalid   = "E402"
	ErrConfigNotFound  = "E403"
	ErrSnapshotWrite   = "E501"
	ErrSnapshotMissing = "E502"
	ErrSnapshotRead    = "E503"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Reactive Errors (E001-E099)
	// ============================================

	ErrInvalidTarget: {
		Category: CategoryReactive,
		Message:  "Invalid reactive target",
		Detail:   "Reactive targets must be non-nil pointers to a struct or to a map with string keys.",
	},
	ErrUnknownField: {
		Category: CategoryReactive,
		Message:  "Unknown field on reactive target",
	},
	ErrValueType: {
		Category: CategoryReactive,
		Message:  "Value is not assignable to field",
	},
	ErrScopeDisposed: {
		Category: CategoryReactive,
		Message:  "Scope disposed",
		Detail:   "Effects cannot be attached to a scope that has already been disposed.",
	},

	// ============================================
	// Render Errors (E100-E199)
	// ============================================

	ErrDuplicateKey: {
		Category: CategoryRender,
		Message:  "Duplicate key in sibling list",
	},
	ErrRenderPanic: {
		Category: CategoryRender,
		Message:  "Component render failed",
		Detail:   "The previously committed tree was left in place.",
	},
	ErrNilContainer: {
		Category: CategoryRender,
		Message:  "Render called with a nil container",
	},

	// ============================================
	// Scheduler Errors (E200-E299)
	// ============================================

	ErrJobPanic: {
		Category: CategoryScheduler,
		Message:  "Scheduled job panicked",
		Detail:   "The remaining jobs in the batch still ran.",
	},

	// ============================================
	// Protocol Errors (E300-E399)
	// ============================================

	ErrFrameTruncated: {
		Category: CategoryProtocol,
		Message:  "Frame truncated",
	},
	ErrUnknownOp: {
		Category: CategoryProtocol,
		Message:  "Unknown host operation",
	},
	ErrFrameTooLarge: {
		Category: CategoryProtocol,
		Message:  "Frame exceeds size limit",
	},

	// ============================================
	// Config Errors (E400-E499)
	// ============================================

	ErrConfigParse: {
		Category: CategoryConfig,
		Message:  "Could not parse configuration file",
	},
	ErrConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	ErrConfigNotFound: {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
	},

	// ============================================
	// Storage Errors (E500-E599)
	// ============================================

	ErrSnapshotWrite: {
		Category: CategoryStorage,
		Message:  "Could not write snapshot",
	},
	ErrSnapshotMissing: {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
	},
	ErrSnapshotRead: {
		Category: CategoryStorage,
		Message:  "Could not read snapshot",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
