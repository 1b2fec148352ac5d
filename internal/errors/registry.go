package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category:   CategoryRuntime,
		Message:    "Store container not found",
		Detail:     "A store accessor was used by a component that has no enclosing Provider for that binding.",
		Suggestion: "Render the consumer as a descendant of the binding's Provider.",
	},
	"E002": {
		Category:   CategoryRuntime,
		Message:    "Hook order changed",
		Detail:     "A component called a different number or kind of hooks than on its first render.",
		Suggestion: "Call hooks unconditionally and in the same order on every render.",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Scope disposed",
		Detail:   "The component scope has been disposed. This usually means a component was rendered after it was unmounted.",
	},
	"E004": {
		Category:   CategoryRuntime,
		Message:    "Render loop limit exceeded",
		Detail:     "Components kept marking each other dirty during a flush. A listener or render is probably updating the store it reads from.",
		Suggestion: "Move store updates out of render functions and into event handlers.",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Component render failed",
		Detail:   "A component panicked during render. Its subtree was rendered empty.",
	},

	// ============================================
	// Protocol Errors (E020-E029)
	// ============================================

	"E020": {
		Category: CategoryProtocol,
		Message:  "Invalid frame",
		Detail:   "The websocket frame could not be decoded.",
	},
	"E021": {
		Category: CategoryProtocol,
		Message:  "Unknown frame type",
		Detail:   "The websocket frame has a type the server does not handle.",
	},
	"E022": {
		Category: CategoryProtocol,
		Message:  "Unknown action",
		Detail:   "The action named in the frame is not registered by the application.",
	},
	"E023": {
		Category: CategoryProtocol,
		Message:  "Action failed",
		Detail:   "The application action returned an error. The store was left as the action left it.",
	},

	// ============================================
	// Config Errors (E030-E039)
	// ============================================

	"E030": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file contains an invalid value.",
	},
	"E031": {
		Category: CategoryConfig,
		Message:  "Config file unreadable",
		Detail:   "The configuration file could not be read or parsed.",
	},

	// ============================================
	// Publish Errors (E040-E049)
	// ============================================

	"E040": {
		Category:   CategoryPublish,
		Message:    "Invalid publish target",
		Detail:     "Publish targets are written as s3://bucket/key.",
		Suggestion: "Pass a target such as s3://my-bucket/index.html",
	},
	"E041": {
		Category: CategoryPublish,
		Message:  "Publish failed",
		Detail:   "The rendered page could not be uploaded to object storage.",
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
