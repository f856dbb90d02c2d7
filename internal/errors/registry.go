package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid vango.json",
		Detail:   "The vango.json configuration file is malformed.",
		DocURL:   "https://vango.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   "https://vango.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or cannot be parsed.",
		DocURL:   "https://vango.dev/docs/errors/E122",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E141": {
		Category: CategoryCLI,
		Message:  "Not a Vango project",
		Detail:   "The current directory is not a Vango project. Run this command from a directory with vango.json.",
		DocURL:   "https://vango.dev/docs/errors/E141",
	},

	// ============================================
	// Export Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryRender,
		Message:  "Static render failed",
		Detail:   "The dev server failed to render a route to HTML.",
		DocURL:   "https://vango.dev/docs/errors/E200",
	},
	"E201": {
		Category: CategoryManifest,
		Message:  "Invalid route manifest",
		Detail:   "The route manifest returned by the dev server could not be parsed.",
		DocURL:   "https://vango.dev/docs/errors/E201",
	},
	"E202": {
		Category: CategoryServer,
		Message:  "Dev server unavailable",
		Detail:   "The dev server could not be reached or did not become ready in time.",
		DocURL:   "https://vango.dev/docs/errors/E202",
	},
	"E203": {
		Category: CategoryServer,
		Message:  "Functions manifest unavailable",
		Detail:   "The dev server did not return a valid server functions manifest.",
		DocURL:   "https://vango.dev/docs/errors/E203",
	},
	"E204": {
		Category: CategoryFilesystem,
		Message:  "Export write failed",
		Detail:   "An exported file could not be written.",
		DocURL:   "https://vango.dev/docs/errors/E204",
	},
	"E205": {
		Category: CategoryManifest,
		Message:  "Duplicate output path",
		Detail:   "Two different routes resolve to the same exported file.",
		DocURL:   "https://vango.dev/docs/errors/E205",
	},
	"E206": {
		Category: CategoryPublish,
		Message:  "Publish failed",
		Detail:   "An exported file could not be uploaded.",
		DocURL:   "https://vango.dev/docs/errors/E206",
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

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
