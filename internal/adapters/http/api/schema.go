package api

import (
	"net/http"
)

// SchemaHandler serves the pinned model input schema.
type SchemaHandler struct {
	deps Dependencies
}

// NewSchemaHandler creates a new schema handler.
func NewSchemaHandler(deps Dependencies) *SchemaHandler {
	return &SchemaHandler{deps: deps}
}

// HandleSchema handles GET /schema requests. The form reads field labels,
// bounds, levels and defaults from here.
func (h *SchemaHandler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "api.schema", http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Schema())
}
