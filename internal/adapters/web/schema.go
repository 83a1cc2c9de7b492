package web

import (
	"net/http"
	"sync"

	"github.com/invopop/jsonschema"

	"purchase-ledger/internal/core"
)

var (
	draftSchemaOnce sync.Once
	draftSchema     *jsonschema.Schema
)

// purchaseDraftSchema reflects the JSON schema of the purchase entry form.
func purchaseDraftSchema() *jsonschema.Schema {
	draftSchemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			AllowAdditionalProperties: false,
			DoNotReference:            true,
		}
		draftSchema = reflector.Reflect(&core.PurchaseDraft{})
	})
	return draftSchema
}

// apiDraftSchema handles GET /api/schema/purchase-draft.
func (h *Handler) apiDraftSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, purchaseDraftSchema())
}
