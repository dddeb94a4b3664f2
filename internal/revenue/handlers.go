package revenue

import (
	"net/http"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Summary handles GET /revenue.
func (t *Tracker) Summary(w http.ResponseWriter, _ *http.Request) {
	common.Data(w, http.StatusOK, map[string]any{
		"total": t.Total().StringFixed(2),
		"sales": t.Sales(),
	})
}
