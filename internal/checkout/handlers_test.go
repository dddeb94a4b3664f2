package checkout_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/checkout"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	f := newFixture(t)
	registry, err := checkout.NewRegistry(f.deps)
	require.NoError(t, err)
	r := chi.NewRouter()
	checkout.NewHandler(checkout.HandlerConfig{Registry: registry}).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return rr.Code, out
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHTTPDiscountFlow(t *testing.T) {
	h := newRouter(t)
	base := "/registers/lane-1/sale"

	code, _ := do(t, h, http.MethodPost, base, "")
	require.Equal(t, http.StatusCreated, code)

	code, _ = do(t, h, http.MethodPost, base+"/items", `{"itemId":1,"quantity":4}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, h, http.MethodPost, base+"/items", `{"itemId":2,"quantity":5}`)
	require.Equal(t, http.StatusOK, code)

	code, body := do(t, h, http.MethodPost, base+"/end", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "175.00", body["data"].(map[string]any)["totalPrice"])

	code, _ = do(t, h, http.MethodPost, base+"/discounts", `{"customerId":1}`)
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, h, http.MethodPost, base+"/payment", `{"amountPaid":"120"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "5.18", body["data"].(map[string]any)["change"])

	code, body = do(t, h, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, body["data"].(map[string]any)["payment"])
}

func TestHTTPErrorMapping(t *testing.T) {
	h := newRouter(t)
	base := "/registers/lane-2/sale"

	code, body := do(t, h, http.MethodPost, base+"/items", `{"itemId":1}`)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "NO_SALE_IN_PROGRESS", errorCode(body))

	code, _ = do(t, h, http.MethodPost, base, "")
	require.Equal(t, http.StatusCreated, code)

	code, body = do(t, h, http.MethodPost, base+"/items", `{"itemId":99}`)
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "ITEM_NOT_FOUND", errorCode(body))

	code, body = do(t, h, http.MethodPost, base+"/items", `{"itemId":1,"quantity":-1}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "VALIDATION_FAILED", errorCode(body))

	code, body = do(t, h, http.MethodPost, base+"/items", `{"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "VALIDATION_FAILED", errorCode(body))

	code, _ = do(t, h, http.MethodPost, base+"/items", `{"itemId":1}`)
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, h, http.MethodPost, base+"/payment", `{"amountPaid":-5}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "NEGATIVE_AMOUNT", errorCode(body))

	code, body = do(t, h, http.MethodPost, base+"/payment", `{"amountPaid":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	require.Equal(t, "INVALID_PAYMENT", errorCode(body))

	code, _ = do(t, h, http.MethodPost, base+"/payment", `{"amountPaid":20}`)
	require.Equal(t, http.StatusOK, code)

	code, body = do(t, h, http.MethodPost, base+"/items", `{"itemId":1}`)
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "SALE_COMPLETED", errorCode(body))

	code, body = do(t, h, http.MethodPost, base+"/items", `not json`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "BAD_REQUEST", errorCode(body))
}
