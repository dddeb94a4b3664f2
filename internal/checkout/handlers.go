package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/sale"
)

// Handler exposes register operations over HTTP.
type Handler struct {
	registry *Registry
	validate *validator.Validate
}

// HandlerConfig configures the Handler dependencies.
type HandlerConfig struct {
	Registry  *Registry
	Validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validator
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &Handler{registry: cfg.Registry, validate: v}
}

type scanRequest struct {
	ItemID   *int `json:"itemId" validate:"required,gte=0"`
	Quantity int  `json:"quantity" validate:"omitempty,gt=0"`
}

type discountRequest struct {
	CustomerID *int `json:"customerId" validate:"required,gte=0"`
}

type paymentRequest struct {
	AmountPaid decimal.Decimal `json:"amountPaid"`
}

// Routes mounts the sale endpoints below /registers/{registerID}. The payment
// middleware wraps only the payment endpoint.
func (h *Handler) Routes(r chi.Router, payment ...func(http.Handler) http.Handler) {
	r.Get("/registers", h.Registers)
	r.Route("/registers/{registerID}/sale", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Get("/", h.Current)
		r.Post("/items", h.Scan)
		r.Post("/discounts", h.Discount)
		r.Post("/end", h.End)
		r.With(payment...).Post("/payment", h.Pay)
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) (*Register, bool) {
	if h.registry == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout registry not configured", nil)
		return nil, false
	}
	id := chi.URLParam(r, "registerID")
	reg, err := h.registry.Get(id)
	if err != nil {
		common.WriteError(w, ToAppError(err))
		return nil, false
	}
	obs.TagsFromContext(r.Context()).SetRegister(id)
	return reg, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]string{}
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				details[fe.Field()] = fe.Tag()
			}
		}
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid payload", details)
		return false
	}
	return true
}

// Registers handles GET /registers, listing the registers used since startup.
func (h *Handler) Registers(w http.ResponseWriter, _ *http.Request) {
	if h.registry == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "checkout registry not configured", nil)
		return
	}
	common.Data(w, http.StatusOK, h.registry.IDs())
}

// Start handles POST /sale.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}
	id, err := reg.StartSale(r.Context())
	if err != nil {
		common.WriteError(w, ToAppError(err))
		return
	}
	common.Data(w, http.StatusCreated, map[string]string{"saleId": id.String(), "registerId": reg.ID()})
}

// Current handles GET /sale.
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}
	snap, err := reg.Current(r.Context())
	if err != nil {
		common.WriteError(w, ToAppError(err))
		return
	}
	common.Data(w, http.StatusOK, snap)
}

// Scan handles POST /sale/items.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}
	var payload scanRequest
	if !h.decode(w, r, &payload) {
		return
	}
	qty := payload.Quantity
	if qty == 0 {
		qty = 1
	}
	res, err := reg.ScanItem(r.Context(), *payload.ItemID, qty)
	if err != nil {
		common.WriteError(w, ToAppError(err))
		return
	}
	common.Data(w, http.StatusOK, res)
}

// Discount handles POST /sale/discounts.
func (h *Handler) Discount(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}
	var payload discountRequest
	if !h.decode(w, r, &payload) {
		return
	}
	res, err := reg.RequestDiscount(r.Context(), *payload.CustomerID)
	if err != nil {
		common.WriteError(w, ToAppError(err))
		return
	}
	common.Data(w, http.StatusOK, res)
}

// End handles POST /sale/end.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}
	total, err := reg.EndSale(r.Context())
	if err != nil {
		common.WriteError(w, ToAppError(err))
		return
	}
	common.Data(w, http.StatusOK, map[string]string{"totalPrice": total.StringFixed(2)})
}

// Pay handles POST /sale/payment.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	reg, ok := h.register(w, r)
	if !ok {
		return
	}
	var payload paymentRequest
	if !h.decode(w, r, &payload) {
		return
	}
	res, err := reg.Pay(r.Context(), payload.AmountPaid)
	if err != nil {
		common.WriteError(w, ToAppError(err))
		return
	}
	common.Data(w, http.StatusOK, map[string]any{
		"change": res.Change.StringFixed(2),
		"sale":   res.Sale,
	})
}

// ToAppError maps register errors onto their HTTP representation.
func ToAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidRegisterID):
		return common.NewAppError("INVALID_REGISTER", "register id must match [A-Za-z0-9_-]{1,64}", http.StatusBadRequest, err)
	case errors.Is(err, ErrNoSaleInProgress):
		return common.NewAppError("NO_SALE_IN_PROGRESS", "no sale in progress", http.StatusConflict, err)
	case errors.Is(err, sale.ErrInvalidQuantity):
		return common.NewAppError("INVALID_QUANTITY", "quantity must be greater than zero", http.StatusBadRequest, err)
	case errors.Is(err, sale.ErrNegativeAmount):
		return common.NewAppError("NEGATIVE_AMOUNT", "amount paid must not be negative", http.StatusBadRequest, err)
	case errors.Is(err, sale.ErrInvalidPayment):
		return common.NewAppError("INVALID_PAYMENT", "amount paid does not cover the total", http.StatusUnprocessableEntity, err)
	case errors.Is(err, sale.ErrSaleCompleted):
		return common.NewAppError("SALE_COMPLETED", "sale already completed", http.StatusConflict, err)
	case errors.Is(err, catalog.ErrItemNotFound), errors.Is(err, catalog.ErrUnavailable):
		return catalog.ToAppError(err)
	default:
		return err
	}
}
