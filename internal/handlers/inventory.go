package handlers

import (
	"net/http"

	"github.com/pasumerce/inventario/httpx"
	"github.com/pasumerce/inventario/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	Inventory *services.InventoryService
	Log       *zap.Logger
}

func NewInventoryHandler(inventory *services.InventoryService, log *zap.Logger) *InventoryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryHandler{Inventory: inventory, Log: log}
}

type ingredientRequest struct {
	Name            string          `json:"nombre"`
	Quantity        decimal.Decimal `json:"cantidad"`
	UnitValue       decimal.Decimal `json:"valorUnitario"`
	AcquisitionDate string          `json:"fechaAdquisicion"`
	ExpirationDate  string          `json:"fechaVencimiento"`
	SupplierID      flexID          `json:"idProveedor"`
}

// input converts the wire form; unparseable dates are reported like any
// other field violation.
func (req ingredientRequest) input(w http.ResponseWriter) (services.IngredientInput, bool) {
	in := services.IngredientInput{
		Name:       req.Name,
		Quantity:   req.Quantity,
		UnitValue:  req.UnitValue,
		SupplierID: uint(req.SupplierID),
	}
	bad := map[string]string{}
	var err error
	if in.AcquisitionDate, err = parseDate(req.AcquisitionDate); err != nil {
		bad["fechaAdquisicion"] = "invalid_date"
	}
	if in.ExpirationDate, err = parseDate(req.ExpirationDate); err != nil {
		bad["fechaVencimiento"] = "invalid_date"
	}
	if len(bad) > 0 {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "validation_failed", "Las fechas deben ser válidas", bad)
		return in, false
	}
	return in, true
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Inventory.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	item, err := h.Inventory.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ingredientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := req.input(w)
	if !ok {
		return
	}
	item, err := h.Inventory.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Insumo creado exitosamente",
		"id":      item.ID,
		"insumo":  item,
	})
}

func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req ingredientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, ok := req.input(w)
	if !ok {
		return
	}
	item, err := h.Inventory.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Insumo actualizado exitosamente",
		"insumo":  item,
	})
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Inventory.Delete(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Insumo eliminado correctamente"})
}
