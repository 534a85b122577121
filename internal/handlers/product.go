package handlers

import (
	"net/http"

	"github.com/pasumerce/inventario/httpx"
	"github.com/pasumerce/inventario/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Log     *zap.Logger
}

func NewProductHandler(catalog *services.CatalogService, log *zap.Logger) *ProductHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductHandler{Catalog: catalog, Log: log}
}

type productRequest struct {
	Name       string           `json:"nombre"`
	TotalPrice *decimal.Decimal `json:"precioTotal,omitempty"`
	Lines      []struct {
		IngredientID    flexID           `json:"idInventario"`
		QuantityPerUnit decimal.Decimal  `json:"cantidad"`
		UnitPrice       *decimal.Decimal `json:"precioUnitario,omitempty"`
	} `json:"ingredientes"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in := services.ProductInput{Name: req.Name, TotalPrice: req.TotalPrice}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, services.BOMLineInput{
			IngredientID:    uint(l.IngredientID),
			QuantityPerUnit: l.QuantityPerUnit,
			UnitPrice:       l.UnitPrice,
		})
	}
	p, err := h.Catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"message":    "Producto creado exitosamente",
		"idProducto": p.ID,
		"producto":   p,
	})
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Catalog.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	p, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in services.ProductUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	p, err := h.Catalog.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Producto actualizado exitosamente",
		"producto": p,
	})
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Producto eliminado correctamente"})
}
