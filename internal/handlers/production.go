package handlers

import (
	"context"
	"net/http"

	"github.com/pasumerce/inventario/httpx"
	"github.com/pasumerce/inventario/internal/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductionHandler struct {
	Production *services.ProductionService
	Catalog    *services.CatalogService
	Log        *zap.Logger
}

func NewProductionHandler(production *services.ProductionService, catalog *services.CatalogService, log *zap.Logger) *ProductionHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductionHandler{Production: production, Catalog: catalog, Log: log}
}

type produceRequest struct {
	ProductID flexID          `json:"idProducto"`
	Quantity  decimal.Decimal `json:"cantidad"`
}

type produceResponse struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message"`
	ProductionID uint            `json:"idProduccion"`
	TotalValue   decimal.Decimal `json:"valorTotal"`
}

// Produce handles POST /api/produccion/guardar.
func (h *ProductionHandler) Produce(w http.ResponseWriter, r *http.Request) {
	var in produceRequest
	if !decodeBody(w, r, &in) {
		return
	}
	// a client that hangs up mid-request must not abort the commit
	ctx := context.WithoutCancel(r.Context())
	res, err := h.Production.Produce(ctx, uint(in.ProductID), in.Quantity)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, produceResponse{
		Success:      true,
		Message:      "Producción registrada exitosamente",
		ProductionID: res.ProductionID,
		TotalValue:   res.TotalValue,
	})
}

// Products handles GET /api/produccion/productos: the products that can be
// produced, each with its bill of materials.
func (h *ProductionHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}
