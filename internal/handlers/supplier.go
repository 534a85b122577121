package handlers

import (
	"net/http"

	"github.com/pasumerce/inventario/httpx"
	"github.com/pasumerce/inventario/internal/services"
	"go.uber.org/zap"
)

type SupplierHandler struct {
	Suppliers *services.SupplierService
	Log       *zap.Logger
}

func NewSupplierHandler(suppliers *services.SupplierService, log *zap.Logger) *SupplierHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SupplierHandler{Suppliers: suppliers, Log: log}
}

func (h *SupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.SupplierInput
	if !decodeBody(w, r, &in) {
		return
	}
	sup, err := h.Suppliers.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"message":   "Proveedor creado exitosamente",
		"id":        sup.ID,
		"proveedor": sup,
	})
}

func (h *SupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Suppliers.List(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *SupplierHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	sup, err := h.Suppliers.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sup)
}

func (h *SupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var in services.SupplierInput
	if !decodeBody(w, r, &in) {
		return
	}
	sup, err := h.Suppliers.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Proveedor actualizado exitosamente",
		"proveedor": sup,
	})
}

func (h *SupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Suppliers.Delete(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "message": "Proveedor eliminado correctamente"})
}
