package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pasumerce/inventario/httpx"
	"github.com/pasumerce/inventario/internal/services"
	"go.uber.org/zap"
)

// writeError maps a service error to its HTTP status and JSON body.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	var (
		ve    *services.ValidationError
		nf    *services.NotFoundError
		is    *services.InvalidStateError
		short *services.InsufficientInventoryError
		ce    *services.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "validation_failed", "Datos inválidos", ve.Violations)
	case errors.As(err, &nf):
		httpx.JSONErrorMessage(w, http.StatusNotFound, nf.Code(), notFoundMessage(nf.Entity), nil)
	case errors.As(err, &is):
		httpx.JSONErrorMessage(w, http.StatusNotFound, is.Code, "No hay ingredientes configurados para este producto", nil)
	case errors.As(err, &short):
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "insufficient_inventory", "Inventario insuficiente", short.Shortfalls)
	case errors.As(err, &ce):
		httpx.JSONErrorMessage(w, http.StatusConflict, ce.Code, ce.Reason, nil)
	default:
		log.Error("request failed", zap.Error(err))
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", "Error interno del servidor", nil)
	}
}

func notFoundMessage(entity string) string {
	switch entity {
	case "product":
		return "Producto no encontrado"
	case "ingredient":
		return "Insumo no encontrado"
	case "supplier":
		return "Proveedor no encontrado"
	}
	return "Recurso no encontrado"
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_json", "Cuerpo de la solicitud inválido", nil)
		return false
	}
	return true
}

// flexID accepts an id sent as a JSON number or as a numeric string, as HTML
// select values arrive.
type flexID uint

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*f = flexID(n)
	return nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// parseDate accepts a calendar date or a timestamp. An empty string yields the
// zero time so required-field validation reports it.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
