package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/pasumerce/inventario/httpx"
	"github.com/pasumerce/inventario/internal/services"
	"go.uber.org/zap"
)

// RecordHandler serves the production log.
type RecordHandler struct {
	Records *services.RecordService
	Log     *zap.Logger
}

func NewRecordHandler(records *services.RecordService, log *zap.Logger) *RecordHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecordHandler{Records: records, Log: log}
}

// Recent handles GET /api/registro/registros?limit=N.
func (h *RecordHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			httpx.JSONError(w, http.StatusBadRequest, "invalid_limit", nil)
			return
		}
		limit = n
	}
	list, err := h.Records.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

// ByDate handles GET /api/registro/registros/{fecha} with fecha as YYYY-MM-DD.
func (h *RecordHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	day, err := time.Parse("2006-01-02", r.PathValue("fecha"))
	if err != nil {
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "invalid_date", "La fecha debe tener el formato AAAA-MM-DD", nil)
		return
	}
	list, err := h.Records.ByDate(r.Context(), day)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}
