package main

import (
	"net/http"

	"github.com/pasumerce/inventario/httpx"
	"github.com/pasumerce/inventario/internal/config"
	"github.com/pasumerce/inventario/internal/handlers"
	"github.com/pasumerce/inventario/internal/middleware"
	"github.com/pasumerce/inventario/internal/services"
	"github.com/pasumerce/inventario/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	db      *gorm.DB
	cfg     *config.Config
	log     *zap.Logger
	handler http.Handler
}

// NewApp wires services and handlers onto a new mux.
func NewApp(db *gorm.DB, cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	app := &App{
		mux: http.NewServeMux(),
		db:  db,
		cfg: cfg,
		log: log,
	}
	app.setupRoutes()
	app.handler = middleware.Chain(app.mux,
		middleware.RequestID,
		middleware.Logger(logger.Named(log, "http")),
		middleware.Recover(log),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	inventory := services.NewInventoryService(a.db, logger.Named(a.log, "svc.inventory"))
	catalog := services.NewCatalogService(a.db, logger.Named(a.log, "svc.catalog"))
	suppliers := services.NewSupplierService(a.db, logger.Named(a.log, "svc.supplier"))
	production := services.NewProductionService(a.db, inventory, catalog, logger.Named(a.log, "svc.production"))
	records := services.NewRecordService(a.db)

	hlog := logger.Named(a.log, "handlers")
	prh := handlers.NewProductionHandler(production, catalog, hlog)
	ih := handlers.NewInventoryHandler(inventory, hlog)
	sh := handlers.NewSupplierHandler(suppliers, hlog)
	ph := handlers.NewProductHandler(catalog, hlog)
	rh := handlers.NewRecordHandler(records, hlog)

	// Production
	a.mux.HandleFunc("POST /api/produccion/guardar", prh.Produce)
	a.mux.HandleFunc("GET /api/produccion/productos", prh.Products)

	// Inventory
	a.mux.HandleFunc("GET /api/inventario", ih.List)
	a.mux.HandleFunc("GET /api/inventario/{id}", ih.Get)
	a.mux.HandleFunc("POST /api/inventario/crear", ih.Create)
	a.mux.HandleFunc("PUT /api/inventario/actualizar/{id}", ih.Update)
	a.mux.HandleFunc("DELETE /api/inventario/eliminar/{id}", ih.Delete)

	// Suppliers
	a.mux.HandleFunc("POST /api/proveedor/crear", sh.Create)
	a.mux.HandleFunc("GET /api/proveedor/ver", sh.List)
	a.mux.HandleFunc("GET /api/proveedor/{id}", sh.Get)
	a.mux.HandleFunc("PUT /api/proveedor/actualizar/{id}", sh.Update)
	a.mux.HandleFunc("DELETE /api/proveedor/eliminar/{id}", sh.Delete)

	// Products
	a.mux.HandleFunc("POST /api/producto/agregar", ph.Create)
	a.mux.HandleFunc("GET /api/producto/listar", ph.List)
	a.mux.HandleFunc("GET /api/producto/{id}", ph.Get)
	a.mux.HandleFunc("PUT /api/producto/actualizar/{id}", ph.Update)
	a.mux.HandleFunc("DELETE /api/producto/eliminar/{id}", ph.Delete)

	// Production log
	a.mux.HandleFunc("GET /api/registro/registros", rh.Recent)
	a.mux.HandleFunc("GET /api/registro/registros/{fecha}", rh.ByDate)

	a.mux.HandleFunc("GET /healthz", a.health)
	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "route_not_found", nil)
	})
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
