package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/pasumerce/inventario/internal/config"
	"github.com/pasumerce/inventario/internal/models"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StockSource is the read side of the inventory the watch needs.
type StockSource interface {
	ExpiringBefore(ctx context.Context, t time.Time) ([]models.Ingredient, error)
	Depleted(ctx context.Context) ([]models.Ingredient, error)
}

// Scheduler runs the periodic stock watch. It only reads inventory.
type Scheduler struct {
	cron   *cron.Cron
	stock  StockSource
	cfg    config.SchedulerConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduler creates a scheduler; Start registers and starts the jobs.
func NewScheduler(cfg config.SchedulerConfig, stock StockSource, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	// standard 5-field cron expressions, server local time
	return &Scheduler{
		cron:   cron.New(),
		stock:  stock,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Start schedules the stock watch and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.StockWatchCron, s.runStockWatch); err != nil {
		return fmt.Errorf("schedule stock watch %q: %w", s.cfg.StockWatchCron, err)
	}
	s.logger.Info("starting scheduler", zap.String("stock_watch_cron", s.cfg.StockWatchCron))
	s.cron.Start()
	return nil
}

// Stop stops the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runStockWatch() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := s.StockWatch(ctx); err != nil {
		s.logger.Error("stock watch failed", zap.Error(err))
	}
}

// StockWatch logs every ingredient with stock that expires inside the
// configured window, and every ingredient that has run out.
func (s *Scheduler) StockWatch(ctx context.Context) error {
	now := s.now().UTC()
	window := time.Duration(s.cfg.ExpiryWindowDays) * 24 * time.Hour

	expiring, err := s.stock.ExpiringBefore(ctx, now.Add(window))
	if err != nil {
		return fmt.Errorf("expiring ingredients: %w", err)
	}
	for _, ing := range expiring {
		msg := "ingredient expiring soon"
		if ing.ExpiresWithin(now, 0) {
			msg = "ingredient expired"
		}
		s.logger.Warn(msg, ingredientFields(ing,
			zap.Time("expires", ing.ExpirationDate),
			zap.String("quantity", ing.QuantityOnHand.String()))...)
	}

	depleted, err := s.stock.Depleted(ctx)
	if err != nil {
		return fmt.Errorf("depleted ingredients: %w", err)
	}
	for _, ing := range depleted {
		s.logger.Warn("ingredient out of stock", ingredientFields(ing)...)
	}

	s.logger.Info("stock watch finished",
		zap.Int("expiring", len(expiring)),
		zap.Int("depleted", len(depleted)))
	return nil
}

// ingredientFields names the ingredient and, when loaded, who to reorder from.
func ingredientFields(ing models.Ingredient, extra ...zap.Field) []zap.Field {
	fields := []zap.Field{zap.Uint("ingredient_id", ing.ID), zap.String("name", ing.Name)}
	if ing.Supplier != nil {
		fields = append(fields,
			zap.String("supplier", ing.Supplier.FullName()),
			zap.String("supplier_phone", ing.Supplier.Phone))
	}
	return append(fields, extra...)
}
