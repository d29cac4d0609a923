package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"sweetshop/internal/events"
	"sweetshop/internal/models"
)

// StockReporter lists items at or under the low-stock threshold and the ones
// that sold out.
type StockReporter interface {
	LowStockItems(ctx context.Context) (low, empty []models.Item)
}

// Scheduler periodically republishes the low-stock picture so the worker
// keeps alerting until stock is replenished.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	stock    StockReporter
	events   events.Publisher
	log      zerolog.Logger
}

func NewScheduler(schedule string, stock StockReporter, publisher events.Publisher, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		stock:    stock,
		events:   publisher,
		log:      log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runReport); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("low stock report still running at shutdown")
	}
}

func (s *Scheduler) runReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Report(ctx); err != nil {
		s.log.Error().Err(err).Msg("low stock report failed")
	}
}

// Report publishes one event per low or empty item.
func (s *Scheduler) Report(ctx context.Context) error {
	low, empty := s.stock.LowStockItems(ctx)
	for _, item := range low {
		if err := s.events.Publish(ctx, events.NewStockEvent(events.TypeLowStock, item, 0)); err != nil {
			return err
		}
	}
	for _, item := range empty {
		if err := s.events.Publish(ctx, events.NewStockEvent(events.TypeOutOfStock, item, 0)); err != nil {
			return err
		}
	}
	s.log.Info().Int("low", len(low)).Int("empty", len(empty)).Msg("low stock report published")
	return nil
}
