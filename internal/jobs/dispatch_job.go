package jobs

import (
	"context"
	"errors"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"

	"github.com/robfig/cron/v3"
)

// DispatchJob periodically re-dispatches orders that are waiting for a
// courier: confirmed orders that found nobody at confirmation time, and
// orders whose courier rejected them with no replacement available.
type DispatchJob struct {
	uowFactory commands.UoWFactory
	handler    commands.AssignCourierCommandHandler
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewDispatchJob creates a job that retries courier assignment for queued
// orders every five seconds.
func NewDispatchJob(
	uowFactory commands.UoWFactory,
	handler commands.AssignCourierCommandHandler,
	logger *slog.Logger,
) *DispatchJob {
	return &DispatchJob{
		uowFactory: uowFactory,
		handler:    handler,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "dispatch_job"),
	}
}

// Start begins the dispatch job.
func (j *DispatchJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * * *", func() {
		j.run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch job started (running every five seconds)")
	return nil
}

// Stop stops the dispatch job.
func (j *DispatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Dispatch job stopped")
}

func (j *DispatchJob) run(ctx context.Context) {
	queued, err := j.queuedOrderIDs(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to load queued orders", "error", err)
		return
	}

	for _, orderID := range queued {
		cmd, err := commands.NewAssignCourierCommand(orderID, nil)
		if err != nil {
			j.logger.ErrorContext(ctx, "Failed to build assignment command",
				"orderId", orderID.String(), "error", err)
			continue
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			if errors.Is(err, services.ErrNoCourierAvailable) {
				// Nobody is available; later orders in the batch will not
				// fare better.
				return
			}
			// Expected races: an operator assigned the order or transitioned
			// it while this cycle was running.
			if errors.Is(err, ports.ErrConcurrentModification) {
				continue
			}
			j.logger.ErrorContext(ctx, "Dispatch retry failed",
				"orderId", orderID.String(), "error", err)
		}
	}
}

// queuedOrderIDs loads the identifiers of orders awaiting dispatch in a
// read-only unit of work.
func (j *DispatchJob) queuedOrderIDs(ctx context.Context) ([]kernel.UUID, error) {
	uow := j.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback(ctx) }()

	orders, err := uow.OrderRepository().GetAllUnassigned(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID())
	}
	return ids, nil
}
