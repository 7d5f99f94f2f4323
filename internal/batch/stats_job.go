package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"credit-control/internal/domain/customer"
	"credit-control/internal/infrastructure/monitoring"
)

// StatsSnapshotJob periodically recomputes the customer statistics and
// exports them as gauges, so the figures are available to dashboards without
// hitting the stats endpoint.
type StatsSnapshotJob struct {
	customerService customer.CustomerService
	timeout         time.Duration
	logger          *slog.Logger
}

func NewStatsSnapshotJob(customerSvc customer.CustomerService, timeout time.Duration, logger *slog.Logger) *StatsSnapshotJob {
	if customerSvc == nil || logger == nil {
		panic("StatsSnapshotJob dependencies cannot be nil")
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &StatsSnapshotJob{
		customerService: customerSvc,
		timeout:         timeout,
		logger:          logger.With("job", "StatsSnapshot"),
	}
}

func (j *StatsSnapshotJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting customer stats snapshot job.")

	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	stats, err := j.customerService.GetCustomerStats(runCtx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to compute customer stats, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to compute stats: %w", err)
	}

	monitoring.Business.CustomersTotal.Set(float64(stats.TotalCustomers))
	monitoring.Business.CustomersActive.Set(float64(stats.ActiveCustomers))
	monitoring.Business.CustomersInactive.Set(float64(stats.InactiveCustomers))
	monitoring.Business.IndustriesTotal.Set(float64(stats.TotalIndustries))

	j.logger.InfoContext(ctx, "Customer stats snapshot job finished.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int64("total_customers", stats.TotalCustomers),
		slog.Int64("active_customers", stats.ActiveCustomers),
		slog.Int("industries", stats.TotalIndustries),
	)
	return nil
}
