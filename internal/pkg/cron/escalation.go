package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/workstream-hr/payroll-core-go/internal/config"
	"github.com/workstream-hr/payroll-core-go/internal/service/escalation"
)

// EscalationJobs wires the escalation monitor into the scheduler.
type EscalationJobs struct {
	monitor escalation.Monitor
	cfg     config.EscalationConfig
}

func NewEscalationJobs(monitor escalation.Monitor, cfg config.EscalationConfig) *EscalationJobs {
	return &EscalationJobs{
		monitor: monitor,
		cfg:     cfg,
	}
}

// Register adds the periodic escalation scan. When configured, one scan
// also runs at startup so a restart never misses overdue requests.
func (j *EscalationJobs) Register(scheduler *Scheduler) {
	scheduler.AddJob("escalate-correction-requests", j.cfg.ScanInterval, j.scan)

	if j.cfg.ScanOnStartup {
		if err := j.scan(context.Background()); err != nil {
			slog.Error("startup escalation scan failed", "error", err)
		}
	}
}

func (j *EscalationJobs) scan(ctx context.Context) error {
	report, err := j.monitor.Run(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if report.Escalated > 0 {
		slog.Info("correction requests escalated",
			"scanned", report.Scanned,
			"escalated", report.Escalated,
		)
	}
	return nil
}
