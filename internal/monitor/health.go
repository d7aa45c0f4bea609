package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/t77yq/campus-bot/internal/cache"
	"github.com/t77yq/campus-bot/internal/model"
	"github.com/t77yq/campus-bot/internal/sheets"
)

// Report is one health snapshot.
type Report struct {
	Timestamp   time.Time                `json:"timestamp"`
	SourceOK    bool                     `json:"source_ok"`
	SourceError string                   `json:"source_error,omitempty"`
	CPUUsage    float64                  `json:"cpu_usage"`
	MemoryUsage float64                  `json:"memory_usage"`
	TableAges   map[string]time.Duration `json:"table_ages"`
}

// watchedTables are the cache entries the health report ages.
var watchedTables = []string{
	model.TablePayments,
	model.TableCalendar,
	model.TableEvents,
	model.TableCareers,
	model.TableAdmission,
	model.TableContacts,
}

// HealthChecker verifies the remote source is reachable and samples
// process resource usage.
type HealthChecker struct {
	logger *zap.Logger
	source sheets.Source
	cache  *cache.Cache
}

// NewHealthChecker creates a health checker.
func NewHealthChecker(source sheets.Source, c *cache.Cache, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		logger: logger.Named("health"),
		source: source,
		cache:  c,
	}
}

// Check produces one health report.
func (h *HealthChecker) Check(ctx context.Context) Report {
	report := Report{
		Timestamp: time.Now(),
		TableAges: make(map[string]time.Duration),
	}

	if err := h.source.Ping(ctx); err != nil {
		report.SourceError = err.Error()
	} else {
		report.SourceOK = true
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		report.CPUUsage = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		report.MemoryUsage = vm.UsedPercent
	}

	for _, table := range watchedTables {
		if age, ok := h.cache.Age(table); ok {
			report.TableAges[table] = age
		}
	}

	return report
}

// Run is the health-check job body.
func (h *HealthChecker) Run(ctx context.Context) error {
	report := h.Check(ctx)

	h.logger.Info("Health check",
		zap.Bool("source_ok", report.SourceOK),
		zap.Float64("cpu_usage", report.CPUUsage),
		zap.Float64("memory_usage", report.MemoryUsage),
		zap.Int("cached_tables", len(report.TableAges)))

	if !report.SourceOK {
		return fmt.Errorf("source unreachable: %s", report.SourceError)
	}
	return nil
}
