package webhookmgr

import (
	"time"

	"github.com/lobba/scheduling-service/internal/domain"
)

// sweepPlan решение планового обхода: кого продлить, кого вычистить
type sweepPlan struct {
	renew   []*domain.CalendarIntegration
	cleanup []*domain.CalendarIntegration
}

// planSweep чистая функция решения по списку каналов на момент now
// Просроченные сверх грейс-периода каналы идут в cleanup, каналы в окне
// продления с включенной синхронизацией идут в renew; остальные не трогаются
func planSweep(integrations []*domain.CalendarIntegration, now time.Time) sweepPlan {
	var plan sweepPlan

	for _, integration := range integrations {
		switch {
		case integration.NeedsCleanup(now):
			plan.cleanup = append(plan.cleanup, integration)
		case integration.NeedsRenewal(now):
			plan.renew = append(plan.renew, integration)
		}
	}

	return plan
}
