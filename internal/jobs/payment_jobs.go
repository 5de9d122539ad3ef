package jobs

import (
	"context"

	"library-service-backend/internal/logger"
)

// RunExpirySweep asks the processor about every PENDING payment session and
// marks the ones it reports expired.
func (jr *JobRunner) RunExpirySweep() {
	jr.runWithRecovery("RunExpirySweep", func() {
		ctx := context.Background()

		expired, err := jr.services.Payment.RunExpirySweep(ctx)
		if err != nil {
			logger.Error("Expiry sweep failed", "error", err)
			return
		}
		if expired > 0 {
			logger.Info("Expiry sweep marked payments expired", "count", expired)
		}
	})
}
