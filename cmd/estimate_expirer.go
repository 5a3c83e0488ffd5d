package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ospreyBack/internal/services"
)

const estimateExpirerTimeout = 30 * time.Second

func startEstimateExpirer(ctx context.Context, svc *services.EstimateService, interval time.Duration, log *zap.Logger) {
	if svc == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		run := func() {
			runCtx, cancel := context.WithTimeout(ctx, estimateExpirerTimeout)
			defer cancel()

			expired, err := svc.ExpirePending(runCtx)
			if err != nil {
				log.Error("estimate expirer: failed to expire estimates", zap.Error(err))
				return
			}
			if expired > 0 {
				log.Info("estimate expirer: expired pending estimates", zap.Int64("count", expired))
			}
		}

		run()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}
