package usecase

import (
	"context"

	"SignalPulse/internal/domain/models"
	drepo "SignalPulse/internal/domain/repository"
	domsvc "SignalPulse/internal/domain/service"
	pcache "SignalPulse/pkg/cache"
	applogger "SignalPulse/pkg/logger"
)

// WeightArchive persists learned indicator weights so a restart does
// not reset the engine to defaults. Vectors are written without
// expiration; Restore seeds the engine once at startup.
type WeightArchive struct {
	cache pcache.Service
	l     *applogger.Logger
}

func NewWeightArchive(cache pcache.Service, l *applogger.Logger) *WeightArchive {
	return &WeightArchive{cache: cache, l: l}
}

func weightKey(symbol string, tf drepo.Timeframe) string {
	return pcache.Key("weights", symbol, tf)
}

// Save stores the weight vector for a series.
func (a *WeightArchive) Save(ctx context.Context, symbol string, tf drepo.Timeframe, w models.WeightVector) {
	if len(w) == 0 {
		return
	}
	if err := a.cache.Set(ctx, weightKey(symbol, tf), w, 0); err != nil && a.l != nil {
		a.l.Warn("weight archive save failed",
			applogger.String("symbol", symbol),
			applogger.String("tf", string(tf)),
			applogger.Error(err))
	}
}

// Restore seeds the engine with every archived vector for the
// configured symbol and timeframe set.
func (a *WeightArchive) Restore(ctx context.Context, symbols []string, tfs []drepo.Timeframe, eng domsvc.SignalEngine) {
	restored := 0
	for _, symbol := range symbols {
		for _, tf := range tfs {
			var w models.WeightVector
			err := a.cache.Get(ctx, weightKey(symbol, tf), &w)
			if err != nil {
				continue
			}
			if len(w) == 0 {
				continue
			}
			eng.SeedWeights(symbol, tf, w)
			restored++
		}
	}
	if a.l != nil && restored > 0 {
		a.l.Info("weight vectors restored", applogger.Int("count", restored))
	}
}
