package config

import (
	"context"
	"math"
	"strconv"
	"sync/atomic"

	"langcover/pkg/store"
)

// Provider defines the interface for accessing unified configuration.
type Provider interface {
	// Threshold is the default coverage ratio for detection requests.
	Threshold(ctx context.Context) float64
	// SetThreshold persists a new default threshold.
	SetThreshold(ctx context.Context, v float64) error
	// ResetThreshold drops the runtime override, restoring the configured value.
	ResetThreshold(ctx context.Context) error
	// TableSource names where the language table was loaded from.
	TableSource(ctx context.Context) string
}

// UnifiedProvider implements Provider by bridging static Config and persistent Store.
// Without a store, runtime overrides live in memory only.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore

	// threshold holds math.Float64bits of the in-memory default.
	threshold atomic.Uint64
}

// NewProvider creates a new UnifiedProvider. st may be nil, in which case
// only the static configuration is served.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	p := &UnifiedProvider{
		base:  base,
		store: st,
	}
	p.threshold.Store(math.Float64bits(base.Detect.Threshold))
	return p
}

func (p *UnifiedProvider) Threshold(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyThreshold, math.Float64frombits(p.threshold.Load()))
}

func (p *UnifiedProvider) SetThreshold(ctx context.Context, v float64) error {
	if p.store == nil {
		p.threshold.Store(math.Float64bits(v))
		return nil
	}
	return p.store.SetState(ctx, KeyThreshold, strconv.FormatFloat(v, 'f', -1, 64))
}

func (p *UnifiedProvider) ResetThreshold(ctx context.Context) error {
	p.threshold.Store(math.Float64bits(p.base.Detect.Threshold))
	if p.store == nil {
		return nil
	}
	return p.store.DeleteState(ctx, KeyThreshold)
}

func (p *UnifiedProvider) TableSource(ctx context.Context) string {
	return p.base.Table.Source
}

// --- Helpers ---

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}
