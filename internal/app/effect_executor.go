// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thiagorusso-10/contagemdeculto/internal/core/effects"
	"github.com/thiagorusso-10/contagemdeculto/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor against the entity cache,
// the notifier and the refresh loop.
type DefaultEffectExecutor struct {
	cache    *EntityCache
	notifier secondary.Notifier
	refresh  func(ctx context.Context) error
	logger   *slog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor. refresh may be nil
// until the owning reconciler installs it.
func NewEffectExecutor(cache *EntityCache, notifier secondary.Notifier, logger *slog.Logger) *DefaultEffectExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultEffectExecutor{
		cache:    cache,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "effects")),
	}
}

// SetRefresh installs the function run for RefreshEffect.
func (e *DefaultEffectExecutor) SetRefresh(fn func(ctx context.Context) error) {
	e.refresh = fn
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.PatchEffect:
		if typed.Fn == nil {
			return fmt.Errorf("patch %q has no function", typed.Name)
		}
		e.cache.Apply(typed.Name, typed.Fn)
		return nil
	case effects.NoticeEffect:
		e.executeNotice(ctx, typed)
		return nil
	case effects.RefreshEffect:
		if e.refresh == nil {
			return nil
		}
		return e.refresh(ctx)
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	case effects.NoEffect:
		return nil
	case effects.LogEffect:
		e.executeLog(ctx, typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeNotice(ctx context.Context, eff effects.NoticeEffect) {
	if e.notifier == nil {
		return
	}
	level := secondary.NoticeInfo
	if eff.Level == "error" {
		level = secondary.NoticeError
	}
	e.notifier.Notify(ctx, secondary.Notice{Level: level, Message: eff.Message, Err: eff.Err})
}

func (e *DefaultEffectExecutor) executeLog(ctx context.Context, eff effects.LogEffect) {
	var level slog.Level
	switch eff.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	attrs := make([]any, 0, len(eff.Fields)*2)
	for k, v := range eff.Fields {
		attrs = append(attrs, k, v)
	}
	e.logger.Log(ctx, level, eff.Message, attrs...)
}
