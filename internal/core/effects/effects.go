// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "github.com/thiagorusso-10/contagemdeculto/internal/core/attendance"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// LogEffect represents a logging operation.
type LogEffect struct {
	Level   string // "debug", "info", "warn" or "error"
	Message string
	Fields  map[string]any
}

func (e LogEffect) EffectType() string { return "log" }

// PatchEffect is a functional update of the entity cache. Fn receives
// whatever snapshot is current when the patch is applied, not the one the
// patch was planned against.
type PatchEffect struct {
	Name string // e.g. "add report tmp-1"
	Fn   func(attendance.Snapshot) attendance.Snapshot
}

func (e PatchEffect) EffectType() string { return "patch" }

// NoticeEffect surfaces a message to the user.
type NoticeEffect struct {
	Level   string // "info" or "error"
	Message string
	Err     error
}

func (e NoticeEffect) EffectType() string { return "notice" }

// RefreshEffect requests a full reload of every collection from the remote store.
type RefreshEffect struct {
	Reason string
}

func (e RefreshEffect) EffectType() string { return "refresh" }

// CompositeEffect holds multiple effects to be executed in sequence.
type CompositeEffect struct {
	Effects []Effect
}

func (e CompositeEffect) EffectType() string { return "composite" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }
