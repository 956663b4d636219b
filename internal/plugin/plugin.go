// Package plugin implements PluginHost: staged plugin initialization with
// a per-plugin failure policy. Init runs at config time, against the
// builder's config value B, before any shell state exists; PostInit runs
// once the shell C and its state store are constructed. Parametrizing over
// B and C keeps this package below package shell in the dependency order,
// the same trick hooks.Registry and state.Handler use.
package plugin

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/coshell/coshell/internal/state"
)

// FailMode selects what a plugin failure does to shell startup.
type FailMode int

const (
	// Warn logs the failure and continues with the remaining plugins.
	Warn FailMode = iota
	// Abort terminates shell startup.
	Abort
)

// Meta describes a plugin for the `help` builtin.
type Meta struct {
	Name        string
	Description string
	Help        string
}

// Plugin is one pluggable extension. B is the shell builder's config
// type; C is the shell-reference type.
type Plugin[B any, C any] interface {
	Meta() Meta
	FailMode() FailMode
	// Init runs during shell construction, before state is finalized.
	Init(cfg *B) error
	// PostInit runs after the shell and store are built.
	PostInit(ctx C, store *state.Store) error
}

// Instance pairs a registered plugin with its per-session id, surfaced by
// the `help` builtin.
type Instance[B any, C any] struct {
	ID     string
	Plugin Plugin[B, C]
}

// Host applies registered plugins in registration order.
type Host[B any, C any] struct {
	plugins []Instance[B, C]
}

// NewHost returns an empty Host.
func NewHost[B any, C any]() *Host[B, C] {
	return &Host[B, C]{}
}

// Register adds p to the host and returns its instance id.
func (h *Host[B, C]) Register(p Plugin[B, C]) string {
	inst := Instance[B, C]{ID: uuid.NewString(), Plugin: p}
	h.plugins = append(h.plugins, inst)
	return inst.ID
}

// Plugins returns every registered plugin instance, in registration order.
func (h *Host[B, C]) Plugins() []Instance[B, C] {
	out := make([]Instance[B, C], len(h.plugins))
	copy(out, h.plugins)
	return out
}

// Init runs every plugin's Init against cfg. A Warn plugin's failure is
// logged and skipped; an Abort plugin's failure stops startup.
func (h *Host[B, C]) Init(cfg *B) error {
	for _, inst := range h.plugins {
		if err := inst.Plugin.Init(cfg); err != nil {
			if err := h.fail(inst, err); err != nil {
				return err
			}
		}
	}
	return nil
}

// PostInit runs every plugin's PostInit against the constructed shell.
func (h *Host[B, C]) PostInit(ctx C, store *state.Store) error {
	for _, inst := range h.plugins {
		if err := inst.Plugin.PostInit(ctx, store); err != nil {
			if err := h.fail(inst, err); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Host[B, C]) fail(inst Instance[B, C], err error) error {
	meta := inst.Plugin.Meta()
	if inst.Plugin.FailMode() == Abort {
		return fmt.Errorf("plugin %s: %w", meta.Name, err)
	}
	log.Printf("plugin %s failed: %v", meta.Name, err)
	return nil
}
