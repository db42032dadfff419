package ingest

import (
	"github.com/agentaudit/agentaudit/internal/model"
	"github.com/agentaudit/agentaudit/internal/pricing"
)

// Registry maps an agent kind to its Adapter, giving discovery and the CLI
// one place to dispatch on vendor instead of a type switch at every call
// site (SPEC_FULL §4.3 "Adapter registry").
type Registry map[model.AgentKind]Adapter

// NewRegistry builds the registry of all five vendor adapters. catalog is
// shared read-only pricing state (spec §5); adapters that never consult
// the catalog (OpenCode, Codex) simply ignore it.
func NewRegistry(catalog *pricing.Catalog) Registry {
	return Registry{
		model.AgentClaude:   &ClaudeAdapter{Catalog: catalog},
		model.AgentOpenCode: &OpenCodeAdapter{},
		model.AgentCodex:    &CodexAdapter{},
		model.AgentPi:       &PiAdapter{Catalog: catalog},
		model.AgentKodo:     &KodoAdapter{Catalog: catalog},
	}
}

// For returns the adapter for agent, and whether one is registered.
func (r Registry) For(agent model.AgentKind) (Adapter, bool) {
	a, ok := r[agent]
	return a, ok
}
