package medglot

import (
	"context"
	"errors"
)

// GateStatus is the outcome of the completeness gate for one candidate.
type GateStatus int

const (
	// GateReady means the source record is complete and the target still
	// needs translation.
	GateReady GateStatus = iota
	// GateNoRoute means the route key resolves to no source record.
	GateNoRoute
	// GateSourceIncomplete means the source record is missing required
	// fields; the record is eligible for the incomplete-source report.
	GateSourceIncomplete
	// GateTargetComplete means the target record already has every required
	// field; re-runs skip it (idempotence).
	GateTargetComplete
)

func (s GateStatus) String() string {
	switch s {
	case GateReady:
		return "ready"
	case GateNoRoute:
		return "no source record"
	case GateSourceIncomplete:
		return "source incomplete"
	case GateTargetComplete:
		return "target already complete"
	}
	return "unknown"
}

// GateResult carries the gate decision; Source is set only when Ready.
type GateResult struct {
	Status GateStatus
	Source *Record
}

// Gate decides whether a candidate record should be translated. Read-only:
// it never writes to the store.
type Gate struct {
	store  Store
	source Language
	target Language
}

// NewGate creates a completeness gate between a source and target language.
func NewGate(store Store, source, target Language) *Gate {
	return &Gate{store: store, source: source, target: target}
}

// Evaluate runs the gating checks for one route key. Only unexpected store
// failures produce an error; every expected condition maps to a GateStatus.
func (g *Gate) Evaluate(ctx context.Context, routeKey string) (*GateResult, error) {
	src, err := g.store.Record(ctx, routeKey, g.source.Code)
	if errors.Is(err, ErrNotFound) {
		return &GateResult{Status: GateNoRoute}, nil
	}
	if err != nil {
		return nil, err
	}
	if !src.Complete() {
		return &GateResult{Status: GateSourceIncomplete}, nil
	}

	dst, err := g.store.Record(ctx, routeKey, g.target.Code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if dst.Complete() {
		return &GateResult{Status: GateTargetComplete}, nil
	}

	return &GateResult{Status: GateReady, Source: src}, nil
}
