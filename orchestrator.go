package medglot

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// OutcomeStatus is the terminal state of one record's run.
type OutcomeStatus int

const (
	// OutcomeDone means every field translated, validated, and persisted.
	OutcomeDone OutcomeStatus = iota
	// OutcomeSkipped means the gate stopped the record before translation.
	OutcomeSkipped
	// OutcomeFailed means keyword resolution, a field, or persistence
	// failed; nothing was written.
	OutcomeFailed
)

// Outcome reports how one candidate finished.
type Outcome struct {
	RouteKey string
	Status   OutcomeStatus
	Gate     GateStatus // set when Status is OutcomeSkipped
	Err      error      // set when Status is OutcomeFailed
}

// RunReport summarizes a full pipeline run.
type RunReport struct {
	Done    int
	Skipped int
	Failed  int
	// IncompleteSources lists route keys whose source record is missing
	// required fields, for the remediation report.
	IncompleteSources []string
	Outcomes          []Outcome
}

// Orchestrator drives the per-record translation state machine: gate,
// keyword resolution, the sequential field loop, and atomic persistence.
// Records are processed strictly one at a time; a failure anywhere aborts
// only that record.
type Orchestrator struct {
	store      Store
	gate       *Gate
	keywords   *KeywordProvider
	translator *Translator
	target     Language
	source     Language
	ledger     UsageLedger // optional; incident entries
	log        *zap.Logger
}

// OrchestratorOption is a functional option for configuring the Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLedger sets the ledger used for usage and incident entries.
func WithLedger(l UsageLedger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.ledger = l
	}
}

// WithKeywordCacheOption plumbs a keyword cache into the provider.
func WithKeywordCacheOption(c KeywordCache) OrchestratorOption {
	return func(o *Orchestrator) {
		o.keywords.cache = c
	}
}

// WithLogger sets the progress logger.
func WithLogger(log *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.log = log
	}
}

// WithSource overrides the source language (default: English).
func WithSource(lang Language) OrchestratorOption {
	return func(o *Orchestrator) {
		o.source = lang
		o.gate = NewGate(o.store, lang, o.target)
		o.translator.source = lang
		o.keywords.source = lang
	}
}

// NewOrchestrator wires the pipeline for one target language.
func NewOrchestrator(store Store, client Client, target Language, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		target:     target,
		source:     SourceLanguage,
		gate:       NewGate(store, SourceLanguage, target),
		keywords:   NewKeywordProvider(store, client, target),
		translator: NewTranslator(client, target),
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	// The translator and keyword provider share the orchestrator's ledger.
	o.translator.ledger = o.ledger
	o.keywords.ledger = o.ledger
	return o
}

// Run processes every candidate in order and returns the aggregate report.
// Candidate resolution failures (unknown item codes) are per-record skips;
// only store-level failures outside the record loop abort the run.
func (o *Orchestrator) Run(ctx context.Context, candidates []Candidate) (*RunReport, error) {
	routeKeys, err := o.resolveCandidates(ctx, candidates)
	if err != nil {
		return nil, err
	}

	report := &RunReport{}
	for _, routeKey := range routeKeys {
		if routeKey == "" {
			report.Skipped++
			report.Outcomes = append(report.Outcomes, Outcome{Status: OutcomeSkipped, Gate: GateNoRoute})
			o.log.Warn("candidate resolves to no route key")
			continue
		}

		outcome := o.ProcessRecord(ctx, routeKey)
		report.Outcomes = append(report.Outcomes, outcome)

		switch outcome.Status {
		case OutcomeDone:
			report.Done++
			o.log.Info("record translated", zap.String("route", routeKey))
		case OutcomeSkipped:
			report.Skipped++
			if outcome.Gate == GateSourceIncomplete {
				report.IncompleteSources = append(report.IncompleteSources, routeKey)
			}
			o.log.Info("record skipped",
				zap.String("route", routeKey),
				zap.String("reason", outcome.Gate.String()))
		case OutcomeFailed:
			report.Failed++
			o.log.Error("record failed",
				zap.String("route", routeKey),
				zap.Error(outcome.Err))
		}
	}
	return report, nil
}

// resolveCandidates turns the candidate list into route keys, preserving
// order. Item codes are resolved through the store in one batch; candidates
// that already carry a route key pass through.
func (o *Orchestrator) resolveCandidates(ctx context.Context, candidates []Candidate) ([]string, error) {
	var codes []string
	for _, c := range candidates {
		if c.RouteKey == "" && c.ItemCode != "" {
			codes = append(codes, c.ItemCode)
		}
	}

	routeMap := map[string]string{}
	if len(codes) > 0 {
		var err error
		routeMap, err = o.store.RouteKeys(ctx, codes)
		if err != nil {
			return nil, err
		}
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		if c.RouteKey != "" {
			out[i] = c.RouteKey
			continue
		}
		out[i] = routeMap[c.ItemCode]
	}
	return out, nil
}

// ProcessRecord runs the full state machine for one route key:
// gate, keyword resolution, the ordered field loop, and the atomic commit.
func (o *Orchestrator) ProcessRecord(ctx context.Context, routeKey string) Outcome {
	gated, err := o.gate.Evaluate(ctx, routeKey)
	if err != nil {
		return Outcome{RouteKey: routeKey, Status: OutcomeFailed, Err: err}
	}
	if gated.Status != GateReady {
		return Outcome{RouteKey: routeKey, Status: OutcomeSkipped, Gate: gated.Status}
	}

	keywords, err := o.keywords.Resolve(ctx, routeKey)
	if err != nil {
		return Outcome{RouteKey: routeKey, Status: OutcomeFailed, Err: err}
	}

	translated, err := o.translateFields(ctx, gated.Source, keywords)
	if err != nil {
		// All accumulated translations are discarded; one incident entry
		// identifies the offending field. Service failures are not format
		// incidents and stay out of that ledger.
		var fieldErr *FieldError
		if errors.As(err, &fieldErr) && errors.Is(err, ErrInvalidFormat) && o.ledger != nil {
			_ = o.ledger.Append(LedgerEntry{
				Category: "invalid-format-" + o.target.Code,
				RouteKey: routeKey,
				Note:     fieldErr.Field,
			})
		}
		return Outcome{RouteKey: routeKey, Status: OutcomeFailed, Err: err}
	}

	if err := o.store.UpdateTranslation(ctx, routeKey, o.target.Code, translated); err != nil {
		return Outcome{RouteKey: routeKey, Status: OutcomeFailed, Err: &PersistError{RouteKey: routeKey, Cause: err}}
	}
	return Outcome{RouteKey: routeKey, Status: OutcomeDone}
}

// translateFields walks the declared field order, translating and validating
// one field at a time. The first failure short-circuits the loop. On success
// the returned map holds every declared field plus the shadow provenance
// columns.
func (o *Orchestrator) translateFields(ctx context.Context, source *Record, keywords *KeywordSet) (map[string]any, error) {
	out := make(map[string]any, len(Fields))

	for _, field := range Fields {
		value := source.Fields[field.Name]
		translated, err := o.translator.TranslateField(ctx, field, value, keywords, source.RouteKey)
		if err != nil {
			return nil, err
		}
		if !ValidateField(field, value, translated) {
			return nil, &FieldError{RouteKey: source.RouteKey, Field: field.Name, Cause: ErrInvalidFormat}
		}
		out[field.Name] = translated
	}

	for _, field := range ShadowFields() {
		out[field.Shadow] = out[field.Name]
	}
	return out, nil
}
