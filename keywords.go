package medglot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// KeywordProvider resolves the keyword hints for a (route key, language)
// pair, lazily generating them through the service when the store has none.
type KeywordProvider struct {
	store  Store
	client Client
	target Language
	source Language
	cache  KeywordCache // optional
	ledger UsageLedger  // optional
}

// KeywordOption is a functional option for configuring the KeywordProvider.
type KeywordOption func(*KeywordProvider)

// WithKeywordCache sets a read-through cache in front of the store lookup.
func WithKeywordCache(c KeywordCache) KeywordOption {
	return func(p *KeywordProvider) {
		p.cache = c
	}
}

// WithKeywordLedger sets the usage ledger for generation calls.
func WithKeywordLedger(l UsageLedger) KeywordOption {
	return func(p *KeywordProvider) {
		p.ledger = l
	}
}

// WithKeywordSource overrides the source language (default: English). The
// medicine-name fallback during generation reads the source row.
func WithKeywordSource(lang Language) KeywordOption {
	return func(p *KeywordProvider) {
		p.source = lang
	}
}

// NewKeywordProvider creates a KeywordProvider for the target language.
func NewKeywordProvider(store Store, client Client, target Language, opts ...KeywordOption) *KeywordProvider {
	p := &KeywordProvider{store: store, client: client, target: target, source: SourceLanguage}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve returns the keyword set for routeKey, generating and persisting it
// first if the store has none. Generation happens at most once: the set is
// re-read from the store after the write and no further retries are made.
func (p *KeywordProvider) Resolve(ctx context.Context, routeKey string) (*KeywordSet, error) {
	key := CacheKey(routeKey, p.target.Code)

	if p.cache != nil {
		if raw, ok := p.cache.Get(key); ok {
			var ks KeywordSet
			if err := json.Unmarshal([]byte(raw), &ks); err == nil && !ks.Empty() {
				return &ks, nil
			}
		}
	}

	ks, err := p.store.Keywords(ctx, routeKey, p.target.Code)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, &KeywordError{RouteKey: routeKey, Cause: err}
	}

	if ks.Empty() {
		if err := p.generate(ctx, routeKey); err != nil {
			return nil, &KeywordError{RouteKey: routeKey, Cause: err}
		}
		ks, err = p.store.Keywords(ctx, routeKey, p.target.Code)
		if err != nil {
			return nil, &KeywordError{RouteKey: routeKey, Cause: err}
		}
		if ks.Empty() {
			return nil, &KeywordError{RouteKey: routeKey, Cause: errors.New("generated keyword set is empty")}
		}
	}

	if p.cache != nil {
		if raw, err := json.Marshal(ks); err == nil {
			_ = p.cache.Set(key, string(raw))
		}
	}
	return ks, nil
}

// keywordResponse is the structured object the service returns.
type keywordResponse struct {
	PrimaryKeywords     []string `json:"primary_keywords"`
	SecondaryKeywords   []string `json:"secondary_keywords"`
	MostlySearchedWords []string `json:"mostly_searched_words"`
}

// generate asks the service for keywords and persists them.
func (p *KeywordProvider) generate(ctx context.Context, routeKey string) error {
	// The target row is usually still empty at this point, so fall back to
	// the source-language name when the target one is missing.
	name, err := p.store.MedicineName(ctx, routeKey, p.target.Code)
	if errors.Is(err, ErrNotFound) {
		name, err = p.store.MedicineName(ctx, routeKey, p.source.Code)
	}
	if err != nil {
		return fmt.Errorf("medicine name lookup: %w", err)
	}

	res, err := p.client.Generate(ctx, GenerateRequest{
		Instructions: p.buildInstructions(name),
		Structured:   true,
	})
	if err != nil {
		return err
	}

	if p.ledger != nil {
		_ = p.ledger.Append(LedgerEntry{
			Category: p.target.Code,
			RouteKey: routeKey,
			Tokens:   res.TotalTokens,
		})
	}

	var parsed keywordResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(res.Text)), &parsed); err != nil {
		return fmt.Errorf("malformed keyword response: %w", err)
	}

	ks := &KeywordSet{
		Primary:        parsed.PrimaryKeywords,
		Secondary:      parsed.SecondaryKeywords,
		MostlySearched: parsed.MostlySearchedWords,
	}
	if ks.Empty() {
		return errors.New("service returned no keywords")
	}

	return p.store.SaveKeywords(ctx, routeKey, p.target.Code, ks)
}

func (p *KeywordProvider) buildInstructions(medicineName string) string {
	return fmt.Sprintf(
		"Generate primary keywords, secondary keywords, and mostly searched words related to the disease, problem, or use in %s treated by the medicine %q. "+
			"Return a JSON object with the keys \"primary_keywords\", \"secondary_keywords\", and \"mostly_searched_words\", each an array of strings in %s. "+
			"Do not include explanations, comments, or extra text outside or inside the JSON object.",
		p.target.Name, medicineName, p.target.Script)
}
