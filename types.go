package medglot

import (
	"context"
	"encoding/json"
)

// Kind is the declared structural shape of a translatable field.
type Kind int

const (
	// KindString is a scalar string field (optionally carrying HTML tags).
	KindString Kind = iota
	// KindStringList is an array of strings.
	KindStringList
	// KindObjectList is an array of structured objects, possibly with
	// protected subkeys that must never be translated.
	KindObjectList
)

// A field value is one of: nil (absent), string, []string, or
// []map[string]any, matching its declared Kind. Values travel through the
// pipeline as `any`; the store decodes columns into these shapes and the
// validator enforces them on translated output.

// Record is one (route key, language) content row.
type Record struct {
	RouteKey string
	Language string
	Fields   map[string]any
}

// Complete reports whether every required field is present and non-empty.
func (r *Record) Complete() bool {
	if r == nil {
		return false
	}
	for _, name := range RequiredFields {
		if isEmptyValue(r.Fields[name]) {
			return false
		}
	}
	return true
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	case []map[string]any:
		return len(val) == 0
	}
	return false
}

// KeywordSet holds the language-specific keyword hints for one record.
// The store serializes it as JSON in the keyword-metadata column.
type KeywordSet struct {
	Primary        []string `json:"primary"`
	Secondary      []string `json:"secondary"`
	MostlySearched []string `json:"mostly_searched"`
}

// Empty reports whether the set carries no keywords at all.
func (k *KeywordSet) Empty() bool {
	return k == nil || (len(k.Primary) == 0 && len(k.Secondary) == 0 && len(k.MostlySearched) == 0)
}

// PromptText renders the set for inclusion in a generation instruction.
func (k *KeywordSet) PromptText() string {
	if k == nil {
		return "{}"
	}
	data, err := json.Marshal(k)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// GenerateRequest is one call to the external generation service.
type GenerateRequest struct {
	// Instructions is the single system-role message carrying the full
	// shape contract and the text to translate.
	Instructions string
	// Structured asks the service for a JSON object response.
	Structured bool
}

// GenerateResult is the service's reply.
type GenerateResult struct {
	Text        string
	TotalTokens int
}

// Client is the interface to the external generation service.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// LedgerEntry is one append-only usage or incident record.
type LedgerEntry struct {
	Category string // selects the per-category log, e.g. "bengali-content"
	RouteKey string
	Tokens   int
	Note     string // optional failure detail for incident entries
}

// UsageLedger appends entries to a durable per-category log. Appends are
// best-effort: callers ignore the returned error beyond diagnostics.
type UsageLedger interface {
	Append(entry LedgerEntry) error
}

// KeywordCache is an optional read-through cache in front of the store's
// keyword lookup. Keys are "<routeKey>:<language>", values serialized
// KeywordSet JSON.
type KeywordCache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// CacheKey builds the keyword-cache key for a (route key, language) pair.
func CacheKey(routeKey, language string) string {
	return routeKey + ":" + language
}

// Store is the data-store boundary for medicine content.
type Store interface {
	// RouteKeys maps item codes to route keys. Codes without a mapping are
	// absent from the result.
	RouteKeys(ctx context.Context, itemCodes []string) (map[string]string, error)

	// Record fetches the content row for (routeKey, language).
	// Returns ErrNotFound if no such row exists.
	Record(ctx context.Context, routeKey, language string) (*Record, error)

	// Keywords fetches the stored keyword set for (routeKey, language).
	// Returns ErrNotFound if the row or its keyword column is absent.
	Keywords(ctx context.Context, routeKey, language string) (*KeywordSet, error)

	// SaveKeywords stores the keyword set for (routeKey, language).
	SaveKeywords(ctx context.Context, routeKey, language string, ks *KeywordSet) error

	// MedicineName returns the name column for (routeKey, language).
	MedicineName(ctx context.Context, routeKey, language string) (string, error)

	// UpdateTranslation writes every declared field plus the shadow
	// provenance columns for (routeKey, language) in one atomic statement.
	UpdateTranslation(ctx context.Context, routeKey, language string, fields map[string]any) error

	// IncompleteRoutes returns the subset of routeKeys whose row in the
	// given language is missing one or more required fields.
	IncompleteRoutes(ctx context.Context, routeKeys []string, language string) ([]string, error)

	// UpdateMeta writes the meta title and description for (routeKey, language).
	UpdateMeta(ctx context.Context, routeKey, language, title, description string) error
}
