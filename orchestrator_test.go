package medglot

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeStore is an in-memory Store used across the package tests.
type fakeStore struct {
	routes     map[string]string
	records    map[string]map[string]any
	keywords   map[string]*KeywordSet
	updates    int
	lastUpdate map[string]any
	updateErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		routes:   make(map[string]string),
		records:  make(map[string]map[string]any),
		keywords: make(map[string]*KeywordSet),
	}
}

func rkey(routeKey, language string) string {
	return routeKey + "|" + language
}

func (s *fakeStore) RouteKeys(ctx context.Context, itemCodes []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, code := range itemCodes {
		if route, ok := s.routes[code]; ok {
			out[code] = route
		}
	}
	return out, nil
}

func (s *fakeStore) Record(ctx context.Context, routeKey, language string) (*Record, error) {
	fields, ok := s.records[rkey(routeKey, language)]
	if !ok {
		return nil, ErrNotFound
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Record{RouteKey: routeKey, Language: language, Fields: copied}, nil
}

func (s *fakeStore) Keywords(ctx context.Context, routeKey, language string) (*KeywordSet, error) {
	ks, ok := s.keywords[rkey(routeKey, language)]
	if !ok || ks.Empty() {
		return nil, ErrNotFound
	}
	return ks, nil
}

func (s *fakeStore) SaveKeywords(ctx context.Context, routeKey, language string, ks *KeywordSet) error {
	s.keywords[rkey(routeKey, language)] = ks
	return nil
}

func (s *fakeStore) MedicineName(ctx context.Context, routeKey, language string) (string, error) {
	fields, ok := s.records[rkey(routeKey, language)]
	if !ok {
		return "", ErrNotFound
	}
	name, _ := fields["name"].(string)
	if name == "" {
		return "", ErrNotFound
	}
	return name, nil
}

func (s *fakeStore) UpdateTranslation(ctx context.Context, routeKey, language string, fields map[string]any) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	row, ok := s.records[rkey(routeKey, language)]
	if !ok {
		return ErrNotFound
	}
	for k, v := range fields {
		row[k] = v
	}
	s.updates++
	s.lastUpdate = fields
	return nil
}

func (s *fakeStore) IncompleteRoutes(ctx context.Context, routeKeys []string, language string) ([]string, error) {
	var out []string
	for _, route := range routeKeys {
		fields, ok := s.records[rkey(route, language)]
		if !ok {
			continue
		}
		rec := &Record{Fields: fields}
		if !rec.Complete() {
			out = append(out, route)
		}
	}
	return out, nil
}

func (s *fakeStore) UpdateMeta(ctx context.Context, routeKey, language, title, description string) error {
	row, ok := s.records[rkey(routeKey, language)]
	if !ok {
		return ErrNotFound
	}
	row["meta_title"] = title
	row["meta_description"] = description
	return nil
}

// fakeClient is a scripted generation client.
type fakeClient struct {
	respond   func(req GenerateRequest) (*GenerateResult, error)
	callCount int
	requests  []GenerateRequest
}

func (c *fakeClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	c.callCount++
	c.requests = append(c.requests, req)
	return c.respond(req)
}

const keywordJSON = `{"primary_keywords":["fever"],"secondary_keywords":["infection"],"mostly_searched_words":["antibiotic"]}`

// echoClient answers keyword requests with a fixed set and translation
// requests by echoing the source text, which always passes validation.
func echoClient() *fakeClient {
	return &fakeClient{respond: func(req GenerateRequest) (*GenerateResult, error) {
		if req.Structured {
			return &GenerateResult{Text: keywordJSON, TotalTokens: 11}, nil
		}
		return &GenerateResult{Text: sourceTextOf(req), TotalTokens: 7}, nil
	}}
}

func sourceTextOf(req GenerateRequest) string {
	const marker = "Text to translate: "
	i := strings.LastIndex(req.Instructions, marker)
	if i < 0 {
		return ""
	}
	return req.Instructions[i+len(marker):]
}

// fakeLedger records entries in memory.
type fakeLedger struct {
	entries []LedgerEntry
	err     error
}

func (l *fakeLedger) Append(e LedgerEntry) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, e)
	return nil
}

func (l *fakeLedger) byCategory(category string) []LedgerEntry {
	var out []LedgerEntry
	for _, e := range l.entries {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

const testRoute = "augmentin-625-duo-tablet-10s"

// completeSourceFields returns a complete English record with seven
// populated fields covering every shape kind.
func completeSourceFields() map[string]any {
	return map[string]any{
		"name":         "Augmentin 625 Duo Tablet",
		"introduction": "<p>Augmentin 625 Duo is a penicillin-type antibiotic.</p>",
		"how_it_works": "It kills bacteria by blocking cell wall formation.",
		"how_to_use":   []string{"Take with food.", "Do not skip doses."},
		"benefits":     []string{"Treats bacterial infections."},
		"side_effects": []string{"Nausea", "Diarrhoea"},
		"safety_advice": []map[string]any{
			{"risk": "high", "warning": "Avoid alcohol while on this medicine."},
		},
	}
}

// populatedFieldCount is the number of non-null fields in completeSourceFields.
const populatedFieldCount = 7

func bengali(t *testing.T) Language {
	t.Helper()
	lang, ok := LookupLanguage("bengali")
	if !ok {
		t.Fatal("bengali language missing")
	}
	return lang
}

func newTestStore() *fakeStore {
	st := newFakeStore()
	st.records[rkey(testRoute, "english")] = completeSourceFields()
	st.records[rkey(testRoute, "bengali")] = map[string]any{}
	return st
}

func TestOrchestrator_TranslatesCompleteRecord(t *testing.T) {
	st := newTestStore()
	client := echoClient()
	led := &fakeLedger{}

	orc := NewOrchestrator(st, client, bengali(t), WithLedger(led))

	report, err := orc.Run(context.Background(), []Candidate{{RouteKey: testRoute}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Done != 1 || report.Skipped != 0 || report.Failed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	// One keyword call plus one call per populated field.
	wantCalls := populatedFieldCount + 1
	if client.callCount != wantCalls {
		t.Errorf("expected %d service calls, got %d", wantCalls, client.callCount)
	}

	if st.updates != 1 {
		t.Errorf("expected exactly one commit, got %d", st.updates)
	}

	// The commit carries every declared field plus the shadow columns.
	if len(st.lastUpdate) != len(Fields)+len(ShadowFields()) {
		t.Errorf("commit has %d columns, want %d", len(st.lastUpdate), len(Fields)+len(ShadowFields()))
	}
	for _, f := range ShadowFields() {
		if _, ok := st.lastUpdate[f.Shadow]; !ok {
			t.Errorf("commit missing shadow column %s", f.Shadow)
		}
	}

	// N content entries plus one keyword entry.
	if got := len(led.entries); got != populatedFieldCount+1 {
		t.Errorf("expected %d ledger entries, got %d", populatedFieldCount+1, got)
	}
	if got := len(led.byCategory("bengali-content")); got != populatedFieldCount {
		t.Errorf("expected %d content entries, got %d", populatedFieldCount, got)
	}
	if got := len(led.byCategory("bengali")); got != 1 {
		t.Errorf("expected 1 keyword entry, got %d", got)
	}
}

func TestOrchestrator_IdempotentOnCompleteTarget(t *testing.T) {
	st := newTestStore()
	st.records[rkey(testRoute, "bengali")] = completeSourceFields()
	client := echoClient()

	orc := NewOrchestrator(st, client, bengali(t))

	report, err := orc.Run(context.Background(), []Candidate{{RouteKey: testRoute}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Skipped != 1 {
		t.Fatalf("expected skip, got %+v", report)
	}
	if client.callCount != 0 {
		t.Errorf("expected zero service calls, got %d", client.callCount)
	}
	if st.updates != 0 {
		t.Errorf("expected zero writes, got %d", st.updates)
	}
}

func TestOrchestrator_IncompleteSourceNeverTranslated(t *testing.T) {
	st := newTestStore()
	src := completeSourceFields()
	src["benefits"] = nil
	st.records[rkey(testRoute, "english")] = src
	// Target entirely empty: still must not translate.
	client := echoClient()

	orc := NewOrchestrator(st, client, bengali(t))

	report, err := orc.Run(context.Background(), []Candidate{{RouteKey: testRoute}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Skipped != 1 {
		t.Fatalf("expected skip, got %+v", report)
	}
	if client.callCount != 0 {
		t.Errorf("expected zero service calls, got %d", client.callCount)
	}
	if len(report.IncompleteSources) != 1 || report.IncompleteSources[0] != testRoute {
		t.Errorf("expected incomplete-source listing, got %v", report.IncompleteSources)
	}
}

func TestOrchestrator_AbortsRecordOnInvalidField(t *testing.T) {
	st := newTestStore()
	led := &fakeLedger{}

	// Translation of the introduction comes back wrapped in a code fence.
	client := &fakeClient{respond: func(req GenerateRequest) (*GenerateResult, error) {
		if req.Structured {
			return &GenerateResult{Text: keywordJSON, TotalTokens: 11}, nil
		}
		src := sourceTextOf(req)
		if strings.Contains(req.Instructions, `"introduction"`) {
			return &GenerateResult{Text: "```json{\"x\":1}```", TotalTokens: 7}, nil
		}
		return &GenerateResult{Text: src, TotalTokens: 7}, nil
	}}

	orc := NewOrchestrator(st, client, bengali(t), WithLedger(led))

	report, err := orc.Run(context.Background(), []Candidate{{RouteKey: testRoute}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Failed != 1 {
		t.Fatalf("expected failure, got %+v", report)
	}
	if st.updates != 0 {
		t.Errorf("expected zero writes, got %d", st.updates)
	}

	incidents := led.byCategory("invalid-format-bengali")
	if len(incidents) != 1 {
		t.Fatalf("expected one incident entry, got %d", len(incidents))
	}
	if incidents[0].RouteKey != testRoute || incidents[0].Note != "introduction" {
		t.Errorf("unexpected incident entry: %+v", incidents[0])
	}

	var fieldErr *FieldError
	if !errors.As(report.Outcomes[0].Err, &fieldErr) || fieldErr.Field != "introduction" {
		t.Errorf("expected FieldError for introduction, got %v", report.Outcomes[0].Err)
	}
}

func TestOrchestrator_KeywordFailureFatalForRecord(t *testing.T) {
	st := newTestStore()
	client := &fakeClient{respond: func(req GenerateRequest) (*GenerateResult, error) {
		if req.Structured {
			return nil, &ProviderError{Message: "boom"}
		}
		return &GenerateResult{Text: sourceTextOf(req)}, nil
	}}

	orc := NewOrchestrator(st, client, bengali(t))

	report, err := orc.Run(context.Background(), []Candidate{{RouteKey: testRoute}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Failed != 1 {
		t.Fatalf("expected failure, got %+v", report)
	}
	var kwErr *KeywordError
	if !errors.As(report.Outcomes[0].Err, &kwErr) {
		t.Errorf("expected KeywordError, got %v", report.Outcomes[0].Err)
	}
	if st.updates != 0 {
		t.Errorf("expected zero writes, got %d", st.updates)
	}
	// Only the failed keyword call hit the service.
	if client.callCount != 1 {
		t.Errorf("expected 1 service call, got %d", client.callCount)
	}
}

func TestOrchestrator_FailureIsolatedPerRecord(t *testing.T) {
	st := newTestStore()
	st.routes["DD123"] = testRoute
	client := echoClient()

	orc := NewOrchestrator(st, client, bengali(t))

	report, err := orc.Run(context.Background(), []Candidate{
		{ItemCode: "UNKNOWN"}, // resolves to nothing
		{RouteKey: "missing-route"},
		{ItemCode: "DD123"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Done != 1 {
		t.Errorf("expected the last candidate to succeed, got %+v", report)
	}
	if report.Skipped != 2 {
		t.Errorf("expected two skips, got %+v", report)
	}
}

func TestOrchestrator_LedgerFailureNonFatal(t *testing.T) {
	st := newTestStore()
	client := echoClient()
	led := &fakeLedger{err: errors.New("disk full")}

	orc := NewOrchestrator(st, client, bengali(t), WithLedger(led))

	report, err := orc.Run(context.Background(), []Candidate{{RouteKey: testRoute}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Done != 1 {
		t.Fatalf("ledger failure must not abort the record: %+v", report)
	}
	if st.updates != 1 {
		t.Errorf("expected one commit, got %d", st.updates)
	}
}

func TestOrchestrator_PersistFailure(t *testing.T) {
	st := newTestStore()
	st.updateErr = errors.New("connection reset")
	client := echoClient()

	orc := NewOrchestrator(st, client, bengali(t))

	report, err := orc.Run(context.Background(), []Candidate{{RouteKey: testRoute}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Failed != 1 {
		t.Fatalf("expected failure, got %+v", report)
	}
	var persistErr *PersistError
	if !errors.As(report.Outcomes[0].Err, &persistErr) {
		t.Errorf("expected PersistError, got %v", report.Outcomes[0].Err)
	}
}

func TestOrchestrator_ProtectedSubkeySurvives(t *testing.T) {
	st := newTestStore()
	client := echoClient()

	orc := NewOrchestrator(st, client, bengali(t))

	report, err := orc.Run(context.Background(), []Candidate{{RouteKey: testRoute}})
	if err != nil || report.Done != 1 {
		t.Fatalf("expected success, got report=%+v err=%v", report, err)
	}

	advice, ok := st.lastUpdate["safety_advice"].([]map[string]any)
	if !ok || len(advice) != 1 {
		t.Fatalf("unexpected safety_advice: %#v", st.lastUpdate["safety_advice"])
	}
	if advice[0]["risk"] != "high" {
		t.Errorf("protected risk subkey changed: %v", advice[0]["risk"])
	}
}
