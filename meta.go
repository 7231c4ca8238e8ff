package medglot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MetaGenerator produces the SEO meta title and description for a record in
// the target language and persists them. Separate from the translation
// pipeline: it runs against records whose content already exists.
type MetaGenerator struct {
	store  Store
	client Client
	target Language
	source Language
	ledger UsageLedger // optional
}

// NewMetaGenerator creates a MetaGenerator for the target language.
func NewMetaGenerator(store Store, client Client, target Language, ledger UsageLedger) *MetaGenerator {
	return &MetaGenerator{
		store:  store,
		client: client,
		target: target,
		source: SourceLanguage,
		ledger: ledger,
	}
}

// metaResponse is the structured object the service returns.
type metaResponse struct {
	MetaDescription string `json:"meta_description"`
}

// Generate builds and persists the meta title and description for routeKey.
func (g *MetaGenerator) Generate(ctx context.Context, routeKey string) error {
	targetName, err := g.store.MedicineName(ctx, routeKey, g.target.Code)
	if err != nil {
		return fmt.Errorf("target name lookup for %s: %w", routeKey, err)
	}
	sourceName, err := g.store.MedicineName(ctx, routeKey, g.source.Code)
	if err != nil {
		return fmt.Errorf("source name lookup for %s: %w", routeKey, err)
	}

	title := fmt.Sprintf("%s (%s uses in %s)", targetName, sourceName, g.target.Name)
	if g.target.MetaSuffix != "" {
		title += " – " + g.target.MetaSuffix
	}

	res, err := g.client.Generate(ctx, GenerateRequest{
		Instructions: g.buildInstructions(targetName),
		Structured:   true,
	})
	if err != nil {
		return err
	}

	if g.ledger != nil {
		_ = g.ledger.Append(LedgerEntry{
			Category: g.target.Code + "-meta-desc",
			RouteKey: routeKey,
			Tokens:   res.TotalTokens,
		})
	}

	var parsed metaResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(res.Text)), &parsed); err != nil {
		return fmt.Errorf("malformed meta response: %w", err)
	}
	if parsed.MetaDescription == "" {
		return fmt.Errorf("service returned no meta description for %s", routeKey)
	}

	return g.store.UpdateMeta(ctx, routeKey, g.target.Code, title, parsed.MetaDescription)
}

func (g *MetaGenerator) buildInstructions(medicineName string) string {
	return fmt.Sprintf(
		"Create a meta description in %s (max 150-160 characters) for the medicine %s. Use simple and clear %s in %s. "+
			"Briefly mention its main medical use, key benefits, and important precautions. "+
			"Make it suitable for %s-speaking users searching for medicine information online. "+
			"Return a JSON object with the single key \"meta_description\".",
		g.target.Name, medicineName, g.target.Name, g.target.Script, g.target.Name)
}
