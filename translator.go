package medglot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Translator performs per-field translation against the generation service,
// applying the shape contract declared in the field schema.
type Translator struct {
	client Client
	target Language
	source Language
	ledger UsageLedger // optional; appends are best-effort
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithTranslatorLedger sets the usage ledger for service invocations.
func WithTranslatorLedger(l UsageLedger) TranslatorOption {
	return func(t *Translator) {
		t.ledger = l
	}
}

// WithSourceLanguage overrides the source language (default: English).
func WithSourceLanguage(lang Language) TranslatorOption {
	return func(t *Translator) {
		t.source = lang
	}
}

// NewTranslator creates a Translator for the given target language.
func NewTranslator(client Client, target Language, opts ...TranslatorOption) *Translator {
	t := &Translator{
		client: client,
		target: target,
		source: SourceLanguage,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// TranslateField translates one field value. Absent values pass through
// without a service call. The returned value carries the field's declared
// shape; callers still run it through ValidateField before accepting it.
func (t *Translator) TranslateField(ctx context.Context, field Field, value any, keywords *KeywordSet, routeKey string) (any, error) {
	if isEmptyValue(value) {
		return value, nil
	}

	sourceText, err := encodeFieldValue(field, value)
	if err != nil {
		return nil, &FieldError{RouteKey: routeKey, Field: field.Name, Cause: err}
	}

	res, err := t.client.Generate(ctx, GenerateRequest{
		Instructions: t.buildInstructions(field, sourceText, keywords),
	})
	if err != nil {
		return nil, &FieldError{RouteKey: routeKey, Field: field.Name, Cause: err}
	}

	if t.ledger != nil {
		// Ledger failures never abort a translation.
		_ = t.ledger.Append(LedgerEntry{
			Category: t.target.Code + "-content",
			RouteKey: routeKey,
			Tokens:   res.TotalTokens,
		})
	}

	translated, err := decodeFieldValue(field, res.Text)
	if err != nil {
		return nil, &FieldError{RouteKey: routeKey, Field: field.Name, Cause: err}
	}
	return translated, nil
}

// encodeFieldValue renders a field value as the text handed to the service.
// Scalars go through verbatim; lists are serialized as JSON.
func encodeFieldValue(field Field, value any) (string, error) {
	if field.Kind == KindString {
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("field %s: expected string, got %T", field.Name, value)
		}
		return s, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("field %s: %w", field.Name, err)
	}
	return string(data), nil
}

// decodeFieldValue parses the service response back into the field's
// declared shape. Lists must parse as JSON arrays; anything else fails.
func decodeFieldValue(field Field, text string) (any, error) {
	text = strings.TrimSpace(text)
	switch field.Kind {
	case KindString:
		return text, nil
	case KindStringList:
		var out []string
		if err := json.Unmarshal([]byte(text), &out); err != nil {
			return nil, fmt.Errorf("%w: not a string array: %v", ErrInvalidFormat, err)
		}
		return out, nil
	case KindObjectList:
		var out []map[string]any
		if err := json.Unmarshal([]byte(text), &out); err != nil {
			return nil, fmt.Errorf("%w: not an object array: %v", ErrInvalidFormat, err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidFormat, field.Kind)
}

// buildInstructions assembles the single system-role instruction for one
// field. The shape contract for every declared field is spelled out so the
// service preserves structure exactly.
func (t *Translator) buildInstructions(field Field, sourceText string, keywords *KeywordSet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Translate the given %s medicine content into %s (use simple and commonly understandable words in %s), preserving natural %s text flow.\n",
		t.source.Name, t.target.Name, t.target.Script, t.target.Name)
	b.WriteString("Maintain the structure of the original content exactly: if the content is an array, return an array; if it is a string, return a string; if it is an array of objects, return an array of objects.\n")
	b.WriteString("Do not explain any word, heading, or FAQ, and do not alter the meaning.\n")
	b.WriteString("If a paragraph consists of a single word, translate it directly without adding anything.\n")
	b.WriteString("Keywords must fit naturally in the translated text without changing the context.\n")
	b.WriteString("Do not translate this prompt itself.\n")

	b.WriteString("\nThe content belongs to the field \"" + field.Name + "\". ")
	b.WriteString(shapeInstruction(field))
	b.WriteString("\n\nShape contract for all fields, should any appear inside the content:\n")
	for _, f := range Fields {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, shapeInstruction(f))
	}
	b.WriteString("For any key not listed above, return it in its original format with translation.\n")

	b.WriteString("\nDo not add any words like json, markdown, or template literals before or after the content.\n")
	b.WriteString("Do not wrap the output in code fences or quotes. Do not add extra spaces or new lines.\n")

	fmt.Fprintf(&b, "\nKeywords: %s\n", keywords.PromptText())
	fmt.Fprintf(&b, "Text to translate: %s", sourceText)

	return b.String()
}

// shapeInstruction phrases one field's contract for the prompt.
func shapeInstruction(f Field) string {
	switch f.Kind {
	case KindStringList:
		return "return an array of strings."
	case KindObjectList:
		if len(f.Protected) > 0 {
			return fmt.Sprintf("return an array of objects; do not translate the value of the %s key, copy it verbatim.", quoteList(f.Protected))
		}
		return "return an array of objects."
	default:
		if f.HTML {
			return "return a string with the attached tags preserved."
		}
		return "return a string."
	}
}

func quoteList(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "'" + k + "'"
	}
	return strings.Join(quoted, ", ")
}
