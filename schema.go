package medglot

// Field describes one translatable column of a content record.
type Field struct {
	Name string
	Kind Kind
	// Protected lists subkeys inside object-list items whose values must be
	// copied verbatim, never translated (e.g. the "risk" classifier).
	Protected []string
	// HTML marks scalar fields whose text carries markup ("string with
	// attached tags"); the translation must preserve the tag structure.
	HTML bool
	// Shadow names the provenance column that records the AI-assisted value
	// alongside the field itself. Empty for fields without one.
	Shadow string
}

// Fields is the full declared schema, in translation order. The order is
// fixed: prompts, the field loop, and the persistence statement all follow it.
var Fields = []Field{
	{Name: "name", Kind: KindString},
	{Name: "company", Kind: KindString},
	{Name: "composition", Kind: KindString},
	{Name: "sku_packaging", Kind: KindString},
	{Name: "introduction", Kind: KindString, HTML: true, Shadow: "gpt_introduction"},
	{Name: "benefits", Kind: KindStringList},
	{Name: "how_to_use", Kind: KindStringList, Shadow: "gpt_how_to_use"},
	{Name: "how_it_works", Kind: KindString, Shadow: "gpt_how_it_works"},
	{Name: "uses", Kind: KindStringList},
	{Name: "side_effects", Kind: KindStringList},
	{Name: "safety_advice", Kind: KindObjectList, Protected: []string{"risk"}, Shadow: "gpt_safety_advice"},
	{Name: "storage_advice", Kind: KindStringList},
	{Name: "special_precautions", Kind: KindStringList},
	{Name: "missed_a_dose", Kind: KindString, HTML: true},
	{Name: "drug_interaction", Kind: KindStringList},
	{Name: "food_interaction", Kind: KindStringList},
	{Name: "disease_explanation", Kind: KindString},
	{Name: "health_and_lifestyle", Kind: KindString},
	{Name: "sources", Kind: KindString, HTML: true},
	{Name: "disease_interaction", Kind: KindString, HTML: true},
	{Name: "meta_title", Kind: KindString},
	{Name: "meta_description", Kind: KindString},
	{Name: "patient_concern", Kind: KindObjectList},
	{Name: "usage", Kind: KindString},
	{Name: "patient_also_ask", Kind: KindObjectList},
	{Name: "product_information", Kind: KindString, HTML: true},
	{Name: "tips", Kind: KindStringList},
	{Name: "fact_box", Kind: KindString, HTML: true},
	{Name: "storage", Kind: KindString, HTML: true},
	{Name: "dosage", Kind: KindStringList},
	{Name: "synopsis", Kind: KindString, HTML: true},
}

// RequiredFields is the subset whose presence makes a record complete.
var RequiredFields = []string{
	"introduction",
	"how_it_works",
	"how_to_use",
	"benefits",
	"side_effects",
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// FieldByName looks up a field declaration by column name.
func FieldByName(name string) (Field, bool) {
	f, ok := fieldsByName[name]
	return f, ok
}

// ShadowFields returns the fields that carry a provenance column.
func ShadowFields() []Field {
	var out []Field
	for _, f := range Fields {
		if f.Shadow != "" {
			out = append(out, f)
		}
	}
	return out
}
