package medglot

import "testing"

func mustField(t *testing.T, name string) Field {
	t.Helper()
	f, ok := FieldByName(name)
	if !ok {
		t.Fatalf("field %s not declared", name)
	}
	return f
}

func TestValidateField_ScalarRules(t *testing.T) {
	field := mustField(t, "how_it_works")

	tests := []struct {
		name       string
		source     any
		translated any
		want       bool
	}{
		{"plain translation", "It kills bacteria.", "এটি ব্যাকটেরিয়া মেরে ফেলে।", true},
		{"fenced json payload", "It kills bacteria.", "```json{\"x\":1}```", false},
		{"json marker word", "It kills bacteria.", "json এটি ব্যাকটেরিয়া", false},
		{"marker case-insensitive", "It kills bacteria.", "JSON output", false},
		{"leading brace", "It kills bacteria.", "{\"text\":\"x\"}", false},
		{"trailing bracket", "It kills bacteria.", "ওষুধ]", false},
		{"brackets allowed when source has them", "[inline note]", "[টীকা]", true},
		{"list instead of string", "It kills bacteria.", []string{"x"}, false},
		{"marker inside larger word passes", "It kills bacteria.", "অ্যাজিথ্রোমাইসিন jsonx নয়", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateField(field, tt.source, tt.translated); got != tt.want {
				t.Errorf("ValidateField() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateField_StringList(t *testing.T) {
	field := mustField(t, "benefits")

	if !ValidateField(field, []string{"a", "b"}, []string{"ক", "খ"}) {
		t.Error("matching lists should validate")
	}
	if ValidateField(field, []string{"a"}, "not a list") {
		t.Error("scalar against list source should fail")
	}
	if ValidateField(field, []string{"a"}, nil) {
		t.Error("nil against populated source should fail")
	}
}

func TestValidateField_ProtectedSubkey(t *testing.T) {
	field := mustField(t, "safety_advice")

	source := []map[string]any{
		{"risk": "high", "warning": "Avoid alcohol."},
	}

	accepted := []map[string]any{
		{"risk": "high", "warning": "অ্যালকোহল এড়িয়ে চলুন।"},
	}
	if !ValidateField(field, source, accepted) {
		t.Error("verbatim risk subkey should validate")
	}

	translatedRisk := []map[string]any{
		{"risk": "উচ্চ", "warning": "অ্যালকোহল এড়িয়ে চলুন।"},
	}
	if ValidateField(field, source, translatedRisk) {
		t.Error("translated risk subkey must be rejected")
	}

	missingRisk := []map[string]any{
		{"warning": "অ্যালকোহল এড়িয়ে চলুন।"},
	}
	if ValidateField(field, source, missingRisk) {
		t.Error("dropped risk subkey must be rejected")
	}

	extraItem := []map[string]any{
		{"risk": "high", "warning": "x"},
		{"risk": "high", "warning": "y"},
	}
	if ValidateField(field, source, extraItem) {
		t.Error("length mismatch must be rejected")
	}
}

func TestValidateField_HTMLStructure(t *testing.T) {
	field := mustField(t, "introduction")

	src := "<p>Intro text with <b>bold</b> part.</p>"

	if !ValidateField(field, src, "<p>ভূমিকা <b>গা</b> অংশ।</p>") {
		t.Error("same tag structure should validate")
	}
	if ValidateField(field, src, "<p>ভূমিকা অংশ।</p>") {
		t.Error("dropped tag should be rejected")
	}
	if ValidateField(field, src, "<div>ভূমিকা <b>গা</b></div>") {
		t.Error("changed tag should be rejected")
	}
	if !ValidateField(mustField(t, "fact_box"), "plain text", "সরল পাঠ্য") {
		t.Error("tag-free text on both sides should validate")
	}
}

func TestValidateField_EmptyPassThrough(t *testing.T) {
	field := mustField(t, "benefits")

	if !ValidateField(field, nil, nil) {
		t.Error("absent field should validate as pass-through")
	}
	if ValidateField(field, nil, []string{"x"}) {
		t.Error("output for an absent field must be rejected")
	}
}

func TestValidateField_FailsClosedOnOddTypes(t *testing.T) {
	field := mustField(t, "safety_advice")

	// Values that do not match any declared shape must never validate,
	// whatever happens during comparison.
	if ValidateField(field, []map[string]any{{"risk": make(chan int)}}, []map[string]any{{"risk": make(chan int)}}) {
		t.Error("unmarshalable protected values must fail closed")
	}
	if ValidateField(field, 42, 42) {
		t.Error("non-list values must fail")
	}
}
