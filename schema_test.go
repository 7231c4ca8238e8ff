package medglot

import "testing"

func TestFields_NoDuplicates(t *testing.T) {
	seen := make(map[string]bool, len(Fields))
	for _, f := range Fields {
		if f.Name == "" {
			t.Fatal("field with empty name")
		}
		if seen[f.Name] {
			t.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}
}

func TestRequiredFields_Exist(t *testing.T) {
	for _, name := range RequiredFields {
		if _, ok := FieldByName(name); !ok {
			t.Errorf("required field %q is not in the schema", name)
		}
	}
}

func TestFieldByName(t *testing.T) {
	f, ok := FieldByName("safety_advice")
	if !ok {
		t.Fatal("safety_advice missing")
	}
	if f.Kind != KindObjectList {
		t.Errorf("safety_advice kind = %v, want object list", f.Kind)
	}
	if len(f.Protected) == 0 || f.Protected[0] != "risk" {
		t.Errorf("safety_advice protected keys = %v, want [risk]", f.Protected)
	}
	if f.Shadow == "" {
		t.Error("safety_advice should carry a shadow column")
	}

	if _, ok := FieldByName("no_such_field"); ok {
		t.Error("lookup of unknown field must fail")
	}
}

func TestShadowFields(t *testing.T) {
	shadows := ShadowFields()
	want := map[string]string{
		"introduction":  "gpt_introduction",
		"how_to_use":    "gpt_how_to_use",
		"how_it_works":  "gpt_how_it_works",
		"safety_advice": "gpt_safety_advice",
	}
	if len(shadows) != len(want) {
		t.Fatalf("got %d shadow fields, want %d", len(shadows), len(want))
	}
	for _, f := range shadows {
		if want[f.Name] != f.Shadow {
			t.Errorf("shadow for %q = %q, want %q", f.Name, f.Shadow, want[f.Name])
		}
	}
}

func TestHTMLFieldsAreStrings(t *testing.T) {
	for _, f := range Fields {
		if f.HTML && f.Kind != KindString {
			t.Errorf("field %q is marked HTML but is not a plain string", f.Name)
		}
	}
}
