package batch

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"codeberg.org/snonux/agritranslate/internal/testutil"
	"codeberg.org/snonux/agritranslate/internal/translation"
)

func TestParseDictionary(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKeys []string
		wantErr  bool
	}{
		{"empty object", `{}`, nil, false},
		{"keeps document order", `{"z": "Zebra", "a": "Apple", "m": "Mango"}`, []string{"z", "a", "m"}, false},
		{"duplicate key keeps first position", `{"a": "1", "b": "2", "a": "3"}`, []string{"a", "b"}, false},
		{"escaped key", `{"crop\"name": "Wheat"}`, []string{`crop"name`}, false},
		{"invalid json", `{"a": }`, nil, true},
		{"array", `["a"]`, nil, true},
		{"number value", `{"a": 1}`, nil, true},
		{"nested object", `{"a": {"b": "c"}}`, nil, true},
		{"null value", `{"a": null}`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDictionary([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, translation.ErrMalformedInput) {
					t.Errorf("Expected ErrMalformedInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDictionary failed: %v", err)
			}
			if got := d.keys; len(got) != len(tt.wantKeys) || (len(got) > 0 && !reflect.DeepEqual(got, tt.wantKeys)) {
				t.Errorf("keys = %v, want %v", got, tt.wantKeys)
			}
		})
	}
}

func TestParseDictionary_DuplicateKeyLastValue(t *testing.T) {
	d, err := ParseDictionary([]byte(`{"a": "1", "b": "2", "a": "3"}`))
	if err != nil {
		t.Fatalf("ParseDictionary failed: %v", err)
	}
	if v := d.values["a"]; v != "3" {
		t.Errorf("values[a] = %q, want %q", v, "3")
	}
}

func TestDictionary_Indent(t *testing.T) {
	d := NewDictionary()
	d.Set("welcome", "स्वागत है")
	d.Set("tags", "<b>Soil & Water</b>")
	d.Set("quote", `He said "hi"`)

	got, err := d.Indent()
	if err != nil {
		t.Fatalf("Indent failed: %v", err)
	}

	want := "{\n" +
		"  \"welcome\": \"स्वागत है\",\n" +
		"  \"tags\": \"<b>Soil & Water</b>\",\n" +
		"  \"quote\": \"He said \\\"hi\\\"\"\n" +
		"}"
	if string(got) != want {
		t.Errorf("Indent() =\n%s\nwant\n%s", got, want)
	}

	empty, _ := NewDictionary().Indent()
	if string(empty) != "{}" {
		t.Errorf("empty Indent() = %s, want {}", empty)
	}
}

func TestDictionary_MarshalJSON(t *testing.T) {
	d := NewDictionary()
	d.Set("b", "2")
	d.Set("a", "1")

	got, err := d.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	if string(got) != `{"b":"2","a":"1"}` {
		t.Errorf("MarshalJSON() = %s", got)
	}
}

func TestDictionary_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hi", "complete.json")

	d := NewDictionary()
	d.Set("sow", "बोना")
	d.Set("harvest", "फसल")

	if err := d.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	testutil.AssertFileContains(t, path, `"sow": "बोना"`)

	loaded, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("LoadDictionary failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Entries(), d.Entries()) {
		t.Errorf("Loaded %v, want %v", loaded.Entries(), d.Entries())
	}

	// No temporary files are left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected only the output file, got %d entries", len(entries))
	}
}

func TestLoadDictionary_Missing(t *testing.T) {
	if _, err := LoadDictionary(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing file")
	}
}
