package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadCountriesFallback(t *testing.T) {
	countries, err := LoadCountries("")
	if err != nil {
		t.Fatalf("LoadCountries failed: %v", err)
	}
	if len(countries) != 3 {
		t.Fatalf("Expected 3 countries, got %d", len(countries))
	}
	if def := DefaultCountry(countries); def.Code != "+91" || def.Name != "India" {
		t.Errorf("Expected India default, got %+v", def)
	}
}

func TestLoadCountriesFromFile(t *testing.T) {
	path := writeFile(t, "countries.yaml", `countries:
  - code: "+44"
    name: UK
  - code: "+1"
    name: USA
    default: true
`)

	countries, err := LoadCountries(path)
	if err != nil {
		t.Fatalf("LoadCountries failed: %v", err)
	}
	if len(countries) != 2 {
		t.Fatalf("Expected 2 countries, got %d", len(countries))
	}
	if def := DefaultCountry(countries); def.Code != "+1" {
		t.Errorf("Expected +1 default, got %q", def.Code)
	}
	if c, ok := FindCountry(countries, "44"); !ok || c.Name != "UK" {
		t.Errorf("Expected to find UK, got %+v (found=%v)", c, ok)
	}
	if _, ok := FindCountry(countries, "+91"); ok {
		t.Error("Did not expect +91 in custom list")
	}
}

func TestLoadCountriesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "countries: []\n"},
		{"missing plus", "countries:\n  - code: \"91\"\n    name: India\n"},
		{"missing name", "countries:\n  - code: \"+91\"\n"},
		{"two defaults", "countries:\n  - code: \"+91\"\n    name: India\n    default: true\n  - code: \"+1\"\n    name: USA\n    default: true\n"},
		{"not yaml", "countries: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "countries.yaml", tt.content)
			if _, err := LoadCountries(path); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

func TestLoadCountriesMissingFile(t *testing.T) {
	if _, err := LoadCountries(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFullPhoneNumber(t *testing.T) {
	india := DefaultCountries()[0]
	if got := FullPhoneNumber(india, "98765 43210"); got != "+919876543210" {
		t.Errorf("Expected +919876543210, got %q", got)
	}
	if got := FullPhoneNumber(india, "98765-43210"); got != "+919876543210" {
		t.Errorf("Expected +919876543210, got %q", got)
	}
}
