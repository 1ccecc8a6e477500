package payer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDirectory(t *testing.T) {
	d, err := LoadDirectory(filepath.Join("testdata", "payers.yaml"))
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}
	if d.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", d.Len())
	}
	c, ok := d.Lookup("utmcd")
	if !ok {
		t.Fatal("lookup should be case insensitive")
	}
	if c.DTPFormat != DTPRange || !c.AllowsNameOnly || c.SupportsMemberIDInNM1 {
		t.Errorf("UTMCD = %+v", c)
	}
	if c.ClaimsPayerID != "SKUT0" {
		t.Errorf("ClaimsPayerID = %q", c.ClaimsPayerID)
	}

	aetna, _ := d.Lookup("60054")
	if aetna.ClaimsPayerID != "" {
		t.Errorf("unset claims_payer_id should stay empty, got %q", aetna.ClaimsPayerID)
	}
	if aetna.DTPFormat != DTPSingle {
		t.Errorf("missing dtp_format should default to D8, got %q", aetna.DTPFormat)
	}
	if !aetna.Wants(FieldGroupNumber) || aetna.Requires(FieldGroupNumber) {
		t.Error("groupNumber should be recommended only")
	}
}

func TestDirectoryIsImmutable(t *testing.T) {
	d := DefaultDirectory()
	c, _ := d.Lookup("UTMCD")
	c.RequiredFields[0] = "mutated"
	c.DisplayName = "mutated"

	again, _ := d.Lookup("UTMCD")
	if again.RequiredFields[0] != FieldFirstName || again.DisplayName != "Utah Medicaid" {
		t.Errorf("directory changed through a returned copy: %+v", again)
	}
}

func TestNewDirectoryRejectsBadConfigs(t *testing.T) {
	tests := []struct {
		name string
		cfgs []Config
	}{
		{"missing id", []Config{{DisplayName: "X"}}},
		{"bad dtp", []Config{{PayerID: "A", DisplayName: "A", DTPFormat: "RD9"}}},
		{"unknown field", []Config{{PayerID: "A", DisplayName: "A", RequiredFields: []string{"ssn"}}}},
		{"duplicate", []Config{{PayerID: "A", DisplayName: "A"}, {PayerID: "a", DisplayName: "B"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDirectory(tt.cfgs...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestMustLookupUnknown(t *testing.T) {
	_, err := DefaultDirectory().MustLookup("NOPE")
	if !errors.Is(err, ErrUnknownPayer) {
		t.Errorf("expected ErrUnknownPayer, got %v", err)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := DefaultDirectory().Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "payers.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	d, err := LoadDirectory(path)
	if err != nil {
		t.Fatalf("LoadDirectory failed: %v", err)
	}
	if d.Len() != len(Defaults()) {
		t.Errorf("Len() = %d, want %d", d.Len(), len(Defaults()))
	}
}
