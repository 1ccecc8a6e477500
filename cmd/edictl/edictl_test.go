package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/drfirst/go-edi/internal/inquiry"
	"github.com/drfirst/go-edi/internal/x12/generate"
)

// execute runs edictl with args and returns what it printed
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("EDI_CONFIG", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParse(t *testing.T) {
	out, err := execute(t, "", "parse", filepath.Join("testdata", "271_commercial.x12"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if doc["type"] != "271" || doc["eligibility"] == nil || doc["summary"] == nil {
		t.Errorf("doc keys = %v", doc)
	}
}

func TestParseRejected999(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "999_rejected.x12"))
	if err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, string(data), "parse", "-")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, `"rejected": true`) {
		t.Errorf("output = %s", out)
	}
}

func TestParseFailure(t *testing.T) {
	_, err := execute(t, "<html>gateway timeout</html>", "parse", "-")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(err.Error(), string(inquiry.KindUnrecognizedResponse)) {
		t.Errorf("error should lead with its kind: %v", err)
	}
}

func TestUnwrap(t *testing.T) {
	envelope := `<soapenv:Envelope xmlns:soapenv="http://www.w3.org/2003/05/soap-envelope">` +
		`<soapenv:Body><COREEnvelopeRealTimeResponse>` +
		`<ErrorCode>Success</ErrorCode>` +
		`<Payload><![CDATA[ISA*00~GS*HB~ST*271*0001~]]></Payload>` +
		`</COREEnvelopeRealTimeResponse></soapenv:Body></soapenv:Envelope>`

	out, err := execute(t, envelope, "unwrap", "-")
	if err != nil {
		t.Fatalf("unwrap: %v", err)
	}
	if strings.TrimSpace(out) != "ISA*00~GS*HB~ST*271*0001~" {
		t.Errorf("payload = %q", out)
	}

	out, err = execute(t, envelope, "unwrap", "--segments", "-")
	if err != nil {
		t.Fatalf("unwrap --segments: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || lines[1] != "GS*HB~" {
		t.Errorf("lines = %q", lines)
	}
}

func TestPayers(t *testing.T) {
	out, err := execute(t, "", "payers")
	if err != nil {
		t.Fatalf("payers: %v", err)
	}
	for _, id := range []string{"60054", "87726", "SX109", "UTMCD"} {
		if !strings.Contains(out, id) {
			t.Errorf("listing missing %s:\n%s", id, out)
		}
	}
}

func TestGenerate270(t *testing.T) {
	t.Setenv("EDI_SUBMITTER_SENDER_ID", "DRFIRST")
	t.Setenv("EDI_PROVIDER_NAME", "FAMILY HEALTH CLINIC")
	t.Setenv("EDI_PROVIDER_NPI", "1234567893")

	out, err := execute(t, "", "generate", "270",
		"--payer", "60054", "--first", "Jane", "--last", "Doe",
		"--dob", "1985-03-12", "--member", "W123456789", "--gender", "F")
	if err != nil {
		t.Fatalf("generate 270: %v", err)
	}
	for _, want := range []string{"ST*270*", "NM1*PR*2*AETNA", "NM1*IL*1*DOE*JANE"} {
		if !strings.Contains(out, want) {
			t.Errorf("270 missing %q:\n%s", want, out)
		}
	}
}

func TestGenerate270UnknownPayer(t *testing.T) {
	_, err := execute(t, "", "generate", "270", "--payer", "NOPE", "--first", "Jane", "--last", "Doe", "--dob", "1985-03-12")
	if err == nil {
		t.Fatal("expected error for unknown payer")
	}
}

func TestGenerate276Validate(t *testing.T) {
	inq := generate.ClaimInquiry{PayerID: "60054", PatientLastName: "DOE"}
	data, err := json.Marshal(inq)
	if err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, string(data), "generate", "276", "--validate", "-")
	if err != nil {
		t.Fatalf("generate 276 --validate: %v", err)
	}
	var report generate.ValidationReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Valid || len(report.Errors) == 0 {
		t.Errorf("report = %+v", report)
	}
}

func TestOptional(t *testing.T) {
	if optional("  ") != nil {
		t.Error("blank should be nil")
	}
	if v := optional(" F "); v == nil || *v != "F" {
		t.Errorf("optional = %v", v)
	}
}
