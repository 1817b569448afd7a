package payload_test

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formwizard/pkg/definition"
	"github.com/goliatone/go-formwizard/pkg/payload"
	"github.com/goliatone/go-formwizard/pkg/selection"
	"github.com/goliatone/go-formwizard/pkg/testsupport"
)

func goldenPayload() payload.Payload {
	tracker := selection.New()
	tracker.SelectSingle("care-type", "live-in")
	tracker.ToggleMulti("care-needs", "dementia", true)
	tracker.ToggleMulti("care-needs", "personal-care", true)
	tracker.ToggleMulti("care-needs", "medication", true)
	tracker.SelectSingle("start-time", "within-week")

	fields := make(map[string]string, len(definition.DemoValues)+1)
	for k, v := range definition.DemoValues {
		fields[k] = v
	}
	fields["additional_info"] = "Prefers morning visits and a female carer"
	return payload.Build(definition.MustCareIntake(), fields, tracker)
}

func TestCareIntakeJSONGolden(t *testing.T) {
	p := goldenPayload()
	path := filepath.Join("testdata", "care_intake.json")
	testsupport.WriteGolden(t, path, p)

	got, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := strings.TrimSpace(testsupport.MustReadGoldenString(t, path))
	if diff := testsupport.CompareGolden(want, string(got)); diff != "" {
		t.Fatalf("json golden mismatch (-want +got):\n%s", diff)
	}
}

func TestCareIntakePrettyGolden(t *testing.T) {
	got := payload.EncodePretty(goldenPayload())
	path := filepath.Join("testdata", "care_intake.txt")
	if testsupport.WriteMaybeGolden(t, path, []byte(got)) {
		return
	}
	want := testsupport.MustReadGoldenString(t, path)
	if diff := testsupport.CompareGolden(want, got); diff != "" {
		t.Fatalf("pretty golden mismatch (-want +got):\n%s", diff)
	}
}
