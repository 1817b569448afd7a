package submission

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

var referencePattern = regexp.MustCompile(`^[0-9A-F]{9}$`)

func TestUUIDTokensFormatAndUniqueness(t *testing.T) {
	gen := NewUUIDTokens()
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token := gen.Token()
		if !referencePattern.MatchString(token) {
			t.Fatalf("token %q does not match %s", token, referencePattern)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token %q", token)
		}
		seen[token] = struct{}{}
	}
}

func TestUUIDTokensSkipsCollisions(t *testing.T) {
	ids := []uuid.UUID{
		uuid.MustParse("aaaaaaaa-a000-4000-8000-000000000000"),
		uuid.MustParse("aaaaaaaa-a111-4000-8000-000000000000"),
		uuid.MustParse("bbbbbbbb-b000-4000-8000-000000000000"),
	}
	next := 0
	gen := &UUIDTokens{source: func() uuid.UUID {
		id := ids[next]
		next++
		return id
	}}

	if got := gen.Token(); got != "AAAAAAAAA" {
		t.Fatalf("unexpected first token %q", got)
	}
	if got := gen.Token(); got != "BBBBBBBBB" {
		t.Fatalf("expected collision to be skipped, got %q", got)
	}
}

func TestUUIDTokensHistoryIsBounded(t *testing.T) {
	ids := []uuid.UUID{
		uuid.MustParse("aaaaaaaa-a000-4000-8000-000000000000"),
		uuid.MustParse("bbbbbbbb-b000-4000-8000-000000000000"),
		uuid.MustParse("cccccccc-c000-4000-8000-000000000000"),
		uuid.MustParse("aaaaaaaa-a000-4000-8000-000000000000"),
		uuid.MustParse("cccccccc-c000-4000-8000-000000000000"),
		uuid.MustParse("dddddddd-d000-4000-8000-000000000000"),
	}
	next := 0
	gen := NewUUIDTokens(WithTokenHistory(2))
	gen.source = func() uuid.UUID {
		id := ids[next]
		next++
		return id
	}

	var got []string
	for i := 0; i < 4; i++ {
		got = append(got, gen.Token())
	}
	// AAA may repeat once it has left the history
	want := []string{"AAAAAAAAA", "BBBBBBBBB", "CCCCCCCCC", "AAAAAAAAA"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tokens = %v, want %v", got, want)
		}
	}
	if len(gen.issued) != 2 || len(gen.order) != 2 {
		t.Fatalf("expected history of 2, got %d issued / %d ordered", len(gen.issued), len(gen.order))
	}
	if got := gen.Token(); got != "DDDDDDDDD" {
		t.Fatalf("expected the remembered CCC to be skipped, got %q", got)
	}
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.ObserveSubmission(StatusSucceeded, 120*time.Millisecond)
	rec.ObserveSubmission(StatusFailed, time.Second)
	rec.ObserveSubmission(StatusFailed, 2*time.Second)

	if got := testutil.ToFloat64(rec.submissionsTotal.WithLabelValues(string(StatusFailed))); got != 2 {
		t.Fatalf("expected 2 failed submissions, got %v", got)
	}
	if got := testutil.ToFloat64(rec.submissionsTotal.WithLabelValues(string(StatusSucceeded))); got != 1 {
		t.Fatalf("expected 1 successful submission, got %v", got)
	}
	if n := testutil.CollectAndCount(rec.submissionDuration); n != 2 {
		t.Fatalf("expected 2 duration series, got %d", n)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseSubmitting.String() != "submitting" || Phase(42).String() != "unknown" {
		t.Fatalf("unexpected phase names")
	}
}
