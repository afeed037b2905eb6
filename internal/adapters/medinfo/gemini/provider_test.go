package gemini

import (
	"context"
	"testing"

	"medication-tracker/internal/ports/medinfo"
)

func TestExtractJSON_ToleratesFencesAndPreamble(t *testing.T) {
	raw := "Sure! Here is the analysis:\n```json\n[{\"severity\": \"HIGH\"}]\n```"
	got, ok := extractJSON(raw, '[', ']')
	if !ok {
		t.Fatalf("expected extraction to succeed")
	}
	if got != `[{"severity": "HIGH"}]` {
		t.Fatalf("unexpected extraction: %q", got)
	}

	if _, ok := extractJSON("no json here", '[', ']'); ok {
		t.Fatalf("expected extraction to fail without delimiters")
	}
}

func TestParseInteractions_InvalidOutputIsEmptyNotError(t *testing.T) {
	p := NewProvider(NewClient(Config{}), nil)

	if _, ok := p.parseInteractions("the model rambled instead of emitting json"); ok {
		t.Fatalf("expected parse failure for non-json output")
	}
	if _, ok := p.parseInteractions(`[{"severity": broken`); ok {
		t.Fatalf("expected parse failure for malformed json")
	}

	items, ok := p.parseInteractions("```json\n[]\n```")
	if !ok || len(items) != 0 {
		t.Fatalf("expected empty array to parse, got ok=%v items=%v", ok, items)
	}
}

func TestCheckInteractions_FewerThanTwoMedsShortCircuits(t *testing.T) {
	// Cliente sin configurar: si se llegara a llamar upstream, fallaría.
	p := NewProvider(NewClient(Config{}), nil)

	items, err := p.CheckInteractions(context.Background(), []medinfo.Medication{
		{ID: "m1", Name: "Aspirin", Dosage: "100mg"},
	})
	if err != nil {
		t.Fatalf("expected no error for single medication, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty interactions, got %v", items)
	}
}

func TestCheckTextInteractions_EmptyTextShortCircuits(t *testing.T) {
	p := NewProvider(NewClient(Config{}), nil)

	items, err := p.CheckTextInteractions(context.Background(), "   ")
	if err != nil {
		t.Fatalf("expected no error for empty text, got %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty interactions, got %v", items)
	}
}
