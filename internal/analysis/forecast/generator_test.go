package forecast

import "testing"

func TestGenerateDeterministic(t *testing.T) {
	question := "What is the weather in Paris tomorrow?"

	first := Generate(question)
	second := Generate(question)

	if first != second {
		t.Fatalf("expected identical forecasts, got %+v and %+v", first, second)
	}
}

func TestGenerateNormalizationInvariant(t *testing.T) {
	base := Generate("What is the weather in Paris tomorrow?")
	shouted := Generate("  WHAT is   the WEATHER in PARIS   tomorrow?  ")

	if base != shouted {
		t.Fatalf("forecast not stable under casing/whitespace: %+v vs %+v", base, shouted)
	}
}

func TestGenerateExtractsLocation(t *testing.T) {
	fc := Generate("What is the weather in Paris tomorrow?")

	if fc.Location != "Paris" {
		t.Fatalf("expected location Paris, got %q", fc.Location)
	}
	if fc.When != "tomorrow" {
		t.Fatalf("expected when tomorrow, got %q", fc.When)
	}
}

func TestGenerateMultiWordLocation(t *testing.T) {
	fc := Generate("Will it rain in new york this weekend?")

	if fc.Location != "New York" {
		t.Fatalf("expected location New York, got %q", fc.Location)
	}
	if fc.When != "this weekend" {
		t.Fatalf("expected when 'this weekend', got %q", fc.When)
	}
}

func TestGenerateDefaults(t *testing.T) {
	fc := Generate("Is it going to be hot?")

	if fc.Location != DefaultLocation {
		t.Fatalf("expected default location, got %q", fc.Location)
	}
	if fc.When != "today" {
		t.Fatalf("expected default when, got %q", fc.When)
	}
}

func TestGenerateKeywordNeedsWordBoundary(t *testing.T) {
	fc := Generate("What should I wear for tomorrows parade?")

	if fc.When != "today" {
		t.Fatalf("embedded keyword should not match, got %q", fc.When)
	}

	fc = Generate("Will it be cold in Tonightville?")
	if fc.When != "today" {
		t.Fatalf("embedded keyword should not match, got %q", fc.When)
	}
	if fc.Location != "Tonightville" {
		t.Fatalf("location should not be cut on an embedded keyword, got %q", fc.Location)
	}
}

func TestGenerateISODateOverridesKeyword(t *testing.T) {
	fc := Generate("What will the weather be like in Oslo tomorrow, say 2025-09-01?")

	if fc.When != "2025-09-01" {
		t.Fatalf("expected ISO date, got %q", fc.When)
	}
}

func TestGenerateTemperatureBounds(t *testing.T) {
	questions := []string{
		"weather in Tokyo",
		"rain at Lisbon tonight",
		"forecast for next week",
		"is it windy in Cape Town",
		"snow in Oslo this week?",
	}

	for _, q := range questions {
		fc := Generate(q)
		if fc.High < 15 || fc.High > 35 {
			t.Fatalf("high out of range for %q: %d", q, fc.High)
		}
		if fc.Low < 5 || fc.Low > fc.High {
			t.Fatalf("low out of range for %q: high=%d low=%d", q, fc.High, fc.Low)
		}
		if fc.Condition == "" || fc.Advice == "" {
			t.Fatalf("missing condition or advice for %q: %+v", q, fc)
		}
	}
}

func TestSummaryStable(t *testing.T) {
	question := "What is the weather in Paris tomorrow?"

	first := Generate(question).Summary()
	second := Generate(question).Summary()

	if first != second {
		t.Fatalf("summary not byte-identical:\n%s\n%s", first, second)
	}
}
