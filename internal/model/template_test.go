package model

import (
	"errors"
	"testing"
)

// TestTemplateSetResolve tests template lookup by name and label.
func TestTemplateSetResolve(t *testing.T) {
	t.Parallel()

	set := DefaultTemplates()

	testCases := []struct {
		input    string
		expected Template
	}{
		{"zero_shot.tpl", TemplateZeroShot},
		{"zero_shot", TemplateZeroShot},
		{"Zero-Shot", TemplateZeroShot},
		{"  ZERO-SHOT ", TemplateZeroShot},
		{"cot.tpl", TemplateChainOfThought},
		{"COT", TemplateChainOfThought},
		{"chain-of-thought", TemplateChainOfThought},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			got, err := set.Resolve(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("got %+v, expected %+v", got, tc.expected)
			}
		})
	}

	t.Run("unknown template returns ErrUnknownTemplate", func(t *testing.T) {
		t.Parallel()
		if _, err := set.Resolve("few_shot.tpl"); !errors.Is(err, ErrUnknownTemplate) {
			t.Errorf("expected ErrUnknownTemplate, got %v", err)
		}
	})

	t.Run("empty input returns ErrUnknownTemplate", func(t *testing.T) {
		t.Parallel()
		if _, err := set.Resolve(" "); !errors.Is(err, ErrUnknownTemplate) {
			t.Errorf("expected ErrUnknownTemplate, got %v", err)
		}
	})

	t.Run("label for unknown name is unchanged", func(t *testing.T) {
		t.Parallel()
		if got := set.LabelFor("custom.tpl"); got != "custom.tpl" {
			t.Errorf("got %q", got)
		}
		if got := set.LabelFor("cot.tpl"); got != "Chain-of-Thought" {
			t.Errorf("got %q", got)
		}
	})
}

// TestCleanURL tests that whitespace is stripped from submitted URLs.
func TestCleanURL(t *testing.T) {
	t.Parallel()

	got := CleanURL("  https://example.com/\nfiling .htm\t")
	if got != "https://example.com/filing.htm" {
		t.Errorf("got %q", got)
	}
}

// TestParseURLList tests splitting of one-URL-per-line input.
func TestParseURLList(t *testing.T) {
	t.Parallel()

	got := ParseURLList("https://a.example/1.htm\n\n   \n  https://b.example/2.htm  \r\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 urls, got %d: %v", len(got), got)
	}
	if got[0] != "https://a.example/1.htm" || got[1] != "https://b.example/2.htm" {
		t.Errorf("unexpected urls %v", got)
	}
}
