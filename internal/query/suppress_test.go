package query

import (
	"testing"

	"github.com/auroradata-ai/spatiotex/internal/config"
)

func TestPadKeywordTokensAddsDummies(t *testing.T) {
	cfg := config.SuppressionParams{EnablePadding: true, MaxRBlocks: 4}
	out := PadKeywordTokens([]string{"PARK"}, cfg)
	if len(out) != 4 {
		t.Fatalf("got %d tokens, want 4", len(out))
	}
	if out[0].Raw != "PARK" || out[0].Dummy {
		t.Errorf("real token mismangled: %+v", out[0])
	}
	for _, kt := range out[1:] {
		if !kt.Dummy {
			t.Errorf("expected padding token to be marked dummy: %+v", kt)
		}
	}
}

func TestPadKeywordTokensTruncatesOverflow(t *testing.T) {
	cfg := config.SuppressionParams{EnablePadding: true, MaxRBlocks: 2}
	out := PadKeywordTokens([]string{"A", "B", "C"}, cfg)
	if len(out) != 2 {
		t.Fatalf("got %d tokens, want 2", len(out))
	}
}

func TestPadKeywordTokensDisabled(t *testing.T) {
	cfg := config.SuppressionParams{EnablePadding: false, MaxRBlocks: 4}
	out := PadKeywordTokens([]string{"A"}, cfg)
	if len(out) != 1 {
		t.Fatalf("got %d tokens, want 1 (padding disabled)", len(out))
	}
}
