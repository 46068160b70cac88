package query

import (
	"strconv"

	"github.com/auroradata-ai/spatiotex/internal/config"
)

// KeywordToken is a keyword-segment token annotated with whether it is
// real (drawn from the query text) or a dummy inserted purely to keep
// the dispatched bucket count constant.
type KeywordToken struct {
	Raw   string
	Dummy bool
}

// PadKeywordTokens pads or truncates tokens to exactly
// cfg.MaxRBlocks entries when cfg.EnablePadding is set, so the number
// of keyword buckets a CSP sees never reveals the true query token
// count. Real tokens beyond MaxRBlocks are dropped, mirroring the
// reference implementation's pad_query_blocks.
func PadKeywordTokens(tokens []string, cfg config.SuppressionParams) []KeywordToken {
	out := make([]KeywordToken, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, KeywordToken{Raw: t})
	}
	if !cfg.EnablePadding {
		return out
	}

	if len(out) >= cfg.MaxRBlocks {
		return out[:cfg.MaxRBlocks]
	}
	need := cfg.MaxRBlocks - len(out)
	for i := 0; i < need; i++ {
		out = append(out, KeywordToken{Raw: "DUMMY:" + strconv.Itoa(i), Dummy: true})
	}
	return out
}
