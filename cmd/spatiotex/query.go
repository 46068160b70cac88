package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/client"
	"github.com/auroradata-ai/spatiotex/internal/config"
	"github.com/auroradata-ai/spatiotex/internal/csp"
	"github.com/auroradata-ai/spatiotex/internal/query"
	"github.com/auroradata-ai/spatiotex/internal/telemetry"
)

func runQueryCommand(args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	indexPath := fs.String("index", "index.json", "path to the authenticated index (public shape only is used)")
	keysPath := fs.String("keys", "keys.json", "path to the data-owner key tuple")
	raw := fs.String("q", "", "query string, e.g. \"PARK CAFE; R: 40.0,-74.0,40.1,-73.9\"")
	interactive := fs.Bool("interactive", false, "prompt for missing values")
	fs.Parse(args)

	if *interactive {
		*configPath = promptForInput("Configuration file", *configPath)
		*indexPath = promptForInput("Index file", *indexPath)
		*keysPath = promptForInput("Keys file", *keysPath)
		*raw = promptForInput("Query", *raw)
	}
	if strings.TrimSpace(*raw) == "" {
		fmt.Println("❌ -q is required (the query string)")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := telemetry.InitLogger(cfg, "query"); err != nil {
		fmt.Printf("❌ Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	index, err := aui.LoadAUIFile(*indexPath)
	if err != nil {
		fmt.Printf("❌ Failed to load index: %v\n", err)
		os.Exit(1)
	}
	keys, err := aui.LoadKeysFile(*keysPath)
	if err != nil {
		fmt.Printf("❌ Failed to load keys: %v\n", err)
		os.Exit(1)
	}
	if len(cfg.CSP.PartyURLs) < index.U {
		fmt.Printf("❌ config.csp.party_urls has %d entries, need %d for U=%d\n", len(cfg.CSP.PartyURLs), index.U, index.U)
		os.Exit(1)
	}

	plan, err := query.Build(*raw, index, cfg)
	if err != nil {
		fmt.Printf("❌ Failed to plan query: %v\n", err)
		os.Exit(1)
	}
	telemetry.Info("query: planned %d tokens across %d parties", len(plan.Tokens), index.U)

	q, hits, err := client.Run(plan, index, keys, httpDispatch(cfg.CSP.PartyURLs, plan))
	if err != nil {
		telemetry.Audit("query_rejected", map[string]interface{}{"error": err.Error(), "state": q.State.String()})
		fmt.Printf("❌ Query %s: %v\n", q.State, err)
		os.Exit(1)
	}

	fmt.Printf("✅ Query verified, %d hit(s):\n", len(hits))
	for _, id := range hits {
		fmt.Printf("   %s\n", id)
	}
}

// httpDispatch sends one party's payload as JSON to that party's
// /eval endpoint and decodes its response back into csp.TokenResult
// shares. It is the only piece of the client-side pipeline that knows
// about HTTP: internal/client stays transport-agnostic, and the HTTP
// server in internal/csp is separate from its Evaluate function.
func httpDispatch(partyURLs []string, plan *query.Plan) client.Dispatch {
	return func(partyID int, payload query.PartyPayload) ([]csp.TokenResult, error) {
		tokens := make([]wireToken, len(payload.Buckets))
		for t, buckets := range payload.Buckets {
			wb := make([]wireBucket, len(buckets))
			for b, bucket := range buckets {
				bits := make([]int, len(bucket.Bits))
				for i, bit := range bucket.Bits {
					bits[i] = int(bit)
				}
				wb[b] = wireBucket{Columns: bucket.Columns, Bits: bits}
			}
			tokens[t] = wireToken{Type: plan.Tokens[t].Type, Buckets: wb}
		}

		body, err := json.Marshal(wireEvalRequest{PartyID: partyID, Tokens: tokens})
		if err != nil {
			return nil, fmt.Errorf("encode eval request: %w", err)
		}

		resp, err := http.Post(partyURLs[partyID]+"/eval", "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("POST %s/eval: %w", partyURLs[partyID], err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%s/eval returned status %d", partyURLs[partyID], resp.StatusCode)
		}

		var decoded wireEvalResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, fmt.Errorf("decode eval response: %w", err)
		}

		results := make([]csp.TokenResult, len(decoded.ResultShares))
		for t, row := range decoded.ResultShares {
			vec := make([][]byte, len(row))
			for i, cell := range row {
				raw, err := base64.StdEncoding.DecodeString(cell)
				if err != nil {
					return nil, fmt.Errorf("decode result cell: %w", err)
				}
				vec[i] = raw
			}
			proof, err := base64.StdEncoding.DecodeString(decoded.ProofShares[t])
			if err != nil {
				return nil, fmt.Errorf("decode proof share: %w", err)
			}
			results[t] = csp.TokenResult{Vec: vec, Proof: proof}
		}
		return results, nil
	}
}

type wireEvalRequest struct {
	PartyID int         `json:"party_id"`
	Tokens  []wireToken `json:"tokens"`
}

type wireToken struct {
	Type    string       `json:"type"`
	Buckets []wireBucket `json:"buckets"`
}

type wireBucket struct {
	Columns []int `json:"columns"`
	Bits    []int `json:"bits"`
}

type wireEvalResponse struct {
	ResultShares [][]string `json:"result_shares"`
	ProofShares  []string   `json:"proof_shares"`
}
