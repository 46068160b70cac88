package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/auroradata-ai/spatiotex/internal/config"
	"github.com/auroradata-ai/spatiotex/internal/csp"
	"github.com/auroradata-ai/spatiotex/internal/telemetry"
)

func runServeCSPCommand(args []string) {
	fs := flag.NewFlagSet("serve-csp", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	indexPath := fs.String("index", "index.json", "path to the authenticated index this party holds")
	listenAddr := fs.String("listen", "", "override the listen address from config.csp.listen_addr")
	interactive := fs.Bool("interactive", false, "prompt for missing values")
	fs.Parse(args)

	if *interactive {
		*configPath = promptForInput("Configuration file", *configPath)
		*indexPath = promptForInput("Index file to serve", *indexPath)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := telemetry.InitLogger(cfg, "serve-csp"); err != nil {
		fmt.Printf("❌ Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	addr := cfg.CSP.ListenAddr
	if *listenAddr != "" {
		addr = *listenAddr
	}
	if addr == "" {
		addr = ":8081"
	}

	server := csp.NewServer()
	if err := server.LoadIndexFile(*indexPath); err != nil {
		fmt.Printf("❌ Failed to load index: %v\n", err)
		os.Exit(1)
	}

	telemetry.Info("serve-csp: listening on %s, serving %s", addr, *indexPath)
	fmt.Printf("✅ CSP evaluator listening on %s\n", addr)
	fmt.Printf("   POST /eval        evaluate a dispatch\n")
	fmt.Printf("   POST /load_index  (re)load the authenticated index\n")
	fmt.Printf("   GET  /healthz     advisory liveness + integrity check\n")

	if err := http.ListenAndServe(addr, server); err != nil {
		fmt.Printf("❌ Server stopped: %v\n", err)
		os.Exit(1)
	}
}
