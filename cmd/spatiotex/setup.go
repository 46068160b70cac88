package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/auroradata-ai/spatiotex/internal/aui"
	"github.com/auroradata-ai/spatiotex/internal/config"
	"github.com/auroradata-ai/spatiotex/internal/dataset"
	"github.com/auroradata-ai/spatiotex/internal/telemetry"
)

func runSetupCommand(args []string) {
	fs := flag.NewFlagSet("setup", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to configuration file")
	outPath := fs.String("out", "index.json", "path to write the authenticated index")
	keysPath := fs.String("keys", "keys.json", "path to write the data-owner key tuple")
	interactive := fs.Bool("interactive", false, "prompt for missing values")
	fs.Parse(args)

	if *interactive {
		*configPath = promptForInput("Configuration file", *configPath)
		*outPath = promptForInput("Index output path", *outPath)
		*keysPath = promptForInput("Keys output path", *keysPath)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := telemetry.InitLogger(cfg, "setup"); err != nil {
		fmt.Printf("❌ Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	rows, err := dataset.Load(cfg.Database)
	if err != nil {
		fmt.Printf("❌ Failed to load dataset: %v\n", err)
		os.Exit(1)
	}
	telemetry.Info("setup: loaded %d records from %s source", len(rows), cfg.Database.Type)

	index, keys, err := aui.Setup(rows, cfg)
	if err != nil {
		fmt.Printf("❌ Setup failed: %v\n", err)
		os.Exit(1)
	}

	if err := aui.SaveAUIFile(*outPath, index); err != nil {
		fmt.Printf("❌ Failed to write index: %v\n", err)
		os.Exit(1)
	}
	if err := aui.SaveKeysFile(*keysPath, keys); err != nil {
		fmt.Printf("❌ Failed to write keys: %v\n", err)
		os.Exit(1)
	}

	telemetry.Audit("index_built", map[string]interface{}{
		"records": len(rows), "m1": index.M1, "m2": index.M2, "parties": index.U,
	})

	fmt.Printf("✅ Built authenticated index for %d records\n", len(rows))
	fmt.Printf("   Spatial columns: %d, Keyword columns: %d, Parties: %d\n", index.M1, index.M2, index.U)
	fmt.Printf("   Index written to %s\n", *outPath)
	fmt.Printf("   Keys written to %s (distribute to the querying client only, never to a CSP)\n", *keysPath)
}
