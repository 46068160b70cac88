package main

import (
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

func main() {
	fmt.Println("🔎 SpatioTex - Authenticated Spatio-Textual Search")
	fmt.Println("====================================================")
	fmt.Println("Privacy-preserving search over outsourced location + keyword data")
	fmt.Println()

	if len(os.Args) > 1 {
		subcommand := os.Args[1]
		args := os.Args[2:]

		switch subcommand {
		case "setup":
			runSetupCommand(args)
		case "serve-csp":
			runServeCSPCommand(args)
		case "query":
			runQueryCommand(args)
		case "-help", "--help", "help":
			showMainHelp()
		case "-version", "--version", "version":
			showVersion()
		default:
			fmt.Printf("❌ Unknown subcommand: %s\n\n", subcommand)
			showMainHelp()
			os.Exit(1)
		}
		return
	}

	runInteractiveMode()
}

func runInteractiveMode() {
	fmt.Println("🎯 Interactive Mode")

	options := []string{
		"🗂️  Setup - Build an authenticated index from a dataset",
		"🖥️  Serve CSP - Run one party's evaluator as an HTTP service",
		"🔍 Query - Plan, dispatch, combine and verify a search",
		"❓ Help - Show detailed help information",
		"🚪 Exit",
	}

	choice := promptForChoice("Choose what you'd like to do:", options)

	switch choice {
	case 0:
		runSetupCommand([]string{"-interactive"})
	case 1:
		runServeCSPCommand([]string{"-interactive"})
	case 2:
		runQueryCommand([]string{"-interactive"})
	case 3:
		showMainHelp()
	case 4:
		fmt.Println("👋 Goodbye!")
		os.Exit(0)
	}
}

func promptForChoice(message string, options []string) int {
	prompt := promptui.Select{
		Label: message,
		Items: options,
		Size:  10,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "▶ {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "✓ {{ . | green }}",
		},
	}

	index, _, err := prompt.Run()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	return index
}

func promptForInput(message, defaultValue string) string {
	prompt := promptui.Prompt{
		Label:   message,
		Default: defaultValue,
	}
	result, err := prompt.Run()
	if err != nil {
		return defaultValue
	}
	return result
}

func showMainHelp() {
	fmt.Println("🔎 SpatioTex - Privacy-Preserving Spatio-Textual Search")
	fmt.Println("==========================================================")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  spatiotex                     # Interactive mode")
	fmt.Println("  spatiotex <subcommand>        # Direct subcommand")
	fmt.Println()
	fmt.Println("SUBCOMMANDS:")
	fmt.Println("  setup       🗂️  Build an authenticated index (AUI) from a dataset")
	fmt.Println("  serve-csp   🖥️  Run one party's evaluator as an HTTP service")
	fmt.Println("  query       🔍 Plan, dispatch, combine and verify a search")
	fmt.Println()
	fmt.Println("GLOBAL OPTIONS:")
	fmt.Println("  -help, --help    Show this help message")
	fmt.Println("  -version         Show version information")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  spatiotex setup -config config.yaml -out index.json -keys keys.json")
	fmt.Println("  spatiotex serve-csp -config config.yaml -index index.json -listen :8081")
	fmt.Println("  spatiotex query -config config.yaml -index index.json -keys keys.json -q \"PARK\"")
	fmt.Println()
	fmt.Println("For detailed help on any subcommand, use:")
	fmt.Println("  spatiotex <subcommand> -help")
}

func showVersion() {
	fmt.Println("🔎 SpatioTex v1.0.0")
	fmt.Println("Authenticated Spatio-Textual Search over Garbled Bloom Filters")
}
