package main

import (
	"fmt"
	"os"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "ingest":
		err = runIngest(args)
	case "drift":
		err = runDrift(args)
	case "suggest":
		err = runSuggest(args)
	case "impact":
		err = runImpact(args)
	case "apply":
		err = runApply(args)
	case "rollback":
		err = runRollback(args)
	case "watch":
		err = runWatch(args)
	case "export":
		err = runExport(args)
	case "import":
		err = runImport(args)
	case "versions":
		err = runVersions(args)
	case "version":
		fmt.Printf("tokensync %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "tokensync %s: %v\n", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: tokensync <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  ingest     Scan the project and build the token registry")
	fmt.Println("  drift      Detect hardcoded values in a file (--file <path>)")
	fmt.Println("  suggest    Suggest token replacements for a file (--file <path>)")
	fmt.Println("  impact     Dry-run a change set (--changes <json>)")
	fmt.Println("  apply      Apply a change set atomically (--changes <json>)")
	fmt.Println("  rollback   Invert and re-apply a version (--version <id>)")
	fmt.Println("  watch      Watch the project and report drift on change")
	fmt.Println("  export     Export the registry to a JSON snapshot (--out <path>)")
	fmt.Println("  import     Import a JSON snapshot (--in <path>)")
	fmt.Println("  versions   List recorded versions")
	fmt.Println("  version    Print version")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Common options:")
	fmt.Println("  --root <dir>      Project root (default: current directory)")
	fmt.Println("  --project <id>    Project id (default: from config, else \"default\")")
	fmt.Println("  --db <path>       Registry database path")
}
