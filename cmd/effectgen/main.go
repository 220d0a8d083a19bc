package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var version = "dev"

func getVersion() string {
	if version != "dev" {
		return version
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok || buildInfo.Main.Version == "" || buildInfo.Main.Version == "(devel)" {
		return version
	}

	return buildInfo.Main.Version
}

var rootCmd = &cobra.Command{
	Use:   "effectgen",
	Short: "Compile OpenAPI 3.1 documents into Effect HttpApi TypeScript code",
	Long: `effectgen compiles an OpenAPI 3.1 document into a single TypeScript source
file declaring Effect Schema values for every named schema and HttpApi
endpoints, groups and the api value for every operation.

Commands:
- generate: compile a document into TypeScript
- validate: check a document has the shape the compiler requires`,
}

func main() {
	rootCmd.Version = getVersion()
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
