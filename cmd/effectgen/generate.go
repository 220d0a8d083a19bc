package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/effectgen/effectgen/codegen"
	"github.com/effectgen/effectgen/openapi"
	"github.com/effectgen/effectgen/validation"
)

var (
	generateOutput  string
	generateAPIName string
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Compile an OpenAPI 3.1 document into Effect HttpApi TypeScript",
	Long: `Compile an OpenAPI 3.1 document into a TypeScript source file.

The output declares one Effect Schema value per named schema (dependencies
before dependents), one HttpApiEndpoint per operation, one HttpApiGroup per
tag, and a single HttpApi value composing the groups. Non-fatal anomalies in
the document are reported as warnings on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "out", "o", "", "output file (defaults to stdout)")
	generateCmd.Flags().StringVar(&generateAPIName, "name", "", "api name override (defaults to info.title)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	data, err := os.ReadFile(filepath.Clean(args[0]))
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := openapi.Unmarshal(data)
	if err != nil {
		return err
	}

	ctx := validation.ContextWithWarnings(cmd.Context())

	var opts []codegen.Option
	if generateAPIName != "" {
		opts = append(opts, codegen.WithAPIName(generateAPIName))
	}

	out, err := codegen.New(doc, opts...).Generate(ctx)

	for _, warning := range validation.GetWarnings(ctx) {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}

	if err != nil {
		return err
	}

	if generateOutput == "" {
		fmt.Print(out)
		return nil
	}

	if err := os.WriteFile(generateOutput, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Wrote %s\n", generateOutput)
	return nil
}
