package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/effectgen/effectgen/openapi"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate an OpenAPI 3.1 document",
	Long: `Validate that a document has the shape the compiler requires: a 3.1
version, info.title, info.version, a paths object, a unique operationId on
every operation, and well-formed security schemes.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	file := filepath.Clean(args[0])

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := openapi.Unmarshal(data)
	if err != nil {
		return err
	}

	if err := doc.Validate(); err != nil {
		return err
	}
	if err := doc.ValidateSecurity(); err != nil {
		return err
	}

	fmt.Printf("%s is valid\n", file)
	return nil
}
