package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stateline-dev/stateline/internal/validator"
	"github.com/stateline-dev/stateline/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Check a workflow definition file for structural soundness",
	Long:  `Runs the definition validator over a YAML or JSON workflow definition and reports the first violation found.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runValidate(args[0]); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Println("Definition is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var input domain.DefinitionInput
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &input); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &input); err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
	}

	if _, err := validator.Validate(input); err != nil {
		return err
	}
	return nil
}
