package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/sales-crm/internal/flows"
	"github.com/spec-kit/sales-crm/internal/service"
)

var flowInput string

var flowCmd = &cobra.Command{
	Use:   "flow [name]",
	Short: "Run an AI flow with a JSON input, or list flows when no name is given",
	Example: `  crmctl flow
  crmctl flow reverse-geocode --input '{"latitude":12.97,"longitude":77.59}'
  crmctl flow lead-scoring --input @lead.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFlow,
}

func runFlow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		for _, name := range flows.Names() {
			r, _ := flows.Lookup(name)
			fmt.Fprintf(out, "%-16s %s\n", name, r.Description())
		}
		return nil
	}

	raw, err := readInput(flowInput)
	if err != nil {
		return err
	}

	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.close()

	provider, err := newProvider(cmd.Context(), e.cfg.AI, e.logger)
	if err != nil {
		return err
	}
	svc := service.NewFlowService(service.FlowDependencies{Provider: provider, Logger: e.logger, BatchLimit: 1})

	result, err := svc.Invoke(cmd.Context(), args[0], raw)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func readInput(input string) ([]byte, error) {
	switch {
	case input == "":
		return nil, fmt.Errorf("--input is required")
	case strings.HasPrefix(input, "@"):
		raw, err := os.ReadFile(strings.TrimPrefix(input, "@"))
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		return raw, nil
	default:
		return []byte(input), nil
	}
}
