package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gemchat/gemchat/pkg/toolbox"
	"github.com/gemchat/gemchat/pkg/tools"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools declared to the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := tools.NewInMemoryToolRegistry()
		if err := toolbox.New().RegisterAll(registry); err != nil {
			return err
		}

		for _, td := range registry.ListTools() {
			fmt.Printf("%s\n  %s\n", td.Name, td.Description)
			if td.Parameters != nil {
				schemaYAML, err := schemaToYAML(td.Parameters)
				if err != nil {
					return err
				}
				fmt.Printf("  parameters:\n%s", indentLines(schemaYAML, "    "))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

func schemaToYAML(schema any) (string, error) {
	// Round-trip through JSON so jsonschema marshalling rules apply.
	b, err := json.Marshal(schema)
	if err != nil {
		return "", err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return "", err
	}
	out, err := yaml.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func indentLines(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n") + "\n"
}
