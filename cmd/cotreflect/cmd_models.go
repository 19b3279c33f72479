package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cotreflect/internal/gateway"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available with the configured API keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := gateway.NewRegistryFromConfig(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		fmt.Println(listHeader.Render("Available models"))
		for _, name := range registry.Models() {
			marker := "  "
			if name == cfg.Model {
				marker = "* "
			}
			fmt.Printf("%s%s\n", marker, name)
		}
		fmt.Println(listDim.Render("* default model"))
		return nil
	},
}
