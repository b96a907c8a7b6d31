package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show knowledge base and model status",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	kb, err := openKnowledgeBase()
	if err != nil {
		return err
	}
	defer kb.Close()

	count, err := kb.Count()
	if err != nil {
		return err
	}

	fmt.Printf("collection:     %s\n", cfg.Store.Collection)
	fmt.Printf("documents:      %d\n", count)
	fmt.Printf("model:          %s\n", cfg.Model.Name)
	fmt.Printf("embedding:      %s (%s)\n", cfg.Embedding.Model, cfg.Embedding.Provider)

	models, err := newGenerator().ListModels(cmd.Context())
	if err != nil {
		fmt.Printf("models:         unavailable (%v)\n", err)
		return nil
	}
	fmt.Printf("models:         %s\n", strings.Join(models, ", "))
	return nil
}
