package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const timeRound = time.Millisecond

var (
	searchQuery string
	searchTopK  int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the knowledge base directly",
	Long: `Search embeds the query and prints the nearest stored texts. Useful
for inspecting what retrieval would hand to the generator.`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "query text (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	_ = searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	kb, err := openKnowledgeBase()
	if err != nil {
		return err
	}
	defer kb.Close()

	k := cfg.Retrieve.TopK
	if searchTopK > 0 {
		k = searchTopK
	}

	texts, timing, err := kb.Retrieve(cmd.Context(), searchQuery, k)
	if err != nil {
		return err
	}

	if len(texts) == 0 {
		fmt.Println("No matching documents.")
		return nil
	}

	for i, text := range texts {
		fmt.Printf("%d. %s\n", i+1, text)
	}
	fmt.Printf("\n%d results in %s (embed %s, search %s)\n",
		len(texts), timing.Total.Round(timeRound), timing.Embed.Round(timeRound), timing.Search.Round(timeRound))
	return nil
}
