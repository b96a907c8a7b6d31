package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ragchat/internal/usecase"
)

var (
	seedFromDir   string
	seedNoStarter bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load seed knowledge into the knowledge base",
	Long: `Seed fills the knowledge base with the built-in starter facts and,
when --from is given, paragraph-sized facts split from matching files.
Include and exclude patterns come from the seed section of the config.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedFromDir, "from", "", "directory of knowledge files to seed from")
	seedCmd.Flags().BoolVar(&seedNoStarter, "no-starter", false, "skip the built-in starter facts")
}

func runSeed(cmd *cobra.Command, args []string) error {
	kb, err := openKnowledgeBase()
	if err != nil {
		return err
	}
	defer kb.Close()

	seeder := usecase.NewSeeder(kb, logger)
	ctx := cmd.Context()
	total := 0

	if !seedNoStarter {
		n, err := seeder.SeedStarter(ctx)
		total += n
		if err != nil {
			return err
		}
	}

	if seedFromDir != "" {
		n, err := seeder.SeedFiles(ctx, seedFromDir, cfg.Seed.Includes, cfg.Seed.Excludes)
		total += n
		if err != nil {
			return err
		}
	}

	count, err := kb.Count()
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d facts (%d documents total)\n", total, count)
	return nil
}
