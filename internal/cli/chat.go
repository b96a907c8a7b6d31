package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ragchat/internal/adapter/extractor"
	"ragchat/internal/adapter/httpapi"
	"ragchat/internal/port"
	"ragchat/internal/usecase"
)

var chatModel string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive retrieval-augmented session",
	Long: `Chat runs the read-query-print loop. Each query goes through fact
extraction, preference lookup, retrieval, generation and the memory write
policy. Type 'quit', 'exit' or 'q' to leave, ':info' for session stats.

When server.url is configured, the session drives a remote 'ragchat serve'
backend; otherwise the whole pipeline runs in-process.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "generation model (default from config)")
}

// exit tokens accepted by the read loop, localized variants included.
var exitTokens = map[string]bool{
	"quit": true, "exit": true, "q": true, "выход": true,
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	model := cfg.Model.Name
	if chatModel != "" {
		model = chatModel
	}

	var (
		retriever port.ContextSource
		generator port.Generator
		memory    port.MemoryWriter
		checker   port.HealthChecker
		countDocs func(context.Context) (int, error)
	)

	if cfg.Server.URL != "" {
		client := httpapi.NewClient(cfg.Server.URL)
		retriever, generator, memory, checker = client, client, client, client
		countDocs = client.Count
		logger.Info("using remote backend", "url", cfg.Server.URL)
	} else {
		kb, err := openKnowledgeBase()
		if err != nil {
			return err
		}
		defer kb.Close()

		gen := newGenerator()
		retriever, generator, memory = kb, gen, kb
		checker = usecase.NewBackendHealth(kb, gen)
		countDocs = func(context.Context) (int, error) { return kb.Count() }
	}

	// Unreachable backend at startup is the one fatal failure; everything
	// after this degrades in-loop.
	delay := time.Duration(cfg.Session.StartupDelaySec) * time.Second
	health, err := usecase.WaitReady(ctx, checker, cfg.Session.StartupRetries, delay, logger)
	if err != nil {
		return err
	}

	session := usecase.NewDialogSession(
		extractor.New(nil),
		retriever,
		generator,
		memory,
		newWritePolicy(),
		logger,
		usecase.SessionOptions{
			Model:          model,
			TopK:           cfg.Retrieve.TopK,
			HistoryTail:    cfg.Session.HistoryTail,
			GenerateOption: cfg.Model.Options,
		},
	)

	fmt.Printf("ragchat ready (model: %s, %d models available)\n", model, health.ModelsAvailable)
	fmt.Println("Ask a question, ':info' for stats, 'quit' to leave.")

	lines := make(chan string)
	go readLines(lines)

	for {
		fmt.Print("\nyou> ")

		var input string
		select {
		case <-ctx.Done():
			fmt.Println("\nBye!")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Println("\nBye!")
				return nil
			}
			input = strings.TrimSpace(line)
		}

		if input == "" {
			continue
		}
		if exitTokens[strings.ToLower(input)] {
			fmt.Println("Bye!")
			return nil
		}
		if input == ":info" {
			printSessionInfo(ctx, session, model, countDocs)
			continue
		}

		answer := session.Process(ctx, input)
		fmt.Printf("\nassistant> %s\n", answer)
	}
}

// readLines feeds stdin to the loop so a signal can interrupt the wait.
func readLines(out chan<- string) {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		out <- scanner.Text()
	}
	close(out)
}

func printSessionInfo(ctx context.Context, session *usecase.DialogSession, model string, countDocs func(context.Context) (int, error)) {
	count, err := countDocs(ctx)
	if err != nil {
		logger.Warn("failed to count documents", "error", err)
	}
	fmt.Printf("model: %s\n", model)
	fmt.Printf("history turns: %d\n", session.HistoryLen())
	fmt.Printf("stored preferences: %d\n", session.Preferences().Len())
	fmt.Printf("documents in knowledge base: %d\n", count)
}
