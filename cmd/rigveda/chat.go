package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rigveda-rag/internal/llm"
	"rigveda-rag/internal/models"
	"rigveda-rag/internal/retrieval"
)

var chatQuestion string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about the Rigveda",
	Long: `Answers questions with a local Ollama model, quoting the most relevant
verses as context. Without -q it starts an interactive session that keeps
the conversation history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		client, err := a.llm()
		if err != nil {
			return err
		}
		retriever, err := a.retriever()
		if err != nil {
			return err
		}

		s := &chatSession{llm: client, retriever: retriever, limit: cfg.LLM.ContextVerses}

		if chatQuestion != "" {
			resp, err := s.ask(ctx, chatQuestion)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatAnswer(resp))
			return nil
		}

		runInteractiveMode(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatQuestion, "question", "q", "", "answer one question and exit")
}

type chatSession struct {
	llm       *llm.OllamaLLM
	retriever *retrieval.Retriever
	limit     int
	history   []models.ChatMessage
}

func (s *chatSession) ask(ctx context.Context, question string) (*models.Response, error) {
	startTime := time.Now()

	verses, err := s.retriever.Retrieve(ctx, question, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find context verses: %w", err)
	}

	history := append(s.history, models.ChatMessage{Role: "user", Content: question})
	resp, err := s.llm.Chat(ctx, history, verses)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	s.history = append(history, models.ChatMessage{Role: "assistant", Content: resp.Answer})
	logger.Debug("question answered",
		zap.Int("context_verses", len(verses)), zap.Duration("elapsed", time.Since(startTime)))
	return resp, nil
}

func runInteractiveMode(ctx context.Context, s *chatSession, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "Rigveda Assistant - Ask questions about the Rigveda (type 'exit' to quit, '/clear' to forget the conversation)")

	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "exit", "quit":
			return
		case "":
			continue
		case "/clear":
			s.history = nil
			fmt.Fprintln(out, "Conversation cleared")
			continue
		}

		fmt.Fprint(out, "Consulting the hymns... ")

		resp, err := s.ask(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "\rError: %v\n", err)
			continue
		}

		fmt.Fprintln(out, "\r"+formatAnswer(resp))
	}
}
