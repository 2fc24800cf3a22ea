package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"rigveda-rag/internal/llm"
	"rigveda-rag/internal/models"
	"rigveda-rag/internal/query"
)

var (
	quizCount      int
	quizDifficulty string
	quizMandala    int
	quizJSON       bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a multiple-choice quiz generated from random verses",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.store.LoadCorpus(ctx)
		if err != nil {
			return fmt.Errorf("failed to load verses: %w", err)
		}
		pool := []models.Verse(c)
		if quizMandala > 0 {
			pool = query.ByMandala(pool, quizMandala)
			if len(pool) == 0 {
				return fmt.Errorf("mandala %d has no verses", quizMandala)
			}
		}

		client, err := a.llm()
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), "Generating quiz...")
		questions, err := client.GenerateQuiz(ctx, query.Sample(pool, quizCount), quizCount, quizDifficulty)
		if err != nil {
			return err
		}

		if quizJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(questions)
		}

		runQuiz(questions, cmd.InOrStdin(), cmd.OutOrStdout())
		return nil
	},
}

func init() {
	quizCmd.Flags().IntVarP(&quizCount, "count", "n", llm.DefaultQuizCount, "number of questions")
	quizCmd.Flags().StringVarP(&quizDifficulty, "difficulty", "d", llm.DefaultDifficulty, "easy, medium or hard")
	quizCmd.Flags().IntVarP(&quizMandala, "mandala", "m", 0, "draw verses from one mandala")
	quizCmd.Flags().BoolVar(&quizJSON, "json", false, "print the questions as JSON instead of asking them")
}

// runQuiz asks each question on out, reads answers (1-based option numbers)
// from in and returns the score.
func runQuiz(questions []models.QuizQuestion, in io.Reader, out io.Writer) int {
	scanner := bufio.NewScanner(in)
	score := 0

	for i, q := range questions {
		fmt.Fprintf(out, "\nQuestion %d of %d\n%s", i+1, len(questions), formatQuestion(q))

		answer := -1
		for answer < 0 {
			fmt.Fprint(out, "Answer: ")
			if !scanner.Scan() {
				fmt.Fprintf(out, "\nScore: %d/%d\n", score, len(questions))
				return score
			}
			n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
			if err != nil || n < 1 || n > len(q.Options) {
				fmt.Fprintf(out, "Enter a number from 1 to %d\n", len(q.Options))
				continue
			}
			answer = n - 1
		}

		if answer == q.CorrectAnswer {
			score++
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong. The answer is %d. %s\n", q.CorrectAnswer+1, q.Options[q.CorrectAnswer])
		}
		if q.Explanation != "" {
			fmt.Fprintln(out, q.Explanation)
		}
	}

	fmt.Fprintf(out, "\nScore: %d/%d\n", score, len(questions))
	return score
}
