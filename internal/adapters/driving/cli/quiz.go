package cli

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clauselab/internal/core/domain"
	"github.com/custodia-labs/clauselab/internal/core/ports/driving"
)

var (
	quizSelect []string
	quizKey    bool
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a multiple-choice quiz on the loaded standards",
	Long: `Generates multiple-choice questions for each selected document and asks
them one at a time. Answer with the option letter or number; the first answer
to a question is final. A score and a review are printed at the end.

Use --key to print the questions with their answers instead.`,
	Args: cobra.NoArgs,
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().StringSliceVarP(&quizSelect, "select", "s", nil,
		"document ID or name to include (repeatable, default all)")
	quizCmd.Flags().BoolVar(&quizKey, "key", false, "print questions with answers and exit")
	rootCmd.AddCommand(quizCmd)
}

func runQuiz(cmd *cobra.Command, _ []string) error {
	if err := requireGeneration(); err != nil {
		return err
	}
	if newQuiz == nil {
		return errors.New("quiz sessions not configured")
	}

	ctx := commandContext(cmd)
	session := newQuiz()
	if err := selectDocuments(ctx, session, quizSelect); err != nil {
		return err
	}

	ticket, err := session.Begin(ctx)
	if err != nil {
		return err
	}
	questions := generationService.QuizBatch(ctx, ticket.Documents, progressPrinter(cmd, session.Track(ticket.Epoch)))
	if err := session.Complete(ticket.Epoch, questions); err != nil {
		return generationFailed(err)
	}

	if quizKey {
		printAnswerKey(cmd, session)
		return nil
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		view, ok := session.Current()
		if !ok {
			return errors.New("quiz has no current question")
		}
		printQuestion(cmd, view)

		option, err := promptOption(cmd, reader, view.Options)
		if err != nil {
			return err
		}
		if _, err := session.Select(option); err != nil {
			return err
		}
		if view.Question.IsCorrect(option) {
			cmd.Println("Correct!")
		} else {
			cmd.Printf("Incorrect. Correct answer: %s\n", view.Question.CorrectAnswer)
		}
		for _, c := range view.Question.Citations {
			cmd.Printf("  %s\n", c.String())
		}
		cmd.Println()

		if view.IsLast {
			result, err := session.Finish()
			if err != nil {
				return err
			}
			printQuizResult(cmd, result)
			return nil
		}
		if err := session.Next(); err != nil {
			return err
		}
	}
}

func printQuestion(cmd *cobra.Command, view driving.QuizView) {
	cmd.Printf("Question %d of %d\n", view.Index+1, view.Total)
	cmd.Println(view.Question.Question)
	for i, opt := range view.Options {
		cmd.Printf("  %s) %s\n", optionLabel(i), opt)
	}
}

// promptOption reads until the user picks a valid option.
func promptOption(cmd *cobra.Command, reader *bufio.Reader, options []string) (string, error) {
	for {
		cmd.Printf("Answer [%s-%s]: ", optionLabel(0), optionLabel(len(options)-1))
		line, err := reader.ReadString('\n')
		input := strings.TrimSpace(line)
		if input != "" {
			if idx, ok := parseOption(input, len(options)); ok {
				return options[idx], nil
			}
			cmd.Println("Invalid choice.")
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", errors.New("quiz aborted: no more input")
			}
			return "", err
		}
	}
}

// parseOption accepts a letter (a, B) or a 1-based number.
func parseOption(input string, n int) (int, bool) {
	if len(input) == 1 {
		c := input[0] | 0x20
		if c >= 'a' && c < 'a'+byte(n) {
			return int(c - 'a'), true
		}
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > n {
		return 0, false
	}
	return val - 1, true
}

func optionLabel(i int) string {
	return string(rune('a' + i))
}

func printAnswerKey(cmd *cobra.Command, session driving.QuizSession) {
	for {
		view, ok := session.Current()
		if !ok {
			return
		}
		printQuestion(cmd, view)
		cmd.Printf("  Answer: %s\n", view.Question.CorrectAnswer)
		for _, c := range view.Question.Citations {
			cmd.Printf("  %s\n", c.String())
		}
		cmd.Println()
		if view.IsLast || session.Next() != nil {
			return
		}
	}
}

func printQuizResult(cmd *cobra.Command, result domain.QuizResult) {
	cmd.Println("Results")
	cmd.Println("=======")
	cmd.Printf("Score: %d%% (%d/%d correct)\n\n", result.Score, result.CorrectCount, result.Total)
	for i, item := range result.Review {
		mark := "✗"
		if item.Correct {
			mark = "✓"
		}
		chosen := item.Chosen
		if !item.Answered {
			chosen = "(not answered)"
		}
		cmd.Printf("%s %d. %s\n", mark, i+1, item.Question.Question)
		cmd.Printf("    Your answer:    %s\n", chosen)
		cmd.Printf("    Correct answer: %s\n", item.Question.CorrectAnswer)
		for _, c := range item.Question.Citations {
			cmd.Printf("    %s\n", c.String())
		}
	}
}
