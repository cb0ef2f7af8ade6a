package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/questions"
)

const defaultBatchFile = "templates/add.txt"

// readBatch parses a JSON array of questions from path.
func readBatch(path string) ([]domain.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	qs, err := domain.DecodeQuestions(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return qs, nil
}

func appendBatch(ctx context.Context, cmd *cobra.Command, s *questions.Store, category, path string) error {
	batch, err := readBatch(path)
	if err != nil {
		return err
	}
	if err := s.AppendQuestions(ctx, category, batch); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "appended %d questions to %s\n", len(batch), category)
	return nil
}

// create-category <name>: add an empty category.
func createCategoryCmd(a *app) *cobra.Command {
	var batchFile string
	cmd := &cobra.Command{
		Use:   "create-category <name>",
		Short: "Create an empty category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			s, closeFn, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := s.CreateCategory(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created category %s\n", args[0])

			if batchFile == "" {
				return nil
			}
			return appendBatch(ctx, cmd, s, args[0], batchFile)
		},
	}
	cmd.Flags().StringVar(&batchFile, "questions", "", "JSON file with questions to add right away")
	return cmd
}

// append <category>: append a batch of questions.
func appendCmd(a *app) *cobra.Command {
	var batchFile string
	cmd := &cobra.Command{
		Use:   "append <category>",
		Short: "Append questions from a JSON array file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			s, closeFn, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			return appendBatch(ctx, cmd, s, args[0], batchFile)
		},
	}
	cmd.Flags().StringVar(&batchFile, "questions", defaultBatchFile, "JSON file with the questions")
	return cmd
}

// delete-question <category> <index>: delete by 0-based position.
func deleteQuestionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-question <category> <index>",
		Short: "Delete the question at a 0-based index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be an integer: %w", err)
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			s, closeFn, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			before, ok := s.Questions(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, args[0])
			}
			if index < 0 || index >= len(before) {
				return fmt.Errorf("index %d out of range, %s has %d questions", index, args[0], len(before))
			}

			after := s.DeleteQuestion(ctx, args[0], index)
			if st := s.Status(); st.LastError != "" {
				return fmt.Errorf("question removed locally but not saved: %s", st.LastError)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %q, %d questions left in %s\n",
				domain.Sanitize(before[index].Text), len(after), args[0])
			return nil
		},
	}
}
