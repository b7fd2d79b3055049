package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/mutation"
)

var removeCmd = &cobra.Command{
	Use:   "remove <storedSteam|storedCustom> <id>",
	Short: "Remove a tracked Steam game or a custom game",
	Example: `  gamepicker remove storedSteam 730
  gamepicker remove storedCustom 0b6f3c1e-3d4a-4a43-9d55-2f1f0d0b5a71`,
	Args: cobra.ExactArgs(2),
	RunE: withSession(runRemove),
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string, s *session) error {
	ref, err := game.ParseRef(args[0], args[1])
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if err := s.pipeline.Mutate(ctx, mutation.RemoveGame{Ref: ref}); err != nil {
		return err
	}
	s.forget()
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %s\n", ref.Kind, ref.ID)
	return nil
}
