package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/mutation"
)

var editCmd = &cobra.Command{
	Use:     "edit <custom-id>",
	Short:   "Change a custom game; unset flags keep their current value",
	Example: `  gamepicker edit 0b6f3c1e-3d4a-4a43-9d55-2f1f0d0b5a71 --players 4`,
	Args:    cobra.ExactArgs(1),
	RunE:    withSession(runEdit),
}

func init() {
	editCmd.Flags().StringVar(&customName, "name", "", "game name")
	editCmd.Flags().StringVar(&customIconURL, "icon-url", "", "icon image URL")
	editCmd.Flags().IntVar(&customPlayers, "players", 0, "player count (at least 1)")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string, s *session) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	data, err := s.games.Get(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}

	current, err := findCustom(data.Games, args[0])
	if err != nil {
		return err
	}

	edit := mutation.EditCustomGame(current)
	flags := cmd.Flags()
	if flags.Changed("name") {
		edit.Name = customName
	}
	if flags.Changed("icon-url") {
		edit.IconURL = customIconURL
	}
	if flags.Changed("players") {
		edit.Players = customPlayers
	}

	form := mutation.NewForm(mutation.EditCustomGame(current), func(u mutation.UpdateCustomGame) mutation.Op { return u })
	form.Set(edit)
	return submit(cmd, s, form, "Updated "+edit.Name)
}

func findCustom(games []game.Game, id string) (game.StoredCustom, error) {
	for _, g := range games {
		if !game.Editable(g) || g.Fields().ID != id {
			continue
		}
		if c, ok := g.(game.StoredCustom); ok {
			return c, nil
		}
	}
	return game.StoredCustom{}, fmt.Errorf("no custom game with id %q", id)
}
