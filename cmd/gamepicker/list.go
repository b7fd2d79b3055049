package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the game list once",
	Args:  cobra.NoArgs,
	RunE:  withSession(runList),
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string, s *session) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	s.restore()
	data, err := s.games.Get(ctx)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}
	s.persist()
	out := cmd.OutOrStdout()
	printGames(out, data.Games)
	fmt.Fprintf(out, "\nLast updated: %s\n", gamequery.FormatLastExecuted(data.LastExecuted, time.Local))
	return nil
}

func kindLabel(g game.Game) string {
	return game.Match(g,
		func(game.FetchedSteam) string { return "owned" },
		func(game.StoredSteam) string { return "tracked" },
		func(game.StoredCustom) string { return "custom" },
	)
}

func printGames(w io.Writer, games []game.Game) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYERS\tNAME\tTYPE\tID")
	for _, g := range games {
		b := g.Fields()
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.Count, b.Name, kindLabel(g), b.ID)
	}
	_ = tw.Flush()
}
