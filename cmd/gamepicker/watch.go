package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the game list on screen and refresh it on an interval",
	Long: `Seed the local cache from the saved snapshot and the server's snapshot,
then print the list whenever it changes. The list is refetched every
QUERY_REFETCH_INTERVAL while the command runs.`,
	Args: cobra.NoArgs,
	RunE: withSession(runWatch),
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string, s *session) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.restore()
	snapCtx, cancel := context.WithTimeout(ctx, timeout)
	snap, err := s.remote.Snapshot(snapCtx)
	cancel()
	if err != nil {
		s.log.Warn().Err(err).Msg("snapshot unavailable, fetching directly")
	} else {
		s.client.Hydrate(snap)
	}

	out := cmd.OutOrStdout()
	var mu sync.Mutex

	games := gamequery.SelectGames(s.games, func(list []game.Game, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			fmt.Fprintf(out, "refresh failed: %v (showing last known list)\n", err)
			return
		}
		fmt.Fprintln(out)
		printGames(out, list)
	})
	defer games.Close()

	updated := gamequery.SelectLastExecuted(s.games, func(t time.Time, err error) {
		if err != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(out, "Last updated: %s\n", gamequery.FormatLastExecuted(t, time.Local))
	})
	defer updated.Close()

	<-ctx.Done()
	s.persist()
	return nil
}
