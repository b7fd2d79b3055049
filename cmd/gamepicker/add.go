package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/mutation"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a tracked Steam game or a custom game",
}

var addSteamCmd = &cobra.Command{
	Use:     "steam <app-id>",
	Short:   "Track a Steam game by app id",
	Example: `  gamepicker add steam 730`,
	Args:    cobra.ExactArgs(1),
	RunE:    withSession(runAddSteam),
}

var addCustomCmd = &cobra.Command{
	Use:     "custom",
	Short:   "Add a custom game",
	Example: `  gamepicker add custom --name Chess --icon-url https://example.com/chess.png --players 2`,
	Args:    cobra.NoArgs,
	RunE:    withSession(runAddCustom),
}

var (
	customName    string
	customIconURL string
	customPlayers int
)

func init() {
	addCustomCmd.Flags().StringVar(&customName, "name", "", "game name")
	addCustomCmd.Flags().StringVar(&customIconURL, "icon-url", "", "icon image URL")
	addCustomCmd.Flags().IntVar(&customPlayers, "players", 0, "player count (at least 1)")
	addCmd.AddCommand(addSteamCmd, addCustomCmd)
	rootCmd.AddCommand(addCmd)
}

func runAddSteam(cmd *cobra.Command, args []string, s *session) error {
	form := mutation.NewForm(mutation.AddSteamGame{}, func(o mutation.AddSteamGame) mutation.Op { return o })
	form.Set(mutation.AddSteamGame{ID: args[0]})
	return submit(cmd, s, form, "Tracking Steam app "+args[0])
}

func runAddCustom(cmd *cobra.Command, args []string, s *session) error {
	form := mutation.NewForm(game.CustomInput{}, func(in game.CustomInput) mutation.Op {
		return mutation.AddCustomGame{CustomInput: in}
	})
	form.Set(game.CustomInput{Name: customName, IconURL: customIconURL, Players: customPlayers})
	return submit(cmd, s, form, "Added "+customName)
}

// submitter is the part of mutation.Form the commands use.
type submitter interface {
	Submit(ctx context.Context, p *mutation.Pipeline) error
}

func submit(cmd *cobra.Command, s *session, form submitter, done string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := form.Submit(ctx, s.pipeline); err != nil {
		printFieldErrors(cmd.ErrOrStderr(), err)
		return err
	}
	s.forget()
	fmt.Fprintln(cmd.OutOrStdout(), done)
	return nil
}

func printFieldErrors(w io.Writer, err error) {
	var ve *game.ValidationError
	if !errors.As(err, &ve) {
		return
	}
	fields := make([]string, 0, len(ve.Fields))
	for f := range ve.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(w, "  %s: %s\n", f, ve.Fields[f])
	}
}
