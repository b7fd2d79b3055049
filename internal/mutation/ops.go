package mutation

import (
	"context"
	"fmt"

	"github.com/briangreenhill/gamepicker/internal/catalog"
	"github.com/briangreenhill/gamepicker/internal/game"
)

// Op is one of AddSteamGame, AddCustomGame, UpdateCustomGame or RemoveGame.
type Op interface {
	fmt.Stringer
	Validate() error
	apply(ctx context.Context, w catalog.Writer) error
}

// AddSteamGame starts tracking a Steam app id.
type AddSteamGame struct {
	ID string
}

func (o AddSteamGame) String() string { return "add steam game " + o.ID }

func (o AddSteamGame) Validate() error { return game.ValidateSteamID(o.ID) }

func (o AddSteamGame) apply(ctx context.Context, w catalog.Writer) error {
	return w.AddTrackedSteamGame(ctx, o.ID)
}

// AddCustomGame creates a user-defined game.
type AddCustomGame struct {
	game.CustomInput
}

func (o AddCustomGame) String() string { return "add custom game " + o.Name }

func (o AddCustomGame) Validate() error { return o.CustomInput.Validate() }

func (o AddCustomGame) apply(ctx context.Context, w catalog.Writer) error {
	return w.AddCustomGame(ctx, o.CustomInput)
}

// UpdateCustomGame replaces the fields of a custom game.
type UpdateCustomGame struct {
	ID string
	game.CustomInput
}

func (o UpdateCustomGame) String() string { return "update custom game " + o.ID }

func (o UpdateCustomGame) Validate() error {
	err := o.CustomInput.Validate()
	if o.ID != "" {
		return err
	}
	ve, _ := err.(*game.ValidationError)
	if ve == nil {
		ve = &game.ValidationError{Fields: map[string]string{}}
	}
	ve.Fields["id"] = "id is required"
	return ve
}

func (o UpdateCustomGame) apply(ctx context.Context, w catalog.Writer) error {
	return w.UpdateCustomGame(ctx, o.ID, o.CustomInput)
}

// RemoveGame deletes a tracked Steam game or a custom game.
type RemoveGame struct {
	Ref game.Ref
}

func (o RemoveGame) String() string { return fmt.Sprintf("remove %s %s", o.Ref.Kind, o.Ref.ID) }

func (o RemoveGame) Validate() error {
	if _, err := game.ParseRef(string(o.Ref.Kind), o.Ref.ID); err != nil {
		return &game.ValidationError{Fields: map[string]string{"ref": err.Error()}}
	}
	return nil
}

func (o RemoveGame) apply(ctx context.Context, w catalog.Writer) error {
	return w.RemoveGame(ctx, o.Ref)
}

// RemoveGameOf builds the removal for g; ok is false when g cannot be removed.
func RemoveGameOf(g game.Game) (RemoveGame, bool) {
	ref, ok := game.RefOf(g)
	return RemoveGame{Ref: ref}, ok
}

// EditCustomGame prefills an update from an existing custom game.
func EditCustomGame(c game.StoredCustom) UpdateCustomGame {
	return UpdateCustomGame{
		ID:          c.ID,
		CustomInput: game.CustomInput{Name: c.Name, IconURL: c.IconURL, Players: c.Count},
	}
}
