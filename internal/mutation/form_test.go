package mutation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/briangreenhill/gamepicker/internal/game"
)

func customForm(initial game.CustomInput) *Form[game.CustomInput] {
	return NewForm(initial, func(in game.CustomInput) Op { return AddCustomGame{CustomInput: in} })
}

func TestFormSuccessClosesAndResets(t *testing.T) {
	remote, _, _, p := setup(t)
	f := customForm(game.CustomInput{})
	assert.Equal(t, Idle, f.State())

	in := game.CustomInput{Name: "Chess", IconURL: "https://example.com/c.png", Players: 2}
	f.Set(in)
	require.NoError(t, f.Submit(context.Background(), p))

	assert.Equal(t, Closed, f.State())
	assert.Equal(t, game.CustomInput{}, f.Values())
	assert.NoError(t, f.Err())
	_, writes := remote.counts()
	assert.Equal(t, 1, writes)
}

func TestFormFailureKeepsValues(t *testing.T) {
	remote, _, _, p := setup(t)
	remote.writeErr = errors.New("down")
	f := customForm(game.CustomInput{})

	in := game.CustomInput{Name: "Chess", IconURL: "https://example.com/c.png", Players: 2}
	f.Set(in)
	err := f.Submit(context.Background(), p)
	require.ErrorIs(t, err, ErrRemoteWrite)

	assert.Equal(t, Failed, f.State())
	assert.Equal(t, in, f.Values())
	assert.ErrorIs(t, f.Err(), ErrRemoteWrite)

	f.Open()
	assert.Equal(t, Idle, f.State())
	assert.NoError(t, f.Err())
	assert.Equal(t, in, f.Values())

	remote.mu.Lock()
	remote.writeErr = nil
	remote.mu.Unlock()
	require.NoError(t, f.Submit(context.Background(), p))
	assert.Equal(t, Closed, f.State())
}

func TestFormValidationFailure(t *testing.T) {
	remote, _, _, p := setup(t)
	f := customForm(game.CustomInput{})
	f.Set(game.CustomInput{Name: "Chess", IconURL: "https://example.com/c.png"})

	err := f.Submit(context.Background(), p)
	var ve *game.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, Failed, f.State())
	assert.Equal(t, "Chess", f.Values().Name)
	_, writes := remote.counts()
	assert.Zero(t, writes)
}

func TestEditFormPrefill(t *testing.T) {
	c := game.StoredCustom{Base: game.Base{ID: "c1", Name: "Chess", IconURL: "https://example.com/c.png", Count: 4}}
	op := EditCustomGame(c)
	f := NewForm(op, func(u UpdateCustomGame) Op { return u })
	assert.Equal(t, 4, f.Values().Players)
	assert.Equal(t, "c1", f.Values().ID)
}
