// Package game defines the game list data model: the three game variants,
// the cached GameData value and the rules for merging and validating them.
package game

import (
	"fmt"
	"time"
)

// Kind discriminates the game variants on the wire.
type Kind string

const (
	KindFetchedSteam Kind = "fetchedSteam"
	KindStoredSteam  Kind = "storedSteam"
	KindStoredCustom Kind = "storedCustom"
)

// Base holds the fields shared by every variant. ID is the de-duplication
// and removal/update key.
type Base struct {
	ID      string
	Name    string
	IconURL string
	Count   int
}

// Game is a sealed sum type over FetchedSteam, StoredSteam and StoredCustom.
// Consume it with Match.
type Game interface {
	Fields() Base
	Kind() Kind
	sealed()
}

// FetchedSteam is a game owned by the configured Steam account. It is
// derived live and never persisted.
type FetchedSteam struct{ Base }

// StoredSteam is a Steam app id the user tracks, enriched at read time.
type StoredSteam struct{ Base }

// StoredCustom is a user-owned record; Count holds its player count.
type StoredCustom struct{ Base }

func (g FetchedSteam) Fields() Base { return g.Base }
func (g StoredSteam) Fields() Base  { return g.Base }
func (g StoredCustom) Fields() Base { return g.Base }

func (FetchedSteam) Kind() Kind { return KindFetchedSteam }
func (StoredSteam) Kind() Kind  { return KindStoredSteam }
func (StoredCustom) Kind() Kind { return KindStoredCustom }

func (FetchedSteam) sealed() {}
func (StoredSteam) sealed()  {}
func (StoredCustom) sealed() {}

// Match dispatches g to the handler for its variant. Handlers are positional
// so that adding a variant breaks every call site at compile time.
func Match[R any](g Game, fetched func(FetchedSteam) R, stored func(StoredSteam) R, custom func(StoredCustom) R) R {
	switch v := g.(type) {
	case FetchedSteam:
		return fetched(v)
	case StoredSteam:
		return stored(v)
	case StoredCustom:
		return custom(v)
	default:
		panic(fmt.Sprintf("game: unknown variant %T", g))
	}
}

// Ref identifies a persisted game for removal.
type Ref struct {
	ID   string `json:"id"`
	Kind Kind   `json:"type"`
}

// ParseRef builds a Ref from its wire form, rejecting kinds that cannot be removed.
func ParseRef(kind, id string) (Ref, error) {
	k := Kind(kind)
	if k != KindStoredSteam && k != KindStoredCustom {
		return Ref{}, fmt.Errorf("game kind %q cannot be removed", kind)
	}
	if id == "" {
		return Ref{}, fmt.Errorf("game id required")
	}
	return Ref{ID: id, Kind: k}, nil
}

// RefOf returns the removal reference of g; ok is false for fetched games.
func RefOf(g Game) (ref Ref, ok bool) {
	type result struct {
		ref Ref
		ok  bool
	}
	r := Match(g,
		func(FetchedSteam) result { return result{} },
		func(s StoredSteam) result { return result{Ref{ID: s.ID, Kind: KindStoredSteam}, true} },
		func(c StoredCustom) result { return result{Ref{ID: c.ID, Kind: KindStoredCustom}, true} },
	)
	return r.ref, r.ok
}

// Removable reports whether g has a persisted record that can be deleted.
func Removable(g Game) bool {
	_, ok := RefOf(g)
	return ok
}

// Editable reports whether g's fields are user-owned.
func Editable(g Game) bool {
	return Match(g,
		func(FetchedSteam) bool { return false },
		func(StoredSteam) bool { return false },
		func(StoredCustom) bool { return true },
	)
}

// Data is the cached value: the merged list and when it was computed.
type Data struct {
	Games        []Game
	LastExecuted time.Time
}

// Placeholder stands in for a tracked game whose lookup failed.
func Placeholder(kind Kind, id, reason string) Game {
	b := Base{ID: id, Name: fmt.Sprintf("Invalid tracked Steam ID (%s): %s", reason, id)}
	if kind == KindFetchedSteam {
		return FetchedSteam{b}
	}
	return StoredSteam{b}
}
