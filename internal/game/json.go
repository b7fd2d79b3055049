package game

import (
	"encoding/json"
	"fmt"
	"time"
)

type wireGame struct {
	Type    Kind   `json:"type"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	IconURL string `json:"iconURL,omitempty"`
	Count   int    `json:"count"`
}

type wireData struct {
	Games        []wireGame `json:"games"`
	LastExecuted time.Time  `json:"lastExecuted"`
}

func toWire(g Game) wireGame {
	b := g.Fields()
	return wireGame{Type: g.Kind(), ID: b.ID, Name: b.Name, IconURL: b.IconURL, Count: b.Count}
}

func fromWire(w wireGame) (Game, error) {
	b := Base{ID: w.ID, Name: w.Name, IconURL: w.IconURL, Count: w.Count}
	switch w.Type {
	case KindFetchedSteam:
		return FetchedSteam{b}, nil
	case KindStoredSteam:
		return StoredSteam{b}, nil
	case KindStoredCustom:
		return StoredCustom{b}, nil
	default:
		return nil, fmt.Errorf("unknown game type %q", w.Type)
	}
}

// MarshalJSON encodes d with a "type" discriminator on every game.
func (d Data) MarshalJSON() ([]byte, error) {
	w := wireData{Games: make([]wireGame, 0, len(d.Games)), LastExecuted: d.LastExecuted.UTC()}
	for _, g := range d.Games {
		w.Games = append(w.Games, toWire(g))
	}
	return json.Marshal(w)
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var w wireData
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	games := make([]Game, 0, len(w.Games))
	for _, wg := range w.Games {
		g, err := fromWire(wg)
		if err != nil {
			return err
		}
		games = append(games, g)
	}
	d.Games = games
	d.LastExecuted = w.LastExecuted
	return nil
}
