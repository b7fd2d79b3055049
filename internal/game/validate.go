package game

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateSteamID checks that id is a positive integer Steam app id.
func ValidateSteamID(id string) error {
	var ve ValidationError
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	switch {
	case strings.TrimSpace(id) == "":
		ve.add("id", "id is required")
	case err != nil:
		ve.add("id", "id must be a number")
	case n <= 0:
		ve.add("id", "id must be positive")
	}
	return ve.orNil()
}

// CustomInput is the user-supplied part of a custom game.
type CustomInput struct {
	Name    string `json:"name"`
	IconURL string `json:"iconURL"`
	Players int    `json:"players"`
}

// Validate checks the name, the icon URL and that Players is at least 1.
func (in CustomInput) Validate() error {
	var ve ValidationError
	validateName(&ve, in.Name)
	validateIconURL(&ve, in.IconURL)
	if in.Players < 1 {
		ve.add("players", "players must be at least 1")
	}
	return ve.orNil()
}

// ParseCustomInput converts raw form values, reporting non-numeric player
// counts as a field error rather than a parse failure.
func ParseCustomInput(name, iconURL, players string) (CustomInput, error) {
	in := CustomInput{Name: strings.TrimSpace(name), IconURL: strings.TrimSpace(iconURL)}
	var ve ValidationError
	n, err := strconv.Atoi(strings.TrimSpace(players))
	if err != nil {
		ve.add("players", "players must be an integer")
	}
	in.Players = n
	if err := in.Validate(); err != nil {
		for k, v := range err.(*ValidationError).Fields {
			ve.add(k, v)
		}
	}
	return in, ve.orNil()
}

func validateName(ve *ValidationError, name string) {
	if strings.TrimSpace(name) == "" {
		ve.add("name", "name is required")
	}
}

func validateIconURL(ve *ValidationError, raw string) {
	if strings.TrimSpace(raw) == "" {
		ve.add("iconURL", "icon URL is required")
		return
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		ve.add("iconURL", fmt.Sprintf("%q is not a valid URL", raw))
	}
}
