package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/gamequery"
	"github.com/briangreenhill/gamepicker/internal/mutation"
	"github.com/briangreenhill/gamepicker/internal/store"
)

const flashKey = "form"

// Form names carried in the flash.
const (
	formSteam  = "steam"
	formCustom = "custom"
	formEdit   = "edit"
	formRemove = "remove"
)

// flash is a failed submission carried across the redirect.
type flash struct {
	Form    string            `json:"form"`
	ID      string            `json:"id,omitempty"`
	Values  map[string]string `json:"values"`
	Errors  map[string]string `json:"errors,omitempty"`
	Message string            `json:"message,omitempty"`
}

type formView struct {
	Values  map[string]string
	Errors  map[string]string
	Message string
}

type gameRow struct {
	ID        string
	Name      string
	IconURL   string
	Count     int
	Kind      game.Kind
	Label     string
	Removable bool
	Edit      *formView
}

type homePage struct {
	Title       string
	Games       []gameRow
	LastUpdated string
	Error       string
	SteamForm   formView
	CustomForm  formView
	Snapshot    gamequery.Snapshot
}

func emptyForm() formView {
	return formView{Values: map[string]string{}, Errors: map[string]string{}}
}

func (f *flash) view() formView {
	v := formView{Values: f.Values, Errors: f.Errors, Message: f.Message}
	if v.Values == nil {
		v.Values = map[string]string{}
	}
	if v.Errors == nil {
		v.Errors = map[string]string{}
	}
	return v
}

func customValues(c game.StoredCustom) map[string]string {
	return map[string]string{"name": c.Name, "iconURL": c.IconURL, "players": strconv.Itoa(c.Count)}
}

func toRow(g game.Game, fl *flash) gameRow {
	b := g.Fields()
	row := gameRow{ID: b.ID, Name: b.Name, IconURL: b.IconURL, Count: b.Count, Kind: g.Kind(), Removable: game.Removable(g)}
	row.Label = game.Match(g,
		func(game.FetchedSteam) string { return "Steam (owned)" },
		func(game.StoredSteam) string { return "Steam (tracked)" },
		func(c game.StoredCustom) string {
			edit := formView{Values: customValues(c), Errors: map[string]string{}}
			if fl != nil && fl.Form == formEdit && fl.ID == c.ID {
				edit = fl.view()
			}
			row.Edit = &edit
			return "Custom"
		},
	)
	return row
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	c, q, _, ok := s.request(r)
	if !ok {
		http.Error(w, "query client missing", http.StatusInternalServerError)
		return
	}

	page := homePage{Title: "Games", SteamForm: emptyForm(), CustomForm: emptyForm()}
	fl := s.popFlash(r)
	if fl != nil {
		switch fl.Form {
		case formSteam:
			page.SteamForm = fl.view()
		case formCustom:
			page.CustomForm = fl.view()
		case formRemove:
			page.Error = fl.Message
		}
	}

	data, err := q.Get(r.Context())
	if err != nil {
		logger(r).Error().Err(err).Msg("load games failed")
		page.Error = "Could not load games: " + err.Error()
	}
	for _, g := range data.Games {
		page.Games = append(page.Games, toRow(g, fl))
	}
	page.LastUpdated = gamequery.FormatLastExecuted(data.LastExecuted, time.Local)
	page.Snapshot = c.Dehydrate()

	s.render(w, r, "home", page)
}

func (s *Server) handleAddSteamForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	values := map[string]string{"id": r.Form.Get("id")}
	s.submitForm(w, r, &flash{Form: formSteam, Values: values}, func() (mutation.Op, error) {
		return mutation.AddSteamGame{ID: values["id"]}, nil
	})
}

func (s *Server) handleAddCustomForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	values := customFormValues(r)
	s.submitForm(w, r, &flash{Form: formCustom, Values: values}, func() (mutation.Op, error) {
		in, err := game.ParseCustomInput(values["name"], values["iconURL"], values["players"])
		return mutation.AddCustomGame{CustomInput: in}, err
	})
}

func (s *Server) handleEditCustomForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	values := customFormValues(r)
	s.submitForm(w, r, &flash{Form: formEdit, ID: id, Values: values}, func() (mutation.Op, error) {
		in, err := game.ParseCustomInput(values["name"], values["iconURL"], values["players"])
		return mutation.UpdateCustomGame{ID: id, CustomInput: in}, err
	})
}

func (s *Server) handleRemoveForm(w http.ResponseWriter, r *http.Request) {
	ref, err := game.ParseRef(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.submitForm(w, r, &flash{Form: formRemove, ID: ref.ID}, func() (mutation.Op, error) {
		return mutation.RemoveGame{Ref: ref}, nil
	})
}

func customFormValues(r *http.Request) map[string]string {
	return map[string]string{
		"name":    r.Form.Get("name"),
		"iconURL": r.Form.Get("iconURL"),
		"players": r.Form.Get("players"),
	}
}

// submitForm runs the operation and redirects home. On failure fl is
// flashed so the page can show the submitted values and errors.
func (s *Server) submitForm(w http.ResponseWriter, r *http.Request, fl *flash, build func() (mutation.Op, error)) {
	_, _, p, ok := s.request(r)
	if !ok {
		http.Error(w, "query client missing", http.StatusInternalServerError)
		return
	}

	op, err := build()
	if err == nil {
		err = p.Mutate(r.Context(), op)
	}
	if err != nil {
		var ve *game.ValidationError
		switch {
		case errors.As(err, &ve):
			fl.Errors = ve.Fields
		case errors.Is(err, store.ErrNotFound):
			fl.Message = "That game no longer exists."
		default:
			fl.Message = "Saving failed. Please try again."
		}
		s.putFlash(r, fl)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) putFlash(r *http.Request, fl *flash) {
	b, err := json.Marshal(fl)
	if err != nil {
		logger(r).Error().Err(err).Msg("encode flash")
		return
	}
	s.Sess.Put(r.Context(), flashKey, string(b))
}

func (s *Server) popFlash(r *http.Request) *flash {
	raw := s.Sess.PopString(r.Context(), flashKey)
	if raw == "" {
		return nil
	}
	var fl flash
	if err := json.Unmarshal([]byte(raw), &fl); err != nil {
		logger(r).Warn().Err(err).Msg("discarding unreadable flash")
		return nil
	}
	return &fl
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.Tmpl.ExecuteTemplate(w, name, data); err != nil {
		logger(r).Error().Err(err).Str("template", name).Msg("render template failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
