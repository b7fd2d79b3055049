package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/briangreenhill/gamepicker/internal/game"
	"github.com/briangreenhill/gamepicker/internal/mutation"
	"github.com/briangreenhill/gamepicker/internal/remote"
	"github.com/briangreenhill/gamepicker/internal/store"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger(r).Error().Err(err).Msg("encode response")
	}
}

// writeError maps err onto a status and the JSON error document the remote
// client decodes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *game.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, r, http.StatusBadRequest, remote.ErrorBody{Error: "invalid input", Fields: ve.Fields})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, remote.ErrorBody{Error: "not found"})
	case errors.Is(err, mutation.ErrRemoteWrite):
		writeJSON(w, r, http.StatusInternalServerError, remote.ErrorBody{Error: err.Error()})
	default:
		writeJSON(w, r, http.StatusBadGateway, remote.ErrorBody{Error: err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, r, http.StatusBadRequest, remote.ErrorBody{Error: "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleAPIGames(w http.ResponseWriter, r *http.Request) {
	_, q, _, ok := s.request(r)
	if !ok {
		http.Error(w, "query client missing", http.StatusInternalServerError)
		return
	}
	data, err := q.Get(r.Context())
	if err != nil {
		logger(r).Error().Err(err).Msg("load games failed")
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, data)
}

// handleAPISnapshot prefetches on a fresh client and returns its dehydrated
// state for a long-lived client to hydrate from.
func (s *Server) handleAPISnapshot(w http.ResponseWriter, r *http.Request) {
	c, q, _, ok := s.request(r)
	if !ok {
		http.Error(w, "query client missing", http.StatusInternalServerError)
		return
	}
	if _, err := q.Get(r.Context()); err != nil {
		logger(r).Error().Err(err).Msg("prefetch games failed")
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, c.Dehydrate())
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, op mutation.Op) {
	_, _, p, ok := s.request(r)
	if !ok {
		http.Error(w, "query client missing", http.StatusInternalServerError)
		return
	}
	if err := p.Mutate(r.Context(), op); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAPIAddSteam(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.mutate(w, r, mutation.AddSteamGame{ID: body.ID})
}

func (s *Server) handleAPIAddCustom(w http.ResponseWriter, r *http.Request) {
	var in game.CustomInput
	if !decodeBody(w, r, &in) {
		return
	}
	s.mutate(w, r, mutation.AddCustomGame{CustomInput: in})
}

func (s *Server) handleAPIUpdateCustom(w http.ResponseWriter, r *http.Request) {
	var in game.CustomInput
	if !decodeBody(w, r, &in) {
		return
	}
	s.mutate(w, r, mutation.UpdateCustomGame{ID: chi.URLParam(r, "id"), CustomInput: in})
}

func (s *Server) handleAPIRemove(w http.ResponseWriter, r *http.Request) {
	ref, err := game.ParseRef(chi.URLParam(r, "kind"), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, &game.ValidationError{Fields: map[string]string{"type": err.Error()}})
		return
	}
	s.mutate(w, r, mutation.RemoveGame{Ref: ref})
}
