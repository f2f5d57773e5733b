// Package api exposes a verse model as a JSON REST API.
//
// Endpoints:
//
//	GET /api/line?syllables=<n>[&rhyme=<word>][&seed=<w1+w2>][&tries=<n>]
//	GET /api/stanza[?meter=common|long|short]
//	GET /api/rhymes?word=<word>
//	GET /api/syllables?word=<word>
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/kalexmills/verse-hammer/src/versemarkov"
	"github.com/kalexmills/verse-hammer/src/versemarkov/db"
	"github.com/rs/cors"
)

type lineResponse struct {
	Words    []string `json:"words"`
	Line     string   `json:"line"`
	Attempts int      `json:"attempts"`
}

type stanzaResponse struct {
	ID       string   `json:"id"`
	Meter    string   `json:"meter"`
	Lines    []string `json:"lines"`
	Archived bool     `json:"archived"`
}

type rhymesResponse struct {
	Word   string   `json:"word"`
	Rhymes []string `json:"rhymes"`
}

type syllablesResponse struct {
	Word      string `json:"word"`
	Syllables int    `json:"syllables"`
	Known     bool   `json:"known"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Config struct {
	AllowedOrigins []string
	DefaultMeter   string
	// Tries is the default number of attempts per line; zero keeps the model default.
	Tries int
	// Archive, when set, stores every stanza served by /api/stanza.
	Archive *sql.DB
}

// Server serves generation requests against a single read-only model.
type Server struct {
	model  *versemarkov.Model
	config Config
}

func NewServer(model *versemarkov.Model, config Config) *Server {
	if config.DefaultMeter == "" {
		config.DefaultMeter = versemarkov.CommonMeter.Name
	}
	return &Server{model: model, config: config}
}

// Handler returns the API routes wrapped with CORS handling for the configured origins.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/line", s.handleLine)
	mux.HandleFunc("/api/stanza", s.handleStanza)
	mux.HandleFunc("/api/rhymes", s.handleRhymes)
	mux.HandleFunc("/api/syllables", s.handleSyllables)

	c := cors.New(cors.Options{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(mux)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return false
	}
	return true
}

func (s *Server) handleLine(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	q := r.URL.Query()
	length, err := strconv.Atoi(q.Get("syllables"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing or invalid 'syllables' query parameter")
		return
	}
	var opts []versemarkov.GenerateOption
	if rhyme := q.Get("rhyme"); rhyme != "" {
		opts = append(opts, versemarkov.WithRhyme(rhyme))
	}
	if seed := strings.Fields(q.Get("seed")); len(seed) > 0 {
		opts = append(opts, versemarkov.WithSeed(seed...))
	}
	if s.config.Tries > 0 {
		opts = append(opts, versemarkov.WithTries(s.config.Tries))
	}
	if raw := q.Get("tries"); raw != "" {
		tries, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'tries' query parameter")
			return
		}
		opts = append(opts, versemarkov.WithTries(tries))
	}

	result, err := s.model.Generate(length, opts...)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !result.Found() {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no %d-syllable line found after %d attempts", length, result.Attempts))
		return
	}
	writeJSON(w, http.StatusOK, lineResponse{
		Words:    result.Words,
		Line:     result.String(),
		Attempts: result.Attempts,
	})
}

func (s *Server) handleStanza(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	name := r.URL.Query().Get("meter")
	if name == "" {
		name = s.config.DefaultMeter
	}
	meter, err := versemarkov.MeterByName(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var opts []versemarkov.StanzaOption
	if s.config.Tries > 0 {
		opts = append(opts, versemarkov.WithLineOptions(versemarkov.WithTries(s.config.Tries)))
	}
	stanza, err := s.model.Assemble(meter, opts...)
	if errors.Is(err, versemarkov.ErrStanzaExhausted) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := stanzaResponse{
		ID:    uuid.New().String(),
		Meter: meter.Name,
		Lines: stanza.Lines(),
	}
	if s.config.Archive != nil {
		resp.Archived = s.archive(r.Context(), resp.ID, meter, stanza)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) archive(ctx context.Context, id string, meter versemarkov.Meter, stanza versemarkov.Stanza) bool {
	_, err := db.Archive(ctx, s.config.Archive, db.Stanza{
		StanzaID: id,
		Meter:    meter.Name,
		Content:  stanza.String(),
	})
	if errors.Is(err, db.ErrDuplicate) {
		return false
	}
	if err != nil {
		log.Println("could not archive stanza,", err)
		return false
	}
	return true
}

func (s *Server) handleRhymes(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	word := r.URL.Query().Get("word")
	if word == "" {
		writeError(w, http.StatusBadRequest, "missing 'word' query parameter")
		return
	}
	rhymes := s.model.FindRhymes(word).Words()
	if rhymes == nil {
		rhymes = []string{}
	}
	writeJSON(w, http.StatusOK, rhymesResponse{Word: word, Rhymes: rhymes})
}

func (s *Server) handleSyllables(w http.ResponseWriter, r *http.Request) {
	if !requireGet(w, r) {
		return
	}
	word := r.URL.Query().Get("word")
	if word == "" {
		writeError(w, http.StatusBadRequest, "missing 'word' query parameter")
		return
	}
	writeJSON(w, http.StatusOK, syllablesResponse{
		Word:      word,
		Syllables: s.model.CountSyllables(word),
		Known:     s.model.Dictionary().IsWord(strings.Trim(word, versemarkov.Punctuation)),
	})
}
