package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BmintBe/Gazdalkodj-okosabban/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	msgPlayerDeleted = "Játékos törölve"
	msgGameReset     = "Játék nullázva"
)

type Server struct {
	log  *slog.Logger
	game *game.Service
	mux  *chi.Mux
}

func New(logger *slog.Logger, gameSvc *game.Service) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:  logger,
		game: gameSvc,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/players", s.handlePlayersList)
		r.Post("/players", s.handlePlayerCreate)
		r.Delete("/players/{id}", s.handlePlayerDelete)
		r.Put("/players/{id}", s.handlePlayerUpdate)
		r.Patch("/players/{id}", s.handlePlayerUpdate)

		r.Post("/transaction", s.handleTransaction)
		r.Get("/transactions", s.handleTransactionsList)

		r.Get("/currency", s.handleCurrencyGet)
		r.Post("/currency", s.handleCurrencySet)

		r.Post("/reset", s.handleReset)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) handlePlayersList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.ListPlayers())
}

// createPlayerRequest accepts currency for compatibility with older clients;
// new players always use the game's current currency.
type createPlayerRequest struct {
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Currency string `json:"currency"`
}

func (s *Server) handlePlayerCreate(w http.ResponseWriter, r *http.Request) {
	var req createPlayerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	player, err := s.game.CreatePlayer(r.Context(), game.CreatePlayerInput{
		Name:   req.Name,
		Avatar: req.Avatar,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, player)
}

func (s *Server) handlePlayerDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	if err := s.game.DeletePlayer(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msgPlayerDeleted})
}

func (s *Server) handlePlayerUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := playerID(w, r)
	if !ok {
		return
	}
	var patch game.PlayerPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	player, err := s.game.PatchPlayer(r.Context(), id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

type transactionRequest struct {
	PlayerID      int     `json:"player_id"`
	CashAmount    int64   `json:"cash_amount"`
	AccountAmount int64   `json:"account_amount"`
	Description   *string `json:"description"`
}

func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	in := game.TransactionInput{
		PlayerID:      req.PlayerID,
		CashAmount:    req.CashAmount,
		AccountAmount: req.AccountAmount,
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	res, err := s.game.RecordTransaction(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleTransactionsList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.game.ListTransactions())
}

func (s *Server) handleCurrencyGet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"currency": s.game.Currency()})
}

func (s *Server) handleCurrencySet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string `json:"currency"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	code := strings.TrimSpace(req.Currency)
	if code == "" {
		code = game.DefaultCurrency
	}
	current, err := s.game.SetCurrency(r.Context(), code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"currency": current})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.game.ResetGame(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"message": msgGameReset})
}

func playerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid player id %q", chi.URLParam(r, "id")))
		return 0, false
	}
	return id, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrPlayerNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSON tolerates unknown fields: clients echo whole player objects
// (including id) back as patches.
func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
