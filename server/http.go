// server/http.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirhB/tickwatch/engine"
	"github.com/sirhB/tickwatch/feed"
	"go.uber.org/zap"
)

// Server is the HTTP/WS gateway in front of the engine. It only reads
// and writes through the engine's API; all state lives below it.
type Server struct {
	engine *engine.Engine
	log    *zap.Logger
}

func New(e *engine.Engine, log *zap.Logger) *Server {
	return &Server{engine: e, log: log}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/quotes", s.handleQuotes).Methods(http.MethodGet)
	api.HandleFunc("/quotes/{symbol}", s.handleQuote).Methods(http.MethodGet)
	api.HandleFunc("/session", s.handleSession).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.handleListAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts", s.handleAddAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts/{id}", s.handleRemoveAlert).Methods(http.MethodDelete)
	api.HandleFunc("/notifications", s.handleNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications", s.handleClearNotifications).Methods(http.MethodDelete)

	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func (s *Server) handleQuotes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Quotes())
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]
	q, err := s.engine.GetCurrentPrice(symbol)
	if err != nil {
		if errors.Is(err, feed.ErrUnknownSymbol) {
			writeError(w, http.StatusNotFound, "unknown symbol: "+symbol)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.MarketHours())
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	writeJSON(w, http.StatusOK, s.engine.PriceAlerts(symbol))
}

type addAlertRequest struct {
	Symbol      string  `json:"symbol"`
	TargetPrice float64 `json:"targetPrice"`
	Direction   string  `json:"direction"`
}

func (s *Server) handleAddAlert(w http.ResponseWriter, r *http.Request) {
	var req addAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request body: "+err.Error())
		return
	}

	a, err := s.engine.AddPriceAlert(req.Symbol, req.TargetPrice, req.Direction)
	if err != nil {
		if errors.Is(err, feed.ErrUnknownSymbol) {
			writeError(w, http.StatusNotFound, "unknown symbol: "+req.Symbol)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleRemoveAlert(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	removed := s.engine.RemovePriceAlert(id)
	status := http.StatusOK
	if !removed {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]bool{"removed": removed})
}

func (s *Server) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Notifications())
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, _ *http.Request) {
	s.engine.ClearNotifications()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
