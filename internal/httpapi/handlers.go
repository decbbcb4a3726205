package httpapi

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"

	"github.com/DoyleJ11/territory-backend/internal/engine"
	"github.com/DoyleJ11/territory-backend/internal/hub"
	"github.com/DoyleJ11/territory-backend/internal/lobby"
	"github.com/DoyleJ11/territory-backend/internal/store"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const codeAttempts = 8

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type gameSummary struct {
	Code       string         `json:"code"`
	Version    int            `json:"version"`
	NumClients int            `json:"num_clients"`
	Phase      engine.Phase   `json:"phase"`
	Winner     string         `json:"winner,omitempty"`
	Ticks      int            `json:"ticks"`
	State      lobby.Snapshot `json:"state"`
}

func summarize(v lobby.View) gameSummary {
	return gameSummary{
		Code:       v.Code,
		Version:    v.Version,
		NumClients: v.NumClients,
		Phase:      v.State.Phase,
		Winner:     v.State.Winner,
		Ticks:      v.State.Ticks,
		State:      v.Snapshot,
	}
}

func CreateGame(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var code string
		for i := 0; i < codeAttempts && code == ""; i++ {
			c, err := GenerateCode()
			if err != nil {
				http.Error(w, "failed to generate code", http.StatusInternalServerError)
				return
			}
			if h.Get(ctx, c) == nil {
				code = c
				continue
			}
			log.Debug("collision on code, regenerating", zap.String("code", c))
		}
		if code == "" {
			http.Error(w, "failed to generate code", http.StatusServiceUnavailable)
			return
		}

		if h.Ensure(ctx, code) == nil {
			http.Error(w, "failed to create game", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, struct {
			Code string `json:"code"`
		}{Code: code})
	}
}

func ListGames(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		codes := h.List(r.Context())
		if codes == nil {
			codes = []string{}
		}
		writeJSON(w, http.StatusOK, struct {
			Codes []string `json:"codes"`
		}{Codes: codes})
	}
}

func GetGame(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb := h.Get(r.Context(), chi.URLParam(r, "code"))
		if lb == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		v, ok := lb.View(r.Context())
		if !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, summarize(v))
	}
}

func DeleteGame(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if h.Get(r.Context(), code) == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		select {
		case h.Inbox() <- hub.RemoveLobby{Code: code}:
		case <-r.Context().Done():
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func RecentResults(rec store.Recorder, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				http.Error(w, "bad limit", http.StatusBadRequest)
				return
			}
			limit = n
		}

		results, err := rec.Recent(r.Context(), limit)
		if err != nil {
			log.Error("load results", zap.Error(err))
			http.Error(w, "failed to load results", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Results []store.MatchResult `json:"results"`
		}{Results: results})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
