package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoyleJ11/territory-backend/internal/hub"
	"github.com/DoyleJ11/territory-backend/internal/lobby"
	"github.com/DoyleJ11/territory-backend/internal/session"
	"github.com/DoyleJ11/territory-backend/internal/types"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 3 * time.Second
	pingInterval = 25 * time.Second
	readLimit    = 4 << 10
)

func Handler(h *hub.Hub, log *zap.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		lb := h.Get(r.Context(), code)
		if lb == nil {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			log.Warn("websocket accept", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")
		conn.SetReadLimit(readLimit)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := make(chan lobby.Notification, 64)
		reply := make(chan session.Seat, 1)
		if !lb.Send(ctx, lobby.Join{Outbox: out, Reply: reply}) {
			conn.Close(websocket.StatusGoingAway, "game closed")
			return
		}
		var seat session.Seat
		select {
		case seat = <-reply:
		case <-lb.Done():
			conn.Close(websocket.StatusGoingAway, "game closed")
			return
		case <-ctx.Done():
			return
		}
		log := log.With(zap.String("game", code), zap.String("session", seat.ID))
		defer lb.Send(context.Background(), lobby.Leave{SessionID: seat.ID})

		// Writer goroutine
		go func() {
			defer cancel()
			for note := range out {
				payload, err := json.Marshal(types.FromNotification(note))
				if err != nil {
					log.Error("encode notification", zap.Error(err))
					continue
				}
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				err = conn.Write(wctx, websocket.MessageText, payload)
				wcancel()
				if err != nil {
					return
				}
			}
			// The game dropped us or shut down.
			conn.Close(websocket.StatusTryAgainLater, "disconnected by server")
		}()

		// Ping loop
		go func() {
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
					err := conn.Ping(pctx)
					pcancel()
					if err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					log.Debug("client closed")
				default:
					log.Debug("read failed", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(ctx, conn, "bad json")
				continue
			}

			msg, ok := types.ToLobbyMsg(seat.ID, cm)
			if !ok {
				writeError(ctx, conn, "unknown type")
				continue
			}

			if !lb.Send(ctx, msg) {
				return
			}
		}
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, reason string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: "error", Error: reason})
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
