package hub

import (
	"context"
	"slices"

	"github.com/DoyleJ11/territory-backend/internal/lobby"
	"go.uber.org/zap"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type EnsureLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

type RemoveLobby struct {
	Code string
}

type ListLobbies struct {
	Reply chan []string
}

// Hub owns the set of running games by code. Every game is built from the
// same template, with only the code changed.
type Hub struct {
	inbox    chan HubMsg
	lobbies  map[string]*lobby.Lobby
	template lobby.Options
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ListLobbies) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

func NewHub(parent context.Context, template lobby.Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if template.Logger == nil {
		template.Logger = zap.NewNop()
	}
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		lobbies:  make(map[string]*lobby.Lobby),
		template: template,
		log:      template.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Get is a convenience wrapper around GetLobby. It returns nil when the code
// is unknown or the hub has stopped.
func (h *Hub) Get(ctx context.Context, code string) *lobby.Lobby {
	return h.ask(ctx, GetLobby{Code: code, Reply: make(chan *lobby.Lobby, 1)})
}

// Ensure returns the game for code, creating it first if needed.
func (h *Hub) Ensure(ctx context.Context, code string) *lobby.Lobby {
	return h.ask(ctx, EnsureLobby{Code: code, Reply: make(chan *lobby.Lobby, 1)})
}

// List returns the codes of all running games in sorted order.
func (h *Hub) List(ctx context.Context) []string {
	reply := make(chan []string, 1)
	select {
	case h.inbox <- ListLobbies{Reply: reply}:
	case <-h.ctx.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
	select {
	case codes := <-reply:
		return codes
	case <-h.ctx.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
}

func (h *Hub) ask(ctx context.Context, msg HubMsg) *lobby.Lobby {
	var reply chan *lobby.Lobby
	switch m := msg.(type) {
	case GetLobby:
		reply = m.Reply
	case EnsureLobby:
		reply = m.Reply
	}

	select {
	case h.inbox <- msg:
	case <-h.ctx.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
	select {
	case lb := <-reply:
		return lb
	case <-h.ctx.Done():
		return nil
	case <-ctx.Done():
		return nil
	}
}

// Done is closed once the hub has shut down.
func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				msg.Reply <- h.ensure(msg.Code)

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // May be nil

			case EnsureLobby:
				msg.Reply <- h.ensure(msg.Code)

			case RemoveLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					lb.Send(context.Background(), lobby.Shutdown{})
					delete(h.lobbies, msg.Code)
					h.log.Info("game removed", zap.String("game", msg.Code))
				}

			case ListLobbies:
				codes := make([]string, 0, len(h.lobbies))
				for code := range h.lobbies {
					codes = append(codes, code)
				}
				slices.Sort(codes)
				msg.Reply <- codes

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) ensure(code string) *lobby.Lobby {
	if lb := h.lobbies[code]; lb != nil {
		return lb
	}
	opts := h.template
	opts.Code = code
	lb := lobby.NewLobby(h.ctx, opts)
	h.lobbies[code] = lb
	h.log.Info("game created", zap.String("game", code))
	return lb
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		lb.Send(context.Background(), lobby.Shutdown{})
	}
	clear(h.lobbies)
	h.cancel()
}
