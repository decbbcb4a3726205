package lobby

import (
	"context"
	"errors"
	"time"

	"github.com/DoyleJ11/territory-backend/internal/engine"
	"github.com/DoyleJ11/territory-backend/internal/graph"
	"github.com/DoyleJ11/territory-backend/internal/session"
	"github.com/DoyleJ11/territory-backend/internal/store"
	"go.uber.org/zap"
)

const unknownWinner = "Unknown Player"

const recordTimeout = 5 * time.Second

type Options struct {
	Code       string
	Graph      *graph.Graph
	Rules      engine.Rules
	TickPeriod time.Duration // zero disables the internal ticker
	Recorder   store.Recorder
	Logger     *zap.Logger
}

// Lobby owns one game. Its loop goroutine is the only writer of state and
// seats, so commands, ticks and joins are applied one at a time in inbox
// order and every client sees notifications in that same order.
type Lobby struct {
	inbox     chan Msg
	code      string
	graph     *graph.Graph
	state     engine.State
	seats     *session.Registry
	version   int
	clients   map[string]chan Notification
	period    time.Duration
	recorder  store.Recorder
	log       *zap.Logger
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewLobby(parent context.Context, opts Options) *Lobby {
	ctx, cancel := context.WithCancel(parent)
	if opts.Graph == nil {
		opts.Graph = graph.Reference()
	}
	if opts.Recorder == nil {
		opts.Recorder = store.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	l := &Lobby{
		inbox:    make(chan Msg, 64), // Small buffer
		code:     opts.Code,
		graph:    opts.Graph,
		state:    engine.NewState(opts.Graph, opts.Rules),
		seats:    session.NewRegistry(opts.Rules.SeatCapacity),
		version:  0,
		clients:  make(map[string]chan Notification),
		period:   opts.TickPeriod,
		recorder: opts.Recorder,
		log:      opts.Logger.With(zap.String("game", opts.Code)),
		ctx:      ctx,
		cancel:   cancel,
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	var ticks <-chan time.Time
	if l.period > 0 {
		ticker := time.NewTicker(l.period)
		defer ticker.Stop()
		ticks = ticker.C
	}

	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case <-ticks:
			l.tick()

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				l.join(msg)

			case Leave:
				l.leave(msg.SessionID)

			case BindIdentity:
				l.bind(msg)

			case FromClient:
				l.apply(msg)

			case Tick:
				l.tick()

			case GetState:
				msg.Reply <- View{
					Code:       l.code,
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.state.Clone(),
					Snapshot:   l.snapshot(),
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) join(msg Join) {
	seat := l.seats.Join()
	l.clients[seat.ID] = msg.Outbox
	if msg.Reply != nil {
		msg.Reply <- seat
	}

	if !seat.Observer() {
		l.state = engine.OpenSelection(l.state)
	}
	l.log.Info("session joined", zap.String("session", seat.ID), zap.String("role", string(seat.Role)))

	l.send(seat.ID, Notification{Type: NoteWelcome, Seat: &seat, Phase: l.state.Phase})
	l.broadcastState()
}

func (l *Lobby) leave(id string) {
	seat, ok := l.seats.Leave(id)
	if ch, ok := l.clients[id]; ok {
		close(ch)
		delete(l.clients, id)
	}
	if !ok {
		return
	}
	l.log.Info("session left", zap.String("session", id), zap.String("role", string(seat.Role)))
	l.broadcastState()
}

func (l *Lobby) bind(msg BindIdentity) {
	if !engine.Allowed(l.state.Phase, engine.CmdBindIdentity) {
		l.reject(msg.SessionID, engine.CmdBindIdentity, engine.ErrInvalidPhase)
		return
	}
	if err := l.seats.Bind(msg.SessionID, msg.Name, msg.Color); err != nil {
		if errors.Is(err, session.ErrObserver) {
			err = engine.ErrObserverForbidden
		}
		l.reject(msg.SessionID, engine.CmdBindIdentity, err)
		return
	}
	l.broadcastState()
}

func (l *Lobby) apply(msg FromClient) {
	cmd := msg.Cmd
	cmd.SeatID = msg.SessionID

	seat, ok := l.seats.Get(msg.SessionID)
	if !ok {
		l.reject(msg.SessionID, cmd.Type, engine.ErrUnknownSeat)
		return
	}

	events, newState, err := engine.Apply(l.graph, seat, l.state, cmd)
	if err != nil {
		l.reject(msg.SessionID, cmd.Type, err)
		return
	}
	l.state = newState

	if engine.ContainsEvent(events, engine.EvtStartNodeSelected) {
		_ = l.seats.MarkReady(seat.ID)
		l.log.Info("start node selected", zap.String("session", seat.ID), zap.Int("node", cmd.NodeID))
		l.send(seat.ID, Notification{Type: NoteSelectionSuccess})
		l.broadcastState()

		var started []engine.Event
		l.state, started = engine.CheckStart(l.state, l.seats.Seats())
		if len(started) > 0 {
			l.startedAt = time.Now()
			l.seats.CloseSeats()
			l.log.Info("all seats ready, game running")
			l.broadcast(Notification{Type: NotePhaseChanged, Phase: engine.PhaseRunning})
			l.checkWinner()
		}
		return
	}

	l.broadcastState()
	l.checkWinner()
}

// checkWinner ends the game if a single owner holds the board. A one-seat game
// ends as soon as it starts.
func (l *Lobby) checkWinner() {
	var over []engine.Event
	l.state, over = engine.CheckWinner(l.state)
	if len(over) > 0 {
		l.finish()
	}
}

func (l *Lobby) tick() {
	newState, ok := engine.Grow(l.state)
	if !ok {
		return
	}
	l.state = newState
	l.broadcastState()
}

func (l *Lobby) finish() {
	winnerName := unknownWinner
	if seat, ok := l.seats.Get(l.state.Winner); ok && seat.Name != "" {
		winnerName = seat.Name
	}
	l.log.Info("game over", zap.String("winner", l.state.Winner), zap.String("winner_name", winnerName))

	l.broadcast(Notification{Type: NotePhaseChanged, Phase: engine.PhaseOver})
	l.broadcast(Notification{Type: NoteGameOver, WinnerID: l.state.Winner, WinnerName: winnerName})

	result := store.Result{
		GameCode:   l.code,
		WinnerID:   l.state.Winner,
		WinnerName: winnerName,
		Seats:      l.state.Rules.SeatCapacity,
		Ticks:      l.state.Ticks,
		StartedAt:  l.startedAt,
		EndedAt:    time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := l.recorder.Record(ctx, result); err != nil {
			l.log.Warn("record result", zap.Error(err))
		}
	}()
}

func (l *Lobby) reject(id string, cmd engine.CommandType, err error) {
	l.log.Debug("command rejected",
		zap.String("session", id),
		zap.String("command", string(cmd)),
		zap.String("phase", string(l.state.Phase)),
		zap.Error(err),
	)
	l.send(id, Notification{Type: NoteRejected, Reason: engine.Reason(err)})
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more notifications
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcastState() {
	l.version++
	snap := l.snapshot()
	l.broadcast(Notification{Type: NoteGameState, Version: l.version, State: &snap})
}

func (l *Lobby) broadcast(n Notification) {
	for id := range l.clients {
		l.send(id, n)
	}
}

func (l *Lobby) send(id string, n Notification) {
	ch, ok := l.clients[id]
	if !ok {
		return
	}
	select {
	case ch <- n:
		//ok
	default:
		// Client is slow/full - drop them.
		l.log.Warn("dropping slow client", zap.String("session", id))
		close(ch)
		delete(l.clients, id)
	}
}

func (l *Lobby) snapshot() Snapshot {
	snap := Snapshot{
		Phase:   l.state.Phase,
		Nodes:   make([]NodeView, 0, l.graph.Len()),
		Players: l.seats.All(),
	}
	for _, id := range l.graph.IDs() {
		n := l.state.Nodes[id]
		view := NodeView{ID: id, Adjacency: l.graph.Neighbors(id), Troops: n.Troops}
		if !n.Neutral() {
			owner, color := n.Owner, n.OwnerColor
			view.Owner = &owner
			view.OwnerColor = &color
		}
		snap.Nodes = append(snap.Nodes, view)
	}
	return snap
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Send delivers m unless the lobby stops or ctx ends first.
func (l *Lobby) Send(ctx context.Context, m Msg) bool {
	// The inbox may still have room after the loop exits.
	if l.ctx.Err() != nil {
		return false
	}
	select {
	case l.inbox <- m:
		return true
	case <-l.ctx.Done():
		return false
	case <-ctx.Done():
		return false
	}
}

// View asks the loop for a consistent copy of the game.
func (l *Lobby) View(ctx context.Context) (View, bool) {
	reply := make(chan View, 1)
	if !l.Send(ctx, GetState{Reply: reply}) {
		return View{}, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-l.ctx.Done():
		return View{}, false
	case <-ctx.Done():
		return View{}, false
	}
}

func (l *Lobby) Code() string { return l.code }

// Done is closed once the loop has stopped.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }
