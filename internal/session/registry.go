package session

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var ErrUnknownSession = errors.New("unknown session")
var ErrObserver = errors.New("observers cannot bind an identity")
var ErrEmptyName = errors.New("name is required")
var ErrNameTooLong = errors.New("name is too long")
var ErrInvalidColor = errors.New("color is not in the palette")
var ErrColorTaken = errors.New("color already bound by another seat")
var ErrAlreadyReady = errors.New("seat already selected a start node")

const MaxNameLength = 24

type Role string

const (
	RoleSeat     Role = "seat"
	RoleObserver Role = "observer"
)

type Seat struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color Color  `json:"color"`
	Role  Role   `json:"role"`
	Ready bool   `json:"ready"`
}

func (s Seat) Observer() bool { return s.Role == RoleObserver }

// Bound reports whether the seat has picked a display color.
func (s Seat) Bound() bool { return s.Color != ColorUnset }

// Registry tracks connected sessions. It is not safe for concurrent use; the
// owning room goroutine is its only caller.
type Registry struct {
	capacity int
	closed   bool
	sessions map[string]*Seat
	order    []string
	newID    func() string
}

func NewRegistry(capacity int) *Registry {
	return &Registry{
		capacity: capacity,
		sessions: make(map[string]*Seat),
		newID:    uuid.NewString,
	}
}

// Join registers a new connection. It becomes a seat while seats are free and
// open, and an observer otherwise.
func (r *Registry) Join() Seat {
	id := r.newID()
	s := &Seat{ID: id, Role: RoleSeat, Color: ColorUnset}
	if r.closed || len(r.Seats()) >= r.capacity {
		s.Role = RoleObserver
		s.Name = "Observer-" + shortID(id)
		s.Color = ColorObserver
	}
	r.sessions[id] = s
	r.order = append(r.order, id)
	return *s
}

// CloseSeats makes every later connection an observer, even when a seat has
// been vacated. Rooms call it once the game has started.
func (r *Registry) CloseSeats() { r.closed = true }

// Leave forgets a session. Nodes it owns are left untouched.
func (r *Registry) Leave(id string) (Seat, bool) {
	s, ok := r.sessions[id]
	if !ok {
		return Seat{}, false
	}
	delete(r.sessions, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return *s, true
}

func (r *Registry) Get(id string) (Seat, bool) {
	s, ok := r.sessions[id]
	if !ok {
		return Seat{}, false
	}
	return *s, true
}

// Bind sets the display identity of a seat.
func (r *Registry) Bind(id, name string, color Color) error {
	s, ok := r.sessions[id]
	if !ok {
		return ErrUnknownSession
	}
	if s.Observer() {
		return ErrObserver
	}
	if s.Ready {
		return ErrAlreadyReady
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%d runes: %w", utf8.RuneCountInString(name), ErrNameTooLong)
	}
	if !color.Valid() {
		return fmt.Errorf("%q: %w", color, ErrInvalidColor)
	}
	for _, other := range r.sessions {
		if other.ID != id && !other.Observer() && other.Color == color {
			return fmt.Errorf("%q: %w", color, ErrColorTaken)
		}
	}

	s.Name = name
	s.Color = color
	return nil
}

func (r *Registry) MarkReady(id string) error {
	s, ok := r.sessions[id]
	if !ok {
		return ErrUnknownSession
	}
	s.Ready = true
	return nil
}

// Seats returns the seated sessions in join order.
func (r *Registry) Seats() []Seat {
	out := make([]Seat, 0, r.capacity)
	for _, id := range r.order {
		if s := r.sessions[id]; !s.Observer() {
			out = append(out, *s)
		}
	}
	return out
}

// All returns every session in join order.
func (r *Registry) All() []Seat {
	out := make([]Seat, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.sessions[id])
	}
	return out
}

func (r *Registry) Capacity() int { return r.capacity }

func (r *Registry) Len() int { return len(r.sessions) }

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
