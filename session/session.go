// Package session aggregates everything one tutoring conversation owns: the
// content store, the room handle and the speaker. A session is created when
// the conversation starts, lives for its duration and is discarded at the
// end; nothing persists across sessions and nothing is shared between them.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/tutormesh/content"
	"github.com/hupe1980/tutormesh/dispatch"
	"github.com/hupe1980/tutormesh/logging"
	"github.com/hupe1980/tutormesh/room"
)

// Options configures a Session.
type Options struct {
	// ID overrides the generated session identifier.
	ID string
	// Speaker voices text to the user (defaults to NoOpSpeaker)
	Speaker room.Speaker
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Session is the per-conversation aggregate. The content store it owns is
// the single mutable state of the conversation; the dispatcher is bound to
// the session's room so pushes always address the session's own client.
type Session struct {
	id         string
	created    time.Time
	store      *content.Store
	room       room.Room
	speaker    room.Speaker
	dispatcher *dispatch.Dispatcher
	logger     logging.Logger
}

// New creates a session bound to a room.
func New(r room.Room, optFns ...func(o *Options)) *Session {
	opts := Options{
		ID:      uuid.NewString(),
		Speaker: room.NoOpSpeaker{},
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Session{
		id:         opts.ID,
		created:    time.Now().UTC(),
		store:      content.NewStore(),
		room:       r,
		speaker:    opts.Speaker,
		dispatcher: dispatch.New(r, func(o *dispatch.Options) { o.Logger = opts.Logger }),
		logger:     opts.Logger,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Created returns the session creation time (UTC).
func (s *Session) Created() time.Time { return s.created }

// Store returns the session's content store.
func (s *Session) Store() *content.Store { return s.store }

// Room returns the session's room handle.
func (s *Session) Room() room.Room { return s.room }

// Speaker returns the session's speaker.
func (s *Session) Speaker() room.Speaker { return s.speaker }

// Dispatcher returns the dispatcher bound to the session's room.
func (s *Session) Dispatcher() *dispatch.Dispatcher { return s.dispatcher }

// Logger returns the session's logger.
func (s *Session) Logger() logging.Logger { return s.logger }
