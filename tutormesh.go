// Package tutormesh provides a high-level façade over the tutoring session
// building blocks (content store, sync dispatcher, inbound RPC handlers and
// the model-driven tutor). Most applications interact with this package by:
//  1. Creating a TutorMesh via New() (optionally overriding the room, the
//     speaker, the model or the logger)
//  2. Calling Greet() once the client has joined
//  3. Feeding recognized user utterances into Respond()
//
// All defaults are safe for local development and testing: an in-process
// mock room, a silent speaker and a mock model. Production deployments
// supply a real room transport (see room/ws), a speech pipeline and a
// provider model (see model/openai and model/anthropic).
package tutormesh

import (
	"context"

	"github.com/hupe1980/tutormesh/agent"
	"github.com/hupe1980/tutormesh/handler"
	"github.com/hupe1980/tutormesh/logging"
	"github.com/hupe1980/tutormesh/model"
	"github.com/hupe1980/tutormesh/room"
	"github.com/hupe1980/tutormesh/session"
)

// Options configures the TutorMesh instance.
type Options struct {
	// SessionID overrides the generated session identifier.
	SessionID string

	// Room is the transport to the client (defaults to an in-process mock).
	Room room.Room

	// Speaker voices replies and quiz reports (defaults to silent).
	Speaker room.Speaker

	// Model drives the dialogue (defaults to a mock model).
	Model model.Model

	// Instructions overrides the tutoring persona.
	Instructions string

	// ConfirmFlips speaks a confirmation when the client flips a card.
	ConfirmFlips bool

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// TutorMesh aggregates one tutoring session: the content session state, the
// registered inbound RPC endpoints and the conversational tutor.
type TutorMesh struct {
	opts     Options
	session  *session.Session
	handlers *handler.Handlers
	tutor    *agent.Tutor
}

// New creates a TutorMesh instance with optional overrides, wires the
// session against the room and registers the inbound RPC methods.
func New(optFns ...func(o *Options)) *TutorMesh {
	opts := Options{
		Room:         room.NewMockRoom(),
		Speaker:      room.NoOpSpeaker{},
		Model:        model.NewMockModel("mock", "mock"),
		Instructions: agent.DefaultInstructions,
		Logger:       logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	sess := session.New(opts.Room, func(o *session.Options) {
		if opts.SessionID != "" {
			o.ID = opts.SessionID
		}
		o.Speaker = opts.Speaker
		o.Logger = opts.Logger
	})

	handlers := handler.New(sess, func(o *handler.Options) {
		o.ConfirmFlips = opts.ConfirmFlips
	})
	handlers.Register(opts.Room)

	tutor := agent.New(opts.Model, sess, func(o *agent.Options) {
		o.Instructions = opts.Instructions
	})

	return &TutorMesh{opts: opts, session: sess, handlers: handlers, tutor: tutor}
}

// Session returns the underlying session aggregate.
func (tm *TutorMesh) Session() *session.Session { return tm.session }

// Tutor returns the conversational tutor.
func (tm *TutorMesh) Tutor() *agent.Tutor { return tm.tutor }

// Greet produces and speaks the opening line of the session.
func (tm *TutorMesh) Greet(ctx context.Context) (string, error) {
	return tm.tutor.Greet(ctx)
}

// Respond feeds one user utterance to the tutor and returns the spoken reply.
func (tm *TutorMesh) Respond(ctx context.Context, userInput string) (string, error) {
	return tm.tutor.Respond(ctx, userInput)
}
