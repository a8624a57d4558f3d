package study

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/openfieldlab/hashbot/internal/record"
)

// Messenger delivers outbound texts to a chat. Implementations must not
// leak platform identities back into the core; the chat key is opaque.
type Messenger interface {
	Send(chatKey, text string) error
}

// ControllerConfig wires a Controller. Sessions defaults to a fresh store
// sized to the prompt list.
type ControllerConfig struct {
	Sessions  *SessionStore
	Logger    record.Logger
	Messenger Messenger
	Codes     *CodeBook
	Validator Validator
	Prompts   []string
	Messages  Messages
}

// Controller is the per-message decision function of the bot: it looks up
// the sender's session, validates input, appends the response record, and
// advances the conversation. Side effects are strictly ordered: validation,
// then the log write, then the state transition, then the outbound message.
type Controller struct {
	sessions  *SessionStore
	logger    record.Logger
	messenger Messenger
	codes     *CodeBook
	validator Validator
	prompts   []string
	msgs      Messages

	now   func() time.Time
	newID func() string
}

func NewController(cfg ControllerConfig) *Controller {
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = NewSessionStore(len(cfg.Prompts))
	}
	maxLen := cfg.Validator.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxHashtagLength
	}
	return &Controller{
		sessions:  sessions,
		logger:    cfg.Logger,
		messenger: cfg.Messenger,
		codes:     cfg.Codes,
		validator: cfg.Validator,
		prompts:   cfg.Prompts,
		msgs:      cfg.Messages.withDefaults(maxLen),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     record.NewID,
	}
}

// Sessions exposes the store for wiring and tests.
func (c *Controller) Sessions() *SessionStore { return c.sessions }

// HandleMessage processes one plain-text message from chatKey.
func (c *Controller) HandleMessage(ctx context.Context, chatKey, text string) error {
	s := c.sessions.GetOrCreate(chatKey)
	s.Lock()
	defer s.Unlock()

	switch s.State() {
	case StateWithdrawn:
		c.send(chatKey, c.msgs.WithdrawnNotice)
		return nil
	case StateUnauthenticated:
		return c.handleCode(ctx, s, text)
	case StateAwaiting:
		return c.handleResponse(ctx, s, text)
	default: // StateCompleted
		c.send(chatKey, c.msgs.Finished)
		return nil
	}
}

// HandleStart begins (or re-enters) the flow. An authenticated session
// keeps its participant id but returns to round 0; an unauthenticated one
// is asked for its code.
func (c *Controller) HandleStart(ctx context.Context, chatKey string) error {
	s := c.sessions.GetOrCreate(chatKey)
	s.Lock()
	defer s.Unlock()

	switch s.State() {
	case StateWithdrawn:
		c.send(chatKey, c.msgs.WithdrawnNotice)
		return nil
	case StateUnauthenticated:
		c.send(chatKey, c.msgs.Welcome)
		return nil
	default:
		if err := s.fire(ctx, eventRestartRounds); err != nil {
			return err
		}
		s.CurrentRound = 0
		s.Answered = false
		c.sendPrompt(s)
		return nil
	}
}

// HandleRestart fully resets the session, participant id included, and
// returns to code entry.
func (c *Controller) HandleRestart(ctx context.Context, chatKey string) error {
	s := c.sessions.GetOrCreate(chatKey)
	s.Lock()
	defer s.Unlock()

	if s.State() == StateWithdrawn {
		c.send(chatKey, c.msgs.WithdrawnNotice)
		return nil
	}
	if err := s.fire(ctx, eventReset); err != nil {
		return err
	}
	s.ParticipantID = ""
	s.CurrentRound = 0
	s.Answered = false
	c.send(chatKey, c.msgs.Restarted)
	return nil
}

// HandleWithdraw stops all recording for this chat. The cleared identity
// means nothing further can be linked to the participant.
func (c *Controller) HandleWithdraw(ctx context.Context, chatKey string) error {
	s := c.sessions.GetOrCreate(chatKey)
	s.Lock()
	defer s.Unlock()

	if s.State() == StateWithdrawn {
		c.send(chatKey, c.msgs.WithdrawnNotice)
		return nil
	}
	if err := s.fire(ctx, eventWithdraw); err != nil {
		return err
	}
	s.ParticipantID = ""
	s.CurrentRound = 0
	s.Answered = false
	c.send(chatKey, c.msgs.WithdrawAck)
	return nil
}

func (c *Controller) handleCode(ctx context.Context, s *Session, text string) error {
	code, err := c.codes.Verify(text)
	if err != nil {
		// Unlimited retries, no lockout. Deliberate: this is a closed
		// research code, not a public secret.
		c.send(s.ChatKey, c.msgs.InvalidCode)
		return nil
	}
	s.ParticipantID = code
	if err := s.fire(ctx, eventAuthenticate); err != nil {
		return err
	}
	c.send(s.ChatKey, c.msgs.Intro)
	if len(c.prompts) == 0 {
		if err := s.fire(ctx, eventComplete); err != nil {
			return err
		}
		c.send(s.ChatKey, c.msgs.Done)
		return nil
	}
	c.sendPrompt(s)
	return nil
}

func (c *Controller) handleResponse(ctx context.Context, s *Session, text string) error {
	tag, err := c.validator.Validate(text)
	if err != nil {
		ve, ok := AsValidationError(err)
		if !ok {
			return err
		}
		// Failed validation is never persisted.
		c.send(s.ChatKey, c.msgs.forValidation(ve.Kind))
		return nil
	}

	rec := &record.Record{
		ID:            c.newID(),
		ParticipantID: s.ParticipantID,
		RoundIndex:    s.CurrentRound,
		Hashtag:       tag,
		SubmittedAt:   c.now(),
		Prompt:        c.prompts[s.CurrentRound],
	}
	if err := c.logger.Append(rec); err != nil {
		// The session stays at this round with Answered still false, so a
		// resent message retries the same round. Silent data loss would
		// compromise the research record, so the operator log gets it too.
		serr := NewIOError(fmt.Sprintf("append response participant=%s round=%d", rec.ParticipantID, rec.RoundIndex), err)
		log.Printf("controller: %v", serr)
		c.send(s.ChatKey, c.msgs.TryAgain)
		return nil
	}

	s.MarkAnswered()
	if s.CurrentRound+1 < s.TotalRounds {
		s.AdvanceRound()
		c.sendPrompt(s)
		return nil
	}
	if err := s.fire(ctx, eventComplete); err != nil {
		return err
	}
	c.send(s.ChatKey, c.msgs.Done)
	return nil
}

func (c *Controller) sendPrompt(s *Session) {
	c.send(s.ChatKey, c.prompts[s.CurrentRound]+"\n"+c.msgs.PromptSuffix)
}

// send is fire-and-forget: session state commits with the log write, and a
// failed outbound delivery must not roll it back. Failures go to the
// operator log.
func (c *Controller) send(chatKey, text string) {
	if err := c.messenger.Send(chatKey, text); err != nil {
		log.Printf("controller: send to chat %s: %v", chatKey, err)
	}
}
