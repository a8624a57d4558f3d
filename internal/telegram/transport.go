// Package telegram bridges Telegram long polling to the conversation
// controller. Only an opaque chat key derived from the chat id crosses into
// the core; no Telegram identity is ever written to the data file.
package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/openfieldlab/hashbot/internal/study"
)

// Messenger sends outbound texts. It satisfies study.Messenger.
type Messenger struct {
	api *tgbotapi.BotAPI
}

func NewMessenger(token string) (*Messenger, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Messenger{api: api}, nil
}

var _ study.Messenger = (*Messenger)(nil)

func (m *Messenger) Send(chatKey, text string) error {
	id, err := strconv.ParseInt(chatKey, 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat key %q: %w", chatKey, err)
	}
	if _, err := m.api.Send(tgbotapi.NewMessage(id, text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Bot runs the update loop and routes commands and text to the controller.
type Bot struct {
	api             *tgbotapi.BotAPI
	controller      *study.Controller
	withdrawEnabled bool
}

func NewBot(m *Messenger, controller *study.Controller, withdrawEnabled bool) *Bot {
	return &Bot{api: m.api, controller: controller, withdrawEnabled: withdrawEnabled}
}

// Run polls for updates until ctx is done. Each update is handled on its
// own goroutine; the per-session locks inside the controller serialize a
// single participant, so one participant's slow log write never blocks the
// others.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	log.Printf("telegram: polling as @%s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg := update.Message
			if msg == nil || msg.Text == "" {
				continue
			}
			go b.dispatch(ctx, msg)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	chatKey := strconv.FormatInt(msg.Chat.ID, 10)
	var err error
	switch {
	case msg.IsCommand():
		switch msg.Command() {
		case "start":
			err = b.controller.HandleStart(ctx, chatKey)
		case "restart":
			err = b.controller.HandleRestart(ctx, chatKey)
		case "withdraw":
			if b.withdrawEnabled {
				err = b.controller.HandleWithdraw(ctx, chatKey)
			}
		}
		// Unknown commands are dropped, matching the original bot's
		// command filter.
	default:
		err = b.controller.HandleMessage(ctx, chatKey, msg.Text)
	}
	if err != nil {
		log.Printf("telegram: handle update from chat %s: %v", chatKey, err)
	}
}
