// Package bot runs the Telegram long-poll loop and the command surface for
// setup, calendar linking and status.
package bot

import (
	"context"
	"strconv"
	"time"

	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/internal/repository"
	"github.com/dromero/barberbot/internal/telegram"
	"github.com/dromero/barberbot/pkg/logger"
)

// Responder answers free-text (non-command) messages. The production
// deployment plugs a conversational agent in here; the default replies with
// a canned greeting.
type Responder interface {
	Respond(ctx context.Context, chatID, text string) (string, error)
}

// StaticResponder is the default Responder.
type StaticResponder struct{}

func (StaticResponder) Respond(context.Context, string, string) (string, error) {
	return "Hi! I'm the barbershop assistant. Use /status to see the shop's details or ask the owner to book you in.", nil
}

type Updates interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	SendMessage(ctx context.Context, chatID, text string, markdown bool) error
}

// AuthFlow is the slice of the auth service the bot needs.
type AuthFlow interface {
	BuildAuthURL(chatID string) (string, error)
	ResolveTenant(ctx context.Context) (model.TenantState, string, *model.Credential, error)
}

type Bot struct {
	tg          Updates
	owners      repository.OwnerRepository
	auth        AuthFlow
	responder   Responder
	pollTimeout time.Duration
	logger      *logger.Logger
}

func New(tg Updates, owners repository.OwnerRepository, authSvc AuthFlow, pollTimeout time.Duration, log *logger.Logger) *Bot {
	return &Bot{
		tg:          tg,
		owners:      owners,
		auth:        authSvc,
		responder:   StaticResponder{},
		pollTimeout: pollTimeout,
		logger:      log,
	}
}

// WithResponder replaces the free-text responder.
func (b *Bot) WithResponder(r Responder) *Bot {
	b.responder = r
	return b
}

// Run long-polls for updates until ctx is cancelled. Transport errors back
// off briefly and retry; a failure handling one update never stops the loop.
func (b *Bot) Run(ctx context.Context) {
	var offset int64
	b.logger.Info("bot update loop started")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot update loop stopping")
			return
		default:
		}

		updates, err := b.tg.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Error(err, "failed to fetch updates")
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update telegram.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	reply := b.dispatch(ctx, chatID, msg)
	if reply == "" {
		return
	}

	if err := b.tg.SendMessage(ctx, chatID, reply, true); err != nil {
		b.logger.Error(err, "failed to send reply", "chat_id", chatID)
	}
}
