package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dromero/barberbot/internal/model"
	"github.com/dromero/barberbot/internal/repository"
	"github.com/dromero/barberbot/internal/telegram"
)

// dispatch returns the reply text for a message, or "" when no reply is
// wanted.
func (b *Bot) dispatch(ctx context.Context, chatID string, msg *telegram.Message) string {
	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return b.freeText(ctx, chatID, text)
	}

	fields := strings.Fields(text)
	command := strings.ToLower(fields[0])
	// Group chats address commands as /cmd@BotName.
	if i := strings.Index(command, "@"); i >= 0 {
		command = command[:i]
	}

	switch command {
	case "/start":
		return b.cmdStart(ctx)
	case "/setup":
		return b.cmdSetup(ctx, chatID, msg)
	case "/connect":
		return b.cmdConnect(ctx, chatID)
	case "/reset":
		return b.cmdReset(ctx, chatID, fields)
	case "/status":
		return b.cmdStatus(ctx)
	default:
		return "Unknown command. Available: /start, /setup, /connect, /status."
	}
}

func (b *Bot) cmdStart(ctx context.Context) string {
	_, err := b.owners.AdminChatID(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return "👋 Welcome!\n\nThis bot needs to be set up first.\nIf you own this barbershop, send /setup to begin."
	}
	if err != nil {
		b.logger.Error(err, "failed to check owner on /start")
		return "Something went wrong, please try again."
	}
	return "Hi! I'm the barbershop's virtual assistant. How can I help you today?"
}

// cmdSetup registers the first user to run it as owner; afterwards the slot
// is locked until an explicit reset.
func (b *Bot) cmdSetup(ctx context.Context, chatID string, msg *telegram.Message) string {
	owner := &model.Owner{
		ChatID:   chatID,
		Name:     msg.From.FirstName,
		Username: msg.From.Username,
	}

	err := b.owners.Register(ctx, owner)
	if errors.Is(err, repository.ErrOwnerExists) {
		return "⛔ This bot already has an owner."
	}
	if err != nil {
		b.logger.Error(err, "owner registration failed", "chat_id", chatID)
		return "❌ Could not register you as the owner. Please try again."
	}

	b.logger.Info("owner registered", "chat_id", chatID, "username", owner.Username)
	return fmt.Sprintf(
		"✅ Done, %s! You are now the administrator of this bot.\n\nNext step: link your Google Calendar with /connect.",
		owner.Name,
	)
}

func (b *Bot) cmdConnect(ctx context.Context, chatID string) string {
	adminID, err := b.owners.AdminChatID(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return "⚠️ Set up the bot with /setup first."
	}
	if err != nil {
		b.logger.Error(err, "failed to resolve owner on /connect")
		return "Something went wrong, please try again."
	}
	if chatID != adminID {
		return "⛔ This command is only for the bot's administrator."
	}

	url, err := b.auth.BuildAuthURL(chatID)
	if err != nil {
		b.logger.Error(err, "failed to build auth url", "chat_id", chatID)
		return "❌ Could not start the Google authorization flow. Check the bot's OAuth configuration."
	}

	return "To let the bot manage appointments, authorize access to your Google Calendar:\n\n🔗 " + url
}

func (b *Bot) cmdReset(ctx context.Context, chatID string, fields []string) string {
	adminID, err := b.owners.AdminChatID(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return "Nothing to reset: the bot is not configured."
	}
	if err != nil {
		b.logger.Error(err, "failed to resolve owner on /reset")
		return "Something went wrong, please try again."
	}
	if chatID != adminID {
		return "⛔ This command is only for the bot's administrator."
	}

	if len(fields) < 2 || fields[1] != "confirm" {
		return "⚠️ This wipes the owner registration and linked calendar.\nSend `/reset confirm` to proceed."
	}

	if err := b.owners.Reset(ctx); err != nil {
		b.logger.Error(err, "reset failed", "chat_id", chatID)
		return "❌ Reset failed. Please try again."
	}

	b.logger.Info("configuration reset", "chat_id", chatID)
	return "✅ Configuration cleared. Send /setup to register a new owner."
}

func (b *Bot) cmdStatus(ctx context.Context) string {
	owner, err := b.owners.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return "The bot is not configured yet."
	}
	if err != nil {
		b.logger.Error(err, "failed to load owner on /status")
		return "Something went wrong, please try again."
	}

	var sb strings.Builder
	sb.WriteString("💈 *")
	if owner.ShopName != "" {
		sb.WriteString(owner.ShopName)
	} else {
		sb.WriteString("Barbershop")
	}
	sb.WriteString("*\n")
	if owner.Phone != "" {
		sb.WriteString("📞 " + owner.Phone + "\n")
	}
	if owner.Address != "" {
		sb.WriteString("📍 " + owner.Address + "\n")
	}

	state, _, _, err := b.auth.ResolveTenant(ctx)
	if err == nil && state == model.TenantReady {
		sb.WriteString("\nCalendar: linked ✅")
	} else {
		sb.WriteString("\nCalendar: not linked yet 🚧")
	}
	return sb.String()
}

func (b *Bot) freeText(ctx context.Context, chatID, text string) string {
	// Free text only makes sense once the shop is operational; mirror the
	// setup hints otherwise.
	_, err := b.owners.AdminChatID(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return "⚠️ This bot is not configured. Ask the owner to run /setup."
	}
	if err != nil {
		b.logger.Error(err, "failed to resolve owner for free text")
		return "Something went wrong, please try again."
	}

	state, _, _, err := b.auth.ResolveTenant(ctx)
	if err == nil && state == model.TenantUncredentialed {
		return "🚧 The shop's calendar is not connected yet. Please try again later."
	}

	reply, err := b.responder.Respond(ctx, chatID, text)
	if err != nil {
		b.logger.Error(err, "responder failed", "chat_id", chatID)
		return "Sorry, something went wrong processing your message."
	}
	return reply
}
