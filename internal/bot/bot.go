package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/school-records/internal/dashboard"
	"github.com/Spok95/school-records/internal/metrics"
	"github.com/Spok95/school-records/internal/observability"
	"github.com/Spok95/school-records/internal/tg"
)

// Resolver is implemented by *dashboard.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, raw string) (*dashboard.View, error)
}

// Bot answers parents in Telegram: any text is taken as a parent email.
type Bot struct {
	api      tg.Sender
	resolver Resolver
	log      *zap.SugaredLogger
	chats    *chatLimiter
	sessions *sessions
	timeout  time.Duration
}

func New(api tg.Sender, resolver Resolver, log *zap.SugaredLogger) *Bot {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Bot{
		api:      api,
		resolver: resolver,
		log:      log,
		chats:    newChatLimiter(),
		sessions: newSessions(),
		timeout:  10 * time.Second,
	}
}

// Run handles updates until ctx is done or the channel is closed, then
// waits for in-flight replies.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.HandleUpdate(ctx, upd)
			}()
		}
	}
}

func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	metrics.BotUpdates.Inc()
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw("bot panic", "panic", r, "update_id", upd.UpdateID)
		}
	}()

	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID

	// один чат обслуживаем последовательно, чтобы ответы не перемешивались
	unlock := b.chats.lock(chatID)
	defer unlock()

	command := ""
	if msg.IsCommand() {
		command = msg.Command()
	}
	reply := b.reply(ctx, chatID, command, msg.Text)

	out := tgbotapi.NewMessage(chatID, reply)
	out.ReplyMarkup = parentMenu(b.sessions.get(chatID) != "")
	if _, err := tg.Send(b.api, out); err != nil {
		b.log.Warnw("send reply", "chat_id", chatID, "err", err)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, command, text string) string {
	text = strings.TrimSpace(text)
	switch {
	case command == "start" || command == "help" || text == btnHelp:
		return helpText
	case command != "":
		return unknownCommandText
	case text == btnRefresh:
		text = b.sessions.get(chatID)
		if text == "" {
			return helpText
		}
	case text == "":
		return helpText
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	v, err := b.resolver.Resolve(ctx, text)
	if err != nil {
		b.log.Errorw("resolve dashboard", "chat_id", chatID, "err", err)
		observability.CaptureErr(err)
		return failureText
	}
	if v.State == dashboard.StateFound {
		b.sessions.set(chatID, v.ParentEmail)
	}
	return Summary(v)
}
