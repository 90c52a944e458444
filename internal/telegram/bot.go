package telegram

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"shoplist/internal/app"
	"shoplist/internal/config"
	"shoplist/internal/metrics"
	"shoplist/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// botAPI is the part of tgbotapi.BotAPI the bot talks to.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// chat holds the editing session of one conversation. mu serializes every
// command of that chat.
type chat struct {
	mu      sync.Mutex
	session *shopping.Session
}

// Bot drives shopping list sessions from Telegram chats.
type Bot struct {
	api          botAPI
	app          *app.App
	metricsStore *metrics.Store
	cfg          *config.Config

	mu    sync.Mutex
	chats map[int64]*chat
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(cfg *config.Config, application *app.App, metricsStore *metrics.Store) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("failed to build webhook for %s: %w", webhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)

	return newBot(bot, cfg, application, metricsStore), nil
}

func newBot(api botAPI, cfg *config.Config, application *app.App, metricsStore *metrics.Store) *Bot {
	return &Bot{
		api:          api,
		app:          application,
		metricsStore: metricsStore,
		cfg:          cfg,
		chats:        make(map[int64]*chat),
	}
}

// RegisterHandlers registers the webhook and health handlers on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/webhook", b.handleWebhook)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		log.Printf("Error parsing update: %v", err)
		return
	}

	if update.CallbackQuery != nil {
		if !b.isAllowed(update.CallbackQuery.From) {
			return
		}
		go b.handleCallbackQuery(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	if !b.isAllowed(update.Message.From) {
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) isAllowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	for _, id := range b.cfg.TelegramAllowedUserIDs {
		if from.ID == id {
			return true
		}
	}
	log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", from.ID, from.UserName)
	return false
}

// chat returns the state of chatID, creating it on first use.
func (b *Bot) chat(chatID int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.chats[chatID]
	if !ok {
		c = &chat{}
		b.chats[chatID] = c
	}
	return c
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c := b.chat(msg.Chat.ID)
	c.mu.Lock()
	defer c.mu.Unlock()

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleImport(ctx, msg.Chat.ID, c, text)
		return
	}

	if !strings.HasPrefix(text, "/") {
		b.reply(msg.Chat.ID, "Send a command, or a link to import products. /help lists the commands.")
		return
	}

	command, args := parseCommand(text)
	b.dispatch(ctx, msg, c, command, args)
}

// parseCommand splits "/cmd@bot args" into "cmd" and "args".
func parseCommand(text string) (string, string) {
	head, args, _ := strings.Cut(text, " ")
	head = strings.TrimPrefix(head, "/")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(args)
}

func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message, c *chat, command, args string) {
	chatID := msg.Chat.ID

	switch command {
	case "start", "help":
		b.reply(chatID, helpText)
	case "lists":
		b.handleLists(ctx, chatID)
	case "new":
		b.handleNew(ctx, chatID, c, args)
	case "edit":
		b.handleEdit(ctx, chatID, c, args)
	case "categories":
		b.handleCategories(ctx, chatID, c)
	case "category":
		b.handleCreateCategory(ctx, chatID, c, args)
	case "delete":
		b.handleDelete(ctx, chatID, args)
	case "metrics":
		b.handleMetricsRequest(ctx, msg)
	case "name", "add", "remove", "qty", "show", "submit", "cancel":
		if c.session == nil {
			b.reply(chatID, noSessionText)
			return
		}
		b.dispatchSession(ctx, chatID, c, command, args)
	default:
		b.reply(chatID, fmt.Sprintf("Unknown command /%s. /help lists the commands.", escape(command)))
	}
}

func (b *Bot) dispatchSession(ctx context.Context, chatID int64, c *chat, command, args string) {
	switch command {
	case "name":
		b.handleName(chatID, c, args)
	case "add":
		b.handleAdd(ctx, chatID, c, args)
	case "remove":
		b.handleRemove(chatID, c, args)
	case "qty":
		b.handleQuantity(chatID, c, args)
	case "show":
		b.reply(chatID, formatSession(c.session))
	case "submit":
		b.handleSubmit(ctx, chatID, c)
	case "cancel":
		c.session = nil
		b.reply(chatID, "Discarded the list you were editing.")
	}
}

func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	if query.Message == nil || query.Message.Chat == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	action, id, ok := strings.Cut(query.Data, "|")
	if !ok || id == "" {
		return
	}

	chatID := query.Message.Chat.ID
	c := b.chat(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()

	switch action {
	case "edit":
		b.handleEdit(ctx, chatID, c, id)
	case "delete":
		b.handleDelete(ctx, chatID, id)
	}
}

func (b *Bot) handleMetricsRequest(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.ID != b.cfg.AdminTelegramID {
		b.reply(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	b.handleMetricsCommand(ctx, msg.Chat.ID)
}

func (b *Bot) handleMetricsCommand(ctx context.Context, chatID int64) {
	if b.metricsStore == nil {
		b.reply(chatID, "❌ Metrics are not configured.")
		return
	}
	usage, err := b.metricsStore.GetDailyUsage(ctx, 7)
	if err != nil {
		log.Printf("Error fetching metrics: %v", err)
		b.reply(chatID, "❌ Error fetching metrics.")
		return
	}

	health := metrics.ReadHealth(filepath.Dir(b.cfg.DatabasePath))
	b.reply(chatID, formatMetrics(usage, health))
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}
