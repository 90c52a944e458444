package telegram

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"shoplist/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleLists(ctx context.Context, chatID int64) {
	lists, err := shopping.ListShoppingLists(ctx, b.app.Backend())
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(lists) == 0 {
		b.reply(chatID, "No shopping lists yet. Start one with /new <name>.")
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(lists))
	for _, l := range lists {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ "+l.Name, "edit|"+l.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑️", "delete|"+l.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, formatLists(lists))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send lists to chat %d: %v", chatID, err)
	}
}

func (b *Bot) handleNew(ctx context.Context, chatID int64, c *chat, name string) {
	if name == "" {
		b.reply(chatID, "Usage: /new <name>")
		return
	}

	s := shopping.NewSession(b.app.Backend())
	if err := s.Load(ctx); err != nil {
		b.replyError(chatID, err)
		return
	}
	s.SetName(name)
	c.session = s
	b.reply(chatID, "🛒 Started *"+escape(name)+"*.\nAdd products with /add <product> | <category> | <qty>.")
}

func (b *Bot) handleEdit(ctx context.Context, chatID int64, c *chat, id string) {
	if id == "" {
		b.reply(chatID, "Usage: /edit <list id>")
		return
	}

	s := shopping.NewEditSession(b.app.Backend(), id)
	if err := s.Load(ctx); err != nil {
		b.replyError(chatID, err)
		return
	}
	c.session = s
	b.reply(chatID, formatSession(s))
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64, c *chat) {
	var categories []shopping.Category
	if c.session != nil {
		categories = c.session.Categories()
	} else {
		loaded, err := shopping.NewCatalog(b.app.Backend()).Load(ctx)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		categories = loaded
	}
	b.reply(chatID, formatCategories(categories))
}

func (b *Bot) handleCreateCategory(ctx context.Context, chatID int64, c *chat, name string) {
	if name == "" {
		b.reply(chatID, "Usage: /category <name>")
		return
	}

	var (
		cat *shopping.Category
		err error
	)
	if c.session != nil {
		cat, err = c.session.CreateCategory(ctx, name)
	} else {
		cat, err = shopping.NewCatalog(b.app.Backend()).Create(ctx, name)
	}
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, "✅ Added category *"+escape(cat.Name)+"*.")
}

func (b *Bot) handleDelete(ctx context.Context, chatID int64, id string) {
	if id == "" {
		b.reply(chatID, "Usage: /delete <list id>")
		return
	}
	if err := shopping.DeleteShoppingList(ctx, b.app.Backend(), id); err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, "🗑️ Deleted the list.")
}

func (b *Bot) handleName(chatID int64, c *chat, name string) {
	if name == "" {
		b.reply(chatID, "Usage: /name <name>")
		return
	}
	c.session.SetName(name)
	b.reply(chatID, "✏️ Renamed to *"+escape(name)+"*.")
}

func (b *Bot) handleAdd(ctx context.Context, chatID int64, c *chat, args string) {
	parts := strings.Split(args, "|")
	product := strings.TrimSpace(parts[0])
	if product == "" || len(parts) > 3 {
		b.reply(chatID, "Usage: /add <product> | <category> | <qty>")
		return
	}

	var category string
	if len(parts) > 1 {
		category = strings.TrimSpace(parts[1])
	}
	qty := 1
	if len(parts) > 2 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || n < 1 {
			b.reply(chatID, "Quantity must be a whole number of at least 1.")
			return
		}
		qty = n
	}

	cat, err := b.app.CategoryFor(ctx, c.session, product, category)
	if err != nil {
		log.Printf("No category for %q in chat %d: %v", product, chatID, err)
		b.reply(chatID, "❌ "+escape(err.Error()))
		return
	}
	if !c.session.AddItem(product, cat.ID, qty) {
		b.reply(chatID, "❌ Could not add that product.")
		return
	}
	b.reply(chatID, "➕ Added "+escape(product)+" x"+strconv.Itoa(qty)+" to *"+escape(cat.Name)+"*.")
}

func (b *Bot) handleRemove(chatID int64, c *chat, args string) {
	idx, ok := position(c.session, args)
	if !ok || !c.session.Ledger().Remove(idx) {
		b.reply(chatID, "Usage: /remove <number from /show>")
		return
	}
	b.reply(chatID, formatSession(c.session))
}

func (b *Bot) handleQuantity(chatID int64, c *chat, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.reply(chatID, "Usage: /qty <number from /show> <quantity>")
		return
	}
	idx, ok := position(c.session, fields[0])
	if !ok {
		b.reply(chatID, "Usage: /qty <number from /show> <quantity>")
		return
	}
	qty, err := strconv.Atoi(fields[1])
	if err != nil || !c.session.Ledger().SetQuantity(idx, qty) {
		b.reply(chatID, "Quantity must be a whole number of at least 1.")
		return
	}
	b.reply(chatID, formatSession(c.session))
}

func (b *Bot) handleSubmit(ctx context.Context, chatID int64, c *chat) {
	list, err := c.session.Submit(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID, "✅ Saved *"+escape(list.Name)+"* ("+strconv.Itoa(c.session.Total())+" items).\nID: `"+list.ID+"`")
}

func (b *Bot) handleImport(ctx context.Context, chatID int64, c *chat, url string) {
	if c.session == nil {
		b.reply(chatID, noSessionText)
		return
	}

	res, err := b.app.ImportInto(ctx, c.session, url, "")
	if err != nil {
		log.Printf("Error importing %s: %v", url, err)
		b.reply(chatID, "❌ *Error importing page:* "+escape(err.Error()))
		return
	}

	var sb strings.Builder
	sb.WriteString("✂️ Imported " + strconv.Itoa(len(res.Added)) + " products.")
	if len(res.Skipped) > 0 {
		sb.WriteString("\nSkipped without a category: " + escape(strings.Join(res.Skipped, ", ")))
	}
	sb.WriteString("\n\n")
	sb.WriteString(formatSession(c.session))
	b.reply(chatID, sb.String())
}

// position maps a row number shown by formatSession to a ledger index.
func position(s *shopping.Session, arg string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, false
	}
	rows := rowIndexes(s.Groups())
	if n < 1 || n > len(rows) {
		return 0, false
	}
	return rows[n-1], true
}

// rowIndexes lists ledger indexes in display order.
func rowIndexes(groups []shopping.Group) []int {
	var rows []int
	for _, g := range groups {
		rows = append(rows, g.Indexes...)
	}
	return rows
}

func (b *Bot) replyError(chatID int64, err error) {
	log.Printf("Error in chat %d: %v", chatID, err)

	text := err.Error()
	var se *shopping.Error
	if errors.As(err, &se) {
		text = se.Message
	}
	b.reply(chatID, "❌ "+escape(text))
}
