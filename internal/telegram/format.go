package telegram

import (
	"fmt"
	"strings"

	"shoplist/internal/metrics"
	"shoplist/internal/shopping"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = `🛒 *Shopping lists*

/lists - browse saved lists
/new <name> - start a new list
/edit <id> - edit a saved list
/name <name> - rename the list you are editing
/categories - show categories
/category <name> - add a category
/add <product> | <category> | <qty> - add a product
/remove <n> - remove row n
/qty <n> <qty> - change the quantity of row n
/show - show the list
/submit - save the list
/cancel - discard your changes
/delete <id> - delete a saved list

Send a link to import its products into the list you are editing.`

const noSessionText = "No list open. Start one with /new <name> or /edit <id>."

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// formatSession renders the list grouped by category. Rows are numbered in
// display order; /remove and /qty take those numbers.
func formatSession(s *shopping.Session) string {
	var sb strings.Builder

	name := s.Name()
	if strings.TrimSpace(name) == "" {
		name = "Untitled list"
	}
	sb.WriteString("🛒 *" + escape(name) + "*")
	if s.IsNew() {
		sb.WriteString(" _(not saved yet)_")
	}
	sb.WriteString("\n")

	groups := s.Groups()
	if len(groups) == 0 {
		sb.WriteString("\nNo products yet.")
		return sb.String()
	}

	row := 1
	for _, g := range groups {
		sb.WriteString("\n*" + escape(g.Category.Name) + "*")
		if g.Category.IsOrphan() {
			sb.WriteString(" _(not in catalog)_")
		}
		sb.WriteString(fmt.Sprintf(" (%d)\n", g.Subtotal))
		for _, it := range g.Items {
			sb.WriteString(fmt.Sprintf("%d. %s x%d\n", row, escape(it.Name), it.Quantity))
			row++
		}
	}
	sb.WriteString(fmt.Sprintf("\nTotal: %d items", shopping.GrandTotal(groups)))
	return sb.String()
}

func formatCategories(categories []shopping.Category) string {
	if len(categories) == 0 {
		return "No categories yet. Add one with /category <name>."
	}

	var sb strings.Builder
	sb.WriteString("🏷️ *Categories*\n\n")
	for _, c := range categories {
		sb.WriteString("• " + escape(c.Name))
		if c.IsOrphan() {
			sb.WriteString(" _(not in catalog)_")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatLists(lists []shopping.ShoppingList) string {
	var sb strings.Builder
	sb.WriteString("🗒️ *Shopping lists*\n\n")
	for _, l := range lists {
		sb.WriteString(fmt.Sprintf("• %s (%d products)\n  `%s`\n", escape(l.Name), len(l.Items), l.ID))
	}
	return sb.String()
}

func formatMetrics(usage []metrics.DailyUsage, health metrics.Health) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent LLM Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Data: %s in %d files\n", health.DataSize(), health.DataFiles))
	return sb.String()
}
