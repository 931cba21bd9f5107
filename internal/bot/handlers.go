package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"practice-planner/internal/model"
	"practice-planner/internal/repository"
	"practice-planner/internal/service"
)

const (
	cbTogglePrefix = "toggle:"
	cbPausePrefix  = "pause:"
	cbDeletePrefix = "delete:"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.allowed(msg.From) {
		b.logger.Debug("ignored message from stranger", zap.Int64("chat_id", msg.Chat.ID))
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	}

	if msg.IsCommand() {
		b.logger.Info("command", zap.String("command", msg.Command()), zap.String("args", msg.CommandArguments()))
		return b.handleCommand(ctx, msg)
	}

	if handled, err := b.handleMenuAlias(ctx, msg); handled {
		return err
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.getConversation(msg.From.ID) != nil {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Try /today, /add or /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "today", "report":
		return b.handleToday(ctx, msg.Chat.ID)
	case "done":
		return b.handleMark(ctx, msg.Chat.ID, args, true)
	case "undo":
		return b.handleMark(ctx, msg.Chat.ID, args, false)
	case "items":
		return b.handleItems(ctx, msg.Chat.ID)
	case "add":
		return b.startAddConversation(ctx, msg, "", args)
	case "sub":
		return b.handleSub(ctx, msg, args)
	case "pause":
		return b.handlePause(ctx, msg.Chat.ID, args)
	case "delete":
		return b.handleDelete(ctx, msg, args)
	case "categories":
		return b.handleCategories(ctx, msg.Chat.ID)
	case "addcat":
		return b.handleAddCategory(ctx, msg.Chat.ID, args)
	case "delcat":
		return b.handleDeleteCategory(ctx, msg.Chat.ID, args)
	case "stats":
		return b.handleStats(ctx, msg.Chat.ID)
	case "signin":
		return b.handleSignIn(ctx, msg)
	case "signout":
		b.svc.Sync.SignOut()
		return b.sendText(msg.Chat.ID, "🔌 Signed out. Working with local data.")
	case "status":
		return b.handleStatus(msg.Chat.ID)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}
	text := fmt.Sprintf("👋 Hi, %s!\n<b>I keep track of what to practice and when.</b>\n\n%s", escape(name), helpText)
	return b.sendText(msg.Chat.ID, text)
}

const helpText = "Commands:\n" +
	"• /today — what is due today\n" +
	"• /done &lt;n&gt; and /undo &lt;n&gt; — mark or unmark item n of /today\n" +
	"• /items — all items\n" +
	"• /add [name] — add an item\n" +
	"• /sub &lt;n&gt; — add a sub-item under item n of /items\n" +
	"• /pause &lt;n&gt; — pause or resume item n of /items\n" +
	"• /delete &lt;n&gt; — delete item n of /items with its sub-items\n" +
	"• /categories, /addcat &lt;name&gt;, /delcat &lt;name&gt;\n" +
	"• /stats — today's progress\n" +
	"• /signin, /signout, /status — cloud sync\n" +
	"• /cancel — abort the current input"

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	return b.sendText(msg.Chat.ID, "ℹ️ <b>Help</b>\n"+helpText)
}

func (b *Bot) handleToday(ctx context.Context, chatID int64) error {
	day := b.today()
	text, err := b.svc.Reports.DailySummary(ctx, day)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build today's plan: %s", escape(err.Error())))
	}
	groups, _, err := b.svc.Recurrence.TodayView(ctx, day)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build today's plan: %s", escape(err.Error())))
	}

	due := service.Flatten(groups)
	ids := make([]string, 0, len(due))
	var buttons [][]tgbotapi.InlineKeyboardButton
	for i, item := range due {
		ids = append(ids, item.ID)
		icon := "⬜"
		if item.IsCompleted {
			icon = "✅"
		}
		label := fmt.Sprintf("%s %d · %s", icon, i+1, shortTitle(item.Name, 24))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, cbTogglePrefix+item.ID),
		))
	}
	b.setRefs(b.todayRefs, chatID, ids)

	if len(buttons) == 0 {
		return b.sendText(chatID, text)
	}
	return b.sendWithReplyMarkup(chatID, text, tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func (b *Bot) handleMark(ctx context.Context, chatID int64, args string, done bool) error {
	usage := "/done 2"
	if !done {
		usage = "/undo 2"
	}
	n, err := parseNumber(args)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Give the number from /today, e.g. %s", usage))
	}
	id, ok := b.ref(b.todayRefs, chatID, n)
	if !ok {
		return b.sendText(chatID, "No such number. Open /today first.")
	}
	item, err := b.svc.Items.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return b.sendText(chatID, "Item not found.")
	}

	day := b.today()
	if done {
		changed, err := b.svc.Recurrence.MarkCompleted(ctx, id, day)
		if err != nil {
			return b.replyError(chatID, err)
		}
		if !changed {
			return b.sendText(chatID, fmt.Sprintf("«%s» is already done today.", escape(item.Name)))
		}
		b.logger.Info("item completed", zap.String("item_id", id), zap.String("day", day))
		return b.sendText(chatID, fmt.Sprintf("✅ «%s» done.", escape(item.Name)))
	}

	changed, err := b.svc.Recurrence.UnmarkCompleted(ctx, id, day)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if !changed {
		return b.sendText(chatID, fmt.Sprintf("«%s» was not marked today.", escape(item.Name)))
	}
	return b.sendText(chatID, fmt.Sprintf("↩️ «%s» unmarked.", escape(item.Name)))
}

func (b *Bot) handleItems(ctx context.Context, chatID int64) error {
	top, err := b.svc.Items.TopLevelItems(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if len(top) == 0 {
		b.setRefs(b.itemRefs, chatID, nil)
		return b.sendText(chatID, "No items yet. Add one with /add.")
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Items</b>\n")
	var ids []string
	var buttons [][]tgbotapi.InlineKeyboardButton
	add := func(item model.Item, indent string) {
		ids = append(ids, item.ID)
		builder.WriteString(formatItem(len(ids), item, indent))
		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("⏯ %d · %s", len(ids), shortTitle(item.Name, 20)), cbPausePrefix+item.ID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", cbDeletePrefix+item.ID),
		))
	}
	for _, item := range top {
		add(item, "")
		subs, err := b.svc.Items.SubItems(ctx, item.ID)
		if err != nil {
			return b.replyError(chatID, err)
		}
		for _, sub := range subs {
			add(sub, "   ")
		}
	}
	b.setRefs(b.itemRefs, chatID, ids)

	return b.sendWithReplyMarkup(chatID, strings.TrimSpace(builder.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...))
}

func formatItem(n int, item model.Item, indent string) string {
	icon := "🟢"
	if item.IsPaused() {
		icon = "⏸"
	}
	line := fmt.Sprintf("%s%d. %s %s <i>(%s, every %dd)</i>\n", indent, n, icon, escape(item.Name), escape(item.Category), item.RecurDays)
	if item.Description != "" {
		line += fmt.Sprintf("%s   📝 %s\n", indent, escape(item.Description))
	}
	return line
}

func (b *Bot) handleSub(ctx context.Context, msg *tgbotapi.Message, args string) error {
	n, err := parseNumber(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the parent number from /items, e.g. /sub 1")
	}
	id, ok := b.ref(b.itemRefs, msg.Chat.ID, n)
	if !ok {
		return b.sendText(msg.Chat.ID, "No such number. Open /items first.")
	}
	return b.startAddConversation(ctx, msg, id, "")
}

func (b *Bot) handlePause(ctx context.Context, chatID int64, args string) error {
	n, err := parseNumber(args)
	if err != nil {
		return b.sendText(chatID, "Give the number from /items, e.g. /pause 3")
	}
	id, ok := b.ref(b.itemRefs, chatID, n)
	if !ok {
		return b.sendText(chatID, "No such number. Open /items first.")
	}
	return b.togglePause(ctx, chatID, id)
}

func (b *Bot) togglePause(ctx context.Context, chatID int64, id string) error {
	item, err := b.svc.Items.ToggleStatus(ctx, id)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if item == nil {
		return b.sendText(chatID, "Item not found.")
	}
	if item.IsPaused() {
		return b.sendText(chatID, fmt.Sprintf("⏸ «%s» paused.", escape(item.Name)))
	}
	return b.sendText(chatID, fmt.Sprintf("▶️ «%s» resumed.", escape(item.Name)))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message, args string) error {
	n, err := parseNumber(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Give the number from /items, e.g. /delete 3")
	}
	id, ok := b.ref(b.itemRefs, msg.Chat.ID, n)
	if !ok {
		return b.sendText(msg.Chat.ID, "No such number. Open /items first.")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From.ID, id)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID, userID int64, id string) error {
	item, err := b.svc.Items.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return b.sendText(chatID, "Item not found.")
	}
	b.setConfirmation(userID, confirmationRequest{itemID: item.ID, name: item.Name})
	text := fmt.Sprintf("Delete «%s» together with its sub-items and history?", escape(item.Name))
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		n, err := b.svc.Items.DeleteItemCascade(ctx, req.itemID)
		if err != nil {
			return b.replyError(msg.Chat.ID, err)
		}
		if n == 0 {
			return b.sendText(msg.Chat.ID, "Item not found or already deleted.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 «%s» deleted (%d items).", escape(req.name), n))
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Kept.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) handleCategories(ctx context.Context, chatID int64) error {
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}
	if len(categories) == 0 {
		return b.sendText(chatID, "No categories yet. Add one with /addcat.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, c := range categories {
		builder.WriteString(fmt.Sprintf("• %s\n", escape(c.Name)))
	}
	return b.sendText(chatID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleAddCategory(ctx context.Context, chatID int64, name string) error {
	category, err := b.svc.Categories.AddCategory(ctx, name)
	switch {
	case errors.Is(err, service.ErrCategoryExists):
		return b.sendText(chatID, "That category already exists.")
	case errors.Is(err, service.ErrInvalidInput):
		return b.sendText(chatID, "Give a name, e.g. /addcat Scales")
	case err != nil:
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, fmt.Sprintf("📂 Category «%s» added.", escape(category.Name)))
}

func (b *Bot) handleDeleteCategory(ctx context.Context, chatID int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return b.sendText(chatID, "Give a name, e.g. /delcat Scales")
	}
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		return b.replyError(chatID, err)
	}
	for _, c := range categories {
		if !strings.EqualFold(c.Name, name) {
			continue
		}
		ok, err := b.svc.Categories.DeleteCategory(ctx, c.ID)
		if err != nil {
			return b.replyError(chatID, err)
		}
		if !ok {
			return b.sendText(chatID, fmt.Sprintf("«%s» is still used by items.", escape(c.Name)))
		}
		return b.sendText(chatID, fmt.Sprintf("🗑 Category «%s» deleted.", escape(c.Name)))
	}
	return b.sendText(chatID, "Category not found.")
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) error {
	stats, err := b.svc.Recurrence.Stats(ctx, b.today())
	if err != nil {
		return b.replyError(chatID, err)
	}
	return b.sendText(chatID, service.FormatStats(stats))
}

func (b *Bot) handleSignIn(ctx context.Context, msg *tgbotapi.Message) error {
	identity := fmt.Sprintf("telegram:%d", msg.From.ID)
	res, err := b.svc.Sync.SignIn(ctx, identity)
	if err != nil {
		return b.replyError(msg.Chat.ID, err)
	}
	if res.Warning != nil {
		b.logger.Warn("sign-in sync failed", zap.Error(res.Warning))
		return b.sendText(msg.Chat.ID, "⚠️ Cloud sync failed, still using local data.")
	}
	var text string
	switch res.Migration {
	case service.MigrationUpload:
		text = "☁️ Signed in. Local data was uploaded."
	case service.MigrationDownload:
		text = "☁️ Signed in. Cloud data was downloaded."
	default:
		text = "☁️ Signed in."
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleStatus(chatID int64) error {
	if b.svc.Sync.Active() != repository.KindRemote {
		return b.sendText(chatID, "💾 Local data, not signed in.")
	}
	status := b.syncStatus()
	if status == "" {
		status = model.SyncStatusSynced
	}
	return b.sendText(chatID, fmt.Sprintf("☁️ Signed in as <code>%s</code>, %s.", escape(b.svc.Sync.User()), status))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.Message == nil || !b.allowed(cb.From) {
		return nil
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data
	b.logger.Debug("callback", zap.String("data", data))

	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		id := strings.TrimPrefix(data, cbTogglePrefix)
		done, err := b.svc.Recurrence.Toggle(ctx, id, b.today())
		if err != nil {
			b.ack(cb, "")
			return err
		}
		if done {
			b.ack(cb, "✅ Done")
		} else {
			b.ack(cb, "↩️ Unmarked")
		}
		return b.handleToday(ctx, chatID)
	case strings.HasPrefix(data, cbPausePrefix):
		b.ack(cb, "")
		return b.togglePause(ctx, chatID, strings.TrimPrefix(data, cbPausePrefix))
	case strings.HasPrefix(data, cbDeletePrefix):
		b.ack(cb, "")
		return b.askDeleteConfirmation(ctx, chatID, cb.From.ID, strings.TrimPrefix(data, cbDeletePrefix))
	default:
		b.ack(cb, "")
		return nil
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(msg.Text)) {
	case strings.ToLower(menuLabelToday):
		return true, b.handleToday(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelItems):
		return true, b.handleItems(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelAdd):
		return true, b.startAddConversation(ctx, msg, "", "")
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

// replyError shows validation problems to the user and returns anything else.
func (b *Bot) replyError(chatID int64, err error) error {
	if errors.Is(err, service.ErrInvalidInput) {
		return b.sendText(chatID, escape(err.Error()))
	}
	_ = b.sendText(chatID, "Something went wrong, try again later.")
	return err
}

func parseNumber(args string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("number must be positive")
	}
	return n, nil
}
