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
	"practice-planner/internal/service"
)

// startAddConversation walks the owner through creating an item. A non-empty
// name skips the first step.
func (b *Bot) startAddConversation(ctx context.Context, msg *tgbotapi.Message, parentID, name string) error {
	state := &conversationState{stage: stageName, input: service.ItemInput{ParentID: parentID}}
	b.setConversation(msg.From.ID, state)

	if name = strings.TrimSpace(name); name != "" {
		state.input.Name = name
		return b.askCategory(ctx, msg.Chat.ID, state)
	}

	prompt := "🆕 New item.\n<b>Step 1:</b> what is it called?"
	if parentID != "" {
		if parent, err := b.svc.Items.GetItem(ctx, parentID); err == nil && parent != nil {
			prompt = fmt.Sprintf("🆕 New sub-item of «%s».\n<b>Step 1:</b> what is it called?", escape(parent.Name))
		}
	}
	return b.sendWithReplyMarkup(msg.Chat.ID, prompt, cancelKeyboard())
}

func (b *Bot) askCategory(ctx context.Context, chatID int64, state *conversationState) error {
	state.stage = stageCategory
	if state.input.ParentID != "" {
		// Sub-items inherit the parent's category.
		if parent, err := b.svc.Items.GetItem(ctx, state.input.ParentID); err == nil && parent != nil {
			state.input.Category = parent.Category
			return b.askInterval(chatID, state)
		}
	}
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return b.sendWithReplyMarkup(chatID, "🏷 <b>Step 2:</b> pick a category or type a new one.", categoryKeyboard(names))
}

func (b *Bot) askInterval(chatID int64, state *conversationState) error {
	state.stage = stageInterval
	text := fmt.Sprintf("🔁 <b>Step 3:</b> repeat every how many days? (skip for %d)", model.DefaultRecurDays)
	return b.sendWithReplyMarkup(chatID, text, skipKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageName:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The name cannot be empty.", cancelKeyboard())
		}
		state.input.Name = text
		return b.askCategory(ctx, msg.Chat.ID, state)
	case stageCategory:
		if text == "" {
			return b.sendText(msg.Chat.ID, "Pick a category.")
		}
		name, err := b.resolveCategory(ctx, text)
		if err != nil {
			return err
		}
		state.input.Category = name
		return b.askInterval(msg.Chat.ID, state)
	case stageInterval:
		if !isSkipInput(text) {
			days, err := strconv.Atoi(text)
			if err != nil || days < 1 {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Send a whole number of days, at least 1.", skipKeyboard())
			}
			state.input.RecurDays = days
		}
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ <b>Step 4:</b> a short note (or skip).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		err := b.finishItemCreation(ctx, msg.Chat.ID, state.input)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Input reset. Start again with /add.")
	}
}

// resolveCategory reuses an existing category that matches ignoring case and
// creates the category otherwise.
func (b *Bot) resolveCategory(ctx context.Context, name string) (string, error) {
	categories, err := b.svc.Categories.List(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, name) {
			return c.Name, nil
		}
	}
	created, err := b.svc.Categories.AddCategory(ctx, name)
	if errors.Is(err, service.ErrCategoryExists) {
		return name, nil
	}
	if err != nil {
		return "", err
	}
	return created.Name, nil
}

func (b *Bot) finishItemCreation(ctx context.Context, chatID int64, input service.ItemInput) error {
	item, err := b.svc.Items.AddItem(ctx, input)
	if err != nil {
		return b.replyError(chatID, err)
	}
	b.logger.Info("item created", zap.String("item_id", item.ID), zap.String("parent_id", item.ParentID))

	var summary strings.Builder
	summary.WriteString("✅ <b>Item saved</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Name:</b> %s\n", escape(item.Name)))
	summary.WriteString(fmt.Sprintf("• <b>Category:</b> %s\n", escape(item.Category)))
	summary.WriteString(fmt.Sprintf("• <b>Every:</b> %d days\n", item.RecurDays))
	if item.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Note:</b> %s\n", escape(item.Description)))
	}
	return b.sendText(chatID, strings.TrimSpace(summary.String()))
}
