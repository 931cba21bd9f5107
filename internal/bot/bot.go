package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"practice-planner/internal/dateutil"
	"practice-planner/internal/logging"
	"practice-planner/internal/model"
	"practice-planner/internal/service"
)

// sender is the part of the Telegram API the handlers use.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Services bundles what the bot drives.
type Services struct {
	Items      *service.ItemService
	Categories *service.CategoryService
	Recurrence *service.RecurrenceService
	Reports    *service.ReportService
	Sync       *service.SyncService
}

type conversationStage int

const (
	stageNone conversationStage = iota
	stageName
	stageCategory
	stageInterval
	stageDescription
)

type conversationState struct {
	stage conversationStage
	input service.ItemInput
}

type confirmationRequest struct {
	itemID string
	name   string
}

// Bot is the owner-only Telegram front end of the practice planner.
type Bot struct {
	api      sender
	client   *tgbotapi.BotAPI
	svc      Services
	ownerID  int64
	loc      *time.Location
	logger   *zap.Logger
	mu       sync.Mutex
	status   model.SyncStatus
	convs    map[int64]*conversationState
	confirms map[int64]confirmationRequest
	// todayRefs and itemRefs map the numbers shown in the last /today and
	// /items listings to item ids, per chat.
	todayRefs map[int64][]string
	itemRefs  map[int64][]string
}

func New(token string, ownerID int64, svc Services, loc *time.Location, logger *zap.Logger) (*Bot, error) {
	logger = logging.OrNop(logger).Named("bot")
	if err := tgbotapi.SetLogger(logging.StdLog(logger, zapcore.DebugLevel)); err != nil {
		return nil, fmt.Errorf("set bot logger: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	b := newBot(api, ownerID, svc, loc, logger)
	b.client = api
	return b, nil
}

func newBot(api sender, ownerID int64, svc Services, loc *time.Location, logger *zap.Logger) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:       api,
		svc:       svc,
		ownerID:   ownerID,
		loc:       loc,
		logger:    logging.OrNop(logger),
		convs:     make(map[int64]*conversationState),
		confirms:  make(map[int64]confirmationRequest),
		todayRefs: make(map[int64][]string),
		itemRefs:  make(map[int64][]string),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if b.client == nil {
		return fmt.Errorf("bot has no telegram client")
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
	return ctx.Err()
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			b.logger.Error("handle callback", zap.Error(err))
		}
	case update.Message != nil:
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			return
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			b.logger.Error("handle message", zap.Error(err))
		}
	}
}

// SetSyncStatus records the latest remote sync state for /status.
func (b *Bot) SetSyncStatus(status model.SyncStatus) {
	b.mu.Lock()
	b.status = status
	b.mu.Unlock()
}

func (b *Bot) syncStatus() model.SyncStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// SendDailyReport sends today's plan to the owner.
func (b *Bot) SendDailyReport(ctx context.Context) error {
	if b.ownerID == 0 {
		b.logger.Warn("daily report skipped, owner id is not configured")
		return nil
	}
	text, err := b.svc.Reports.DailySummary(ctx, b.today())
	if err != nil {
		return fmt.Errorf("build daily report: %w", err)
	}
	return b.sendText(b.ownerID, text)
}

func (b *Bot) allowed(from *tgbotapi.User) bool {
	return from != nil && (b.ownerID == 0 || from.ID == b.ownerID)
}

func (b *Bot) today() string {
	return dateutil.Today(b.loc)
}

func (b *Bot) sendText(chatID int64, text string) error {
	return b.sendWithReplyMarkup(chatID, text, mainMenuKeyboard())
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.logger.Warn("callback ack", zap.Error(err))
	}
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.convs[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.convs[userID]
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.convs, userID)
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirms[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirms[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirms, userID)
}

func (b *Bot) setRefs(refs map[int64][]string, chatID int64, ids []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	refs[chatID] = ids
}

// ref resolves a 1-based listing number to an item id.
func (b *Bot) ref(refs map[int64][]string, chatID int64, n int) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := refs[chatID]
	if n < 1 || n > len(ids) {
		return "", false
	}
	return ids[n-1], true
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
