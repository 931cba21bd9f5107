package bot

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"practice-planner/internal/model"
	"practice-planner/internal/repository"
	"practice-planner/internal/service"
)

const ownerID = 42

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSender struct {
	sent     []tgbotapi.MessageConfig
	requests int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.sent, "no message was sent")
	return f.sent[len(f.sent)-1]
}

type harness struct {
	bot    *Bot
	api    *fakeSender
	svc    Services
	remote *repository.RemoteStore
}

func newHarness(t *testing.T) harness {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())

	db, err := repository.NewDB(fmt.Sprintf("file:bot_local_%s?mode=memory&cache=shared", name), nil)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	docs, err := repository.OpenDocuments(context.Background(), fmt.Sprintf("file:bot_remote_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { docs.Close() })

	remote := repository.NewRemoteStore(docs, nil)
	sync := service.NewSyncService(repository.NewLocalStore(db, nil), remote, nil)
	recurrence := service.NewRecurrenceService(sync, nil)
	svc := Services{
		Items:      service.NewItemService(sync, time.UTC, nil),
		Categories: service.NewCategoryService(sync, time.UTC, nil),
		Recurrence: recurrence,
		Reports:    service.NewReportService(recurrence),
		Sync:       sync,
	}
	api := &fakeSender{}
	b := newBot(api, ownerID, svc, time.UTC, nil)
	remote.OnStatusChange(b.SetSyncStatus)
	return harness{bot: b, api: api, svc: svc, remote: remote}
}

func message(from int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: from, FirstName: "Ann"},
		Chat: &tgbotapi.Chat{ID: from, Type: "private"},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		length := len(text)
		if i := strings.IndexByte(text, ' '); i > 0 {
			length = i
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}}
	}
	return msg
}

func (h harness) say(t *testing.T, text string) string {
	t.Helper()
	require.NoError(t, h.bot.handleMessage(context.Background(), message(ownerID, text)))
	return h.api.last(t).Text
}

func TestIgnoresStrangers(t *testing.T) {
	h := newHarness(t)
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{Message: message(7, "/today")})
	h.bot.handleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "1",
		From:    &tgbotapi.User{ID: 7},
		Message: message(7, "x"),
		Data:    cbTogglePrefix + "anything",
	}})
	assert.Empty(t, h.api.sent)
	assert.Zero(t, h.api.requests)
}

func TestTodayDoneUndo(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	item, err := h.svc.Items.AddItem(ctx, service.ItemInput{Name: "Arpeggios", Category: "Scales"})
	require.NoError(t, err)

	text := h.say(t, "/today")
	assert.Contains(t, text, "Arpeggios")
	markup, ok := h.api.last(t).ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, cbTogglePrefix+item.ID, *markup.InlineKeyboard[0][0].CallbackData)

	assert.Contains(t, h.say(t, "/done 1"), "done")
	done, err := h.svc.Recurrence.IsCompleted(ctx, item.ID, h.bot.today())
	require.NoError(t, err)
	assert.True(t, done)

	assert.Contains(t, h.say(t, "/done 1"), "already done")
	assert.Contains(t, h.say(t, "/undo 1"), "unmarked")
	assert.Contains(t, h.say(t, "/undo 1"), "was not marked")
	assert.Contains(t, h.say(t, "/done 9"), "No such number")
	assert.Contains(t, h.say(t, "/done x"), "number from /today")
}

func TestToggleCallback(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	item, err := h.svc.Items.AddItem(ctx, service.ItemInput{Name: "Etude", Category: "Pieces"})
	require.NoError(t, err)

	cb := &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: ownerID},
		Message: message(ownerID, "x"),
		Data:    cbTogglePrefix + item.ID,
	}
	require.NoError(t, h.bot.handleCallback(ctx, cb))
	assert.Equal(t, 1, h.api.requests)

	done, err := h.svc.Recurrence.IsCompleted(ctx, item.ID, h.bot.today())
	require.NoError(t, err)
	assert.True(t, done)
}

func TestAddConversation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.Categories.AddCategory(ctx, "Scales")
	require.NoError(t, err)

	assert.Contains(t, h.say(t, "/add"), "Step 1")
	assert.Contains(t, h.say(t, "Hanon"), "Step 2")
	assert.Contains(t, h.say(t, "scales"), "Step 3")
	assert.Contains(t, h.say(t, "abc"), "whole number")
	assert.Contains(t, h.say(t, "3"), "Step 4")
	assert.Contains(t, h.say(t, btnSkip), "Item saved")

	items, err := h.svc.Items.ListItems(ctx, model.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Hanon", items[0].Name)
	assert.Equal(t, "Scales", items[0].Category)
	assert.Equal(t, 3, items[0].RecurDays)
	assert.Empty(t, items[0].Description)

	categories, err := h.svc.Categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestAddSubItemInheritsCategory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	parent, err := h.svc.Items.AddItem(ctx, service.ItemInput{Name: "Scales", Category: "Technique"})
	require.NoError(t, err)

	h.say(t, "/items")
	assert.Contains(t, h.say(t, "/sub 1"), "sub-item of «Scales»")
	assert.Contains(t, h.say(t, "D major"), "Step 3")
	h.say(t, "-")
	h.say(t, "hands separate")

	subs, err := h.svc.Items.SubItems(ctx, parent.ID)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "Technique", subs[0].Category)
	assert.Equal(t, model.DefaultRecurDays, subs[0].RecurDays)
	assert.Equal(t, "hands separate", subs[0].Description)
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	parent, err := h.svc.Items.AddItem(ctx, service.ItemInput{Name: "Sonata", Category: "Pieces"})
	require.NoError(t, err)
	_, err = h.svc.Items.AddItem(ctx, service.ItemInput{Name: "Mvt 1", Category: "Pieces", ParentID: parent.ID})
	require.NoError(t, err)

	h.say(t, "/items")
	assert.Contains(t, h.say(t, "/delete 1"), "Delete «Sonata»")
	assert.Contains(t, h.say(t, "maybe"), "Confirm or cancel")
	assert.Contains(t, h.say(t, "keep"), "Kept")

	h.say(t, "/delete 1")
	assert.Contains(t, h.say(t, btnConfirm), "(2 items)")

	items, err := h.svc.Items.ListItems(ctx, model.ItemFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCategoryCommands(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.Contains(t, h.say(t, "/addcat Theory"), "added")
	assert.Contains(t, h.say(t, "/addcat THEORY"), "already exists")
	assert.Contains(t, h.say(t, "/addcat"), "Give a name")

	_, err := h.svc.Items.AddItem(ctx, service.ItemInput{Name: "Intervals", Category: "Theory"})
	require.NoError(t, err)
	assert.Contains(t, h.say(t, "/delcat theory"), "still used")
	assert.Contains(t, h.say(t, "/delcat Jazz"), "not found")
	assert.Contains(t, h.say(t, "/categories"), "Theory")
}

func TestSignInAndStatus(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.Items.AddItem(ctx, service.ItemInput{Name: "Bach", Category: "Pieces"})
	require.NoError(t, err)

	assert.Contains(t, h.say(t, "/status"), "Local data")
	assert.Contains(t, h.say(t, "/signin"), "uploaded")
	assert.Equal(t, "telegram:42", h.svc.Sync.User())

	status := h.say(t, "/status")
	assert.Contains(t, status, "telegram:42")
	assert.Contains(t, status, string(model.SyncStatusSynced))

	assert.Contains(t, h.say(t, "/signout"), "Signed out")
	assert.Equal(t, repository.KindLocal, h.svc.Sync.Active())
}

func TestSendDailyReport(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Items.AddItem(context.Background(), service.ItemInput{Name: "Chorale", Category: "Pieces"})
	require.NoError(t, err)

	require.NoError(t, h.bot.SendDailyReport(context.Background()))
	msg := h.api.last(t)
	assert.Equal(t, int64(ownerID), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "Chorale")

	h.bot.ownerID = 0
	sent := len(h.api.sent)
	require.NoError(t, h.bot.SendDailyReport(context.Background()))
	assert.Len(t, h.api.sent, sent)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "3", want: 3},
		{in: " 12 ", want: 12},
		{in: "0", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "two", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "short", shortTitle(" short ", 10))
	assert.Equal(t, "abcd…", shortTitle("abcdefgh", 5))
	assert.Equal(t, "a b", shortTitle("a\nb", 5))
}
