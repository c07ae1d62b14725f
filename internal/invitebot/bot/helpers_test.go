package bot

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/service"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/store/drivers/sqlite"
	"github.com/aussiebroadwan/invitebot/pkg/telegram"
	"github.com/stretchr/testify/require"
)

const (
	adminID = int64(900)
	userID  = int64(100)
	chatID  = int64(555)
)

// fakeMessenger records replies.
type fakeMessenger struct {
	mu       sync.Mutex
	sent     []telegram.SendMessageParams
	edited   []telegram.EditMessageTextParams
	answered []string
	editErr  error
}

func (m *fakeMessenger) SendMessage(_ context.Context, p telegram.SendMessageParams) (telegram.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, p)
	return telegram.Message{MessageID: int64(len(m.sent)), Chat: telegram.Chat{ID: p.ChatID}, Text: p.Text}, nil
}

func (m *fakeMessenger) EditMessageText(_ context.Context, p telegram.EditMessageTextParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return m.editErr
	}
	m.edited = append(m.edited, p)
	return nil
}

func (m *fakeMessenger) AnswerCallbackQuery(_ context.Context, id, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered = append(m.answered, id)
	return nil
}

func (m *fakeMessenger) lastText(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1].Text
}

func (m *fakeMessenger) last(t *testing.T) telegram.SendMessageParams {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	return m.sent[len(m.sent)-1]
}

// fakeLinks is a LinkProvider that always succeeds unless told otherwise.
type fakeLinks struct {
	mu        sync.Mutex
	permitted bool
	n         int
}

func (f *fakeLinks) HasInvitePermission(context.Context) (bool, error) { return f.permitted, nil }

func (f *fakeLinks) CreateSingleUseLink(context.Context, string, time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return fmt.Sprintf("https://t.me/+fake%d", f.n), nil
}

func (f *fakeLinks) RevokeLink(context.Context, string) error { return nil }

type testBot struct {
	dispatcher *Dispatcher
	messenger  *fakeMessenger
	links      *fakeLinks
	settings   *service.SettingsService
	invites    *service.InviteService
}

var testNow = time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)

func newTestBot(t *testing.T) *testBot {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	settings := &service.SettingsService{Store: st}
	require.NoError(t, settings.Initialize(context.Background()))

	links := &fakeLinks{permitted: true}
	invites := &service.InviteService{
		Store:    st,
		Settings: settings,
		Links:    links,
		Now:      func() time.Time { return testNow },
	}
	messenger := &fakeMessenger{}

	return &testBot{
		dispatcher: &Dispatcher{
			Messenger: messenger,
			Settings:  settings,
			Invites:   invites,
			Admin:     service.NewAdminFlow(settings, adminID, time.Hour),
		},
		messenger: messenger,
		links:     links,
		settings:  settings,
		invites:   invites,
	}
}

func textUpdate(from int64, text string) telegram.Update {
	return telegram.Update{
		UpdateID: 1,
		Message: &telegram.Message{
			MessageID: 10,
			From:      &telegram.User{ID: from},
			Chat:      telegram.Chat{ID: chatID, Type: "private"},
			Text:      text,
		},
	}
}

func callbackUpdate(from int64, data string) telegram.Update {
	return telegram.Update{
		UpdateID: 2,
		CallbackQuery: &telegram.CallbackQuery{
			ID:   "cb-1",
			From: telegram.User{ID: from},
			Message: &telegram.Message{
				MessageID: 20,
				Chat:      telegram.Chat{ID: chatID, Type: "private"},
			},
			Data: data,
		},
	}
}
