package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/invitebot/internal/invitebot/domain"
	"github.com/aussiebroadwan/invitebot/internal/invitebot/metrics"
	"github.com/aussiebroadwan/invitebot/pkg/slogx"
)

// AdminFlow gates free-text edits of settings to a single administrator.
// Each conversation holds at most one pending edit; the entry is removed as
// soon as a submission is processed or it ages past SessionTTL.
type AdminFlow struct {
	Settings *SettingsService
	AdminID  int64

	// SessionTTL expires pending edits. Zero keeps them until replaced.
	SessionTTL time.Duration
	Now        func() time.Time

	mu       sync.Mutex
	sessions map[int64]pendingEdit
}

type pendingEdit struct {
	state domain.AdminInputState
	since time.Time
}

// EditResult is a setting value accepted from the admin.
type EditResult struct {
	Field domain.SettingKey
	Value string
}

func NewAdminFlow(settings *SettingsService, adminID int64, ttl time.Duration) *AdminFlow {
	return &AdminFlow{
		Settings:   settings,
		AdminID:    adminID,
		SessionTTL: ttl,
		sessions:   make(map[int64]pendingEdit),
	}
}

func (f *AdminFlow) IsAdmin(actor int64) bool {
	return actor == f.AdminID
}

// State returns the input state of a conversation.
func (f *AdminFlow) State(session int64) domain.AdminInputState {
	f.mu.Lock()
	defer f.mu.Unlock()

	pending, ok := f.sessions[session]
	if !ok || f.expired(pending) {
		return domain.AdminIdle
	}
	return pending.state
}

// BeginEdit moves the conversation to the state awaiting field. A pending
// edit for another field is replaced.
func (f *AdminFlow) BeginEdit(ctx context.Context, session, actor int64, field domain.SettingKey) error {
	log := slogx.FromContext(ctx)

	if !f.IsAdmin(actor) {
		log.Warn("non-admin attempted privileged action", slog.Int64("actor", actor))
		return ErrAccessDenied
	}

	state, ok := domain.AwaitingStateFor(field)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSetting, field)
	}

	f.mu.Lock()
	f.sessions[session] = pendingEdit{state: state, since: f.now()}
	pending := len(f.sessions)
	f.mu.Unlock()

	metrics.AdminSessions.Set(float64(pending))
	log.Debug("admin edit started", slog.Int64("session", session), slog.String("state", state.String()))
	return nil
}

// Submit applies text to the pending edit of the conversation. The pending
// edit is cleared whether or not the value is accepted; a rejected value
// has to be started over with BeginEdit.
func (f *AdminFlow) Submit(ctx context.Context, session, actor int64, text string) (EditResult, error) {
	log := slogx.FromContext(ctx)

	f.mu.Lock()
	pending, ok := f.sessions[session]
	if ok && f.expired(pending) {
		delete(f.sessions, session)
		ok = false
	}
	if !ok {
		f.mu.Unlock()
		return EditResult{}, ErrNoPendingEdit
	}
	if !f.IsAdmin(actor) {
		f.mu.Unlock()
		log.Warn("non-admin attempted privileged action", slog.Int64("actor", actor))
		return EditResult{}, ErrAccessDenied
	}
	delete(f.sessions, session)
	remaining := len(f.sessions)
	f.mu.Unlock()

	metrics.AdminSessions.Set(float64(remaining))

	field, _ := pending.state.Field()
	value := text

	switch field {
	case domain.SettingInviteDays:
		days, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || days <= 0 || days > domain.MaxInviteDays {
			metrics.AdminEdits.WithLabelValues(field.String(), "invalid").Inc()
			log.Info("rejected invite days input", slog.String("input", text))
			return EditResult{Field: field}, fmt.Errorf("%w: invite days must be a whole number between 1 and %d", ErrValidation, domain.MaxInviteDays)
		}
		value = strconv.Itoa(days)
	default:
		if strings.TrimSpace(text) == "" {
			metrics.AdminEdits.WithLabelValues(field.String(), "invalid").Inc()
			log.Info("rejected empty setting value", slog.String("key", field.String()))
			return EditResult{Field: field}, fmt.Errorf("%w: %s must not be empty", ErrValidation, field)
		}
	}

	if err := f.Settings.Set(ctx, field, value); err != nil {
		metrics.AdminEdits.WithLabelValues(field.String(), "error").Inc()
		log.Error("failed to save setting", slog.String("key", field.String()), slog.Any("error", err))
		return EditResult{}, err
	}

	metrics.AdminEdits.WithLabelValues(field.String(), "ok").Inc()
	log.Info("setting updated", slog.String("key", field.String()))
	return EditResult{Field: field, Value: value}, nil
}

// SweepExpired drops pending edits older than SessionTTL and returns how
// many were removed.
func (f *AdminFlow) SweepExpired() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	removed := 0
	for session, pending := range f.sessions {
		if f.expired(pending) {
			delete(f.sessions, session)
			removed++
		}
	}

	metrics.AdminSessions.Set(float64(len(f.sessions)))
	return removed
}

// Pending returns the number of conversations with an edit in progress.
func (f *AdminFlow) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *AdminFlow) expired(p pendingEdit) bool {
	return f.SessionTTL > 0 && f.now().Sub(p.since) >= f.SessionTTL
}

func (f *AdminFlow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}
