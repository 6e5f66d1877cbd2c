package testutils

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/goonies/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

func newID(table string) *surrealmodels.RecordID {
	id := surrealmodels.NewRecordID(table, strings.ReplaceAll(uuid.NewString(), "-", ""))
	return &id
}

func key(table, id string) string {
	return strings.TrimPrefix(id, table+":")
}

func stamp(t time.Time) *surrealmodels.CustomDateTime {
	return &surrealmodels.CustomDateTime{Time: t.UTC()}
}

// MemoryUsers is an in-memory domain.UserRepository.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
	clock time.Time
	// Err, when set, is returned by every method.
	Err error
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: map[string]*domain.User{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *MemoryUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.Username == user.Username {
			return nil, domain.ErrUserAlreadyExists
		}
	}
	cp := *user
	cp.ID = newID("user")
	if cp.Role == "" {
		cp.Role = domain.RoleMember
	}
	if cp.Titles == nil {
		cp.Titles = []string{}
	}
	// Strictly increasing timestamps keep the newest-first order stable.
	m.clock = m.clock.Add(time.Second)
	cp.CreatedAt = stamp(m.clock)
	cp.UpdatedAt = cp.CreatedAt
	m.users[cp.ID.ID.(string)] = &cp
	out := cp
	return &out, nil
}

func (m *MemoryUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[key("user", id)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Username == username })
}

func (m *MemoryUsers) FindAnyAdmin(_ context.Context) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.Role == domain.RoleAdmin })
}

func (m *MemoryUsers) find(match func(*domain.User) bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryUsers) List(_ context.Context, q domain.UserQuery) ([]*domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	search := strings.ToLower(strings.TrimSpace(q.Search))
	var matches []*domain.User
	for _, u := range m.users {
		if search == "" ||
			strings.Contains(strings.ToLower(u.Username), search) ||
			strings.Contains(strings.ToLower(u.DisplayName), search) {
			cp := *u
			matches = append(matches, &cp)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.Time.After(matches[j].CreatedAt.Time) })

	total := int64(len(matches))
	start := q.Offset()
	if start > len(matches) {
		start = len(matches)
	}
	end := start + q.Limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], total, nil
}

func (m *MemoryUsers) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[key("user", id)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	if patch.AvatarURL != nil {
		u.AvatarURL = *patch.AvatarURL
	}
	if patch.Titles != nil {
		u.Titles = append([]string(nil), patch.Titles...)
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.CardTheme != nil {
		u.CardTheme = *patch.CardTheme
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	out := *u
	return &out, nil
}

func (m *MemoryUsers) SetPassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	u, ok := m.users[key("user", id)]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (m *MemoryUsers) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.users, key("user", id))
	return nil
}

// MemoryAllow is an in-memory domain.AllowRepository.
type MemoryAllow struct {
	mu    sync.Mutex
	names map[string]bool
}

func NewMemoryAllow(usernames ...string) *MemoryAllow {
	m := &MemoryAllow{names: map[string]bool{}}
	for _, u := range usernames {
		m.names[u] = true
	}
	return m
}

func (m *MemoryAllow) List(_ context.Context) ([]*domain.AllowEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.AllowEntry, 0, len(m.names))
	for n := range m.names {
		out = append(out, &domain.AllowEntry{Username: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (m *MemoryAllow) Upsert(_ context.Context, username string) (*domain.AllowEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[username] = true
	return &domain.AllowEntry{Username: username}, nil
}

func (m *MemoryAllow) Delete(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.names, username)
	return nil
}

func (m *MemoryAllow) IsAllowed(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.names[username], nil
}

// MemoryGallery is an in-memory domain.GalleryRepository.
type MemoryGallery struct {
	mu    sync.Mutex
	items []*domain.GalleryItem
	clock time.Time
}

func NewMemoryGallery() *MemoryGallery {
	return &MemoryGallery{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *MemoryGallery) Create(_ context.Context, item *domain.GalleryItem) (*domain.GalleryItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	cp.ID = newID("gallery")
	m.clock = m.clock.Add(time.Second)
	cp.CreatedAt = stamp(m.clock)
	m.items = append(m.items, &cp)
	out := cp
	return &out, nil
}

func (m *MemoryGallery) List(_ context.Context) ([]*domain.GalleryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.GalleryItem, 0, len(m.items))
	for i := len(m.items) - 1; i >= 0; i-- {
		cp := *m.items[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryGallery) FindByID(_ context.Context, id string) (*domain.GalleryItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range m.items {
		if it.ID.ID == key("gallery", id) {
			cp := *it
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryGallery) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, it := range m.items {
		if it.ID.ID == key("gallery", id) {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

// MemoryEvents is an in-memory domain.EventRepository.
type MemoryEvents struct {
	mu     sync.Mutex
	events []*domain.Event
}

func NewMemoryEvents() *MemoryEvents {
	return &MemoryEvents{}
}

func (m *MemoryEvents) Create(_ context.Context, event *domain.Event) (*domain.Event, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *event
	cp.ID = newID("event")
	m.events = append(m.events, &cp)
	out := cp
	return &out, nil
}

func (m *MemoryEvents) sorted(filter func(*domain.Event) bool) []*domain.Event {
	var out []*domain.Event
	for _, e := range m.events {
		if filter == nil || filter(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartAt.Time.After(out[j].StartAt.Time) })
	if out == nil {
		out = []*domain.Event{}
	}
	return out
}

func (m *MemoryEvents) List(_ context.Context) ([]*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(nil), nil
}

func (m *MemoryEvents) Active(_ context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sorted(func(e *domain.Event) bool { return e.IsActive(now) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryEvents) FindByID(_ context.Context, id string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID.ID == key("event", id) {
			cp := *e
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryEvents) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.events {
		if e.ID.ID == key("event", id) {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *MemoryEvents) DeleteEnded(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.events[:0]
	removed := 0
	for _, e := range m.events {
		if e.EndAt.Time.Before(now) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.events = kept
	return removed, nil
}

// MemoryResets is an in-memory domain.PasswordResetRepository.
type MemoryResets struct {
	mu     sync.Mutex
	resets []*domain.PasswordReset
}

func NewMemoryResets() *MemoryResets {
	return &MemoryResets{}
}

func (m *MemoryResets) Create(_ context.Context, reset *domain.PasswordReset) (*domain.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *reset
	cp.ID = newID("password_reset")
	m.resets = append(m.resets, &cp)
	out := cp
	return &out, nil
}

func (m *MemoryResets) FindByTokenHash(_ context.Context, tokenHash string) (*domain.PasswordReset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resets {
		if r.TokenHash == tokenHash {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MemoryResets) MarkUsed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resets {
		if r.ID.ID == key("password_reset", id) {
			r.Used = true
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *MemoryResets) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.resets[:0]
	removed := 0
	for _, r := range m.resets {
		if r.ExpiresAt.Time.Before(now) {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.resets = kept
	return removed, nil
}

// Len reports the number of stored resets.
func (m *MemoryResets) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.resets)
}

// SentEmail is one message captured by RecordingSender.
type SentEmail struct {
	To      string
	Subject string
	HTML    string
}

// RecordingSender is a domain.EmailSender that keeps what it was asked to send.
type RecordingSender struct {
	mu   sync.Mutex
	sent []SentEmail
	// Err, when set, is returned by Send.
	Err error
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

func (s *RecordingSender) Send(_ context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.sent = append(s.sent, SentEmail{To: to, Subject: subject, HTML: htmlBody})
	return nil
}

// Sent returns a copy of the captured messages.
func (s *RecordingSender) Sent() []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentEmail(nil), s.sent...)
}
