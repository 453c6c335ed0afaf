package viewmodels

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/pkg/auth"
)

// waitFor polls the supplied read function until the predicate holds
func waitFor[S any](t *testing.T, read func() S, pred func(S) bool) S {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := read()
		if pred(s) {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not reached before deadline; last state: %+v", read())
	var zero S
	return zero
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]models.User
	hashes map[string]string // email -> bcrypt hash

	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  map[string]models.User{},
		hashes: map[string]string{},
	}
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByProviderID(_ context.Context, providerID string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ProviderID != nil && *u.ProviderID == providerID {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Search(_ context.Context, query string, _ int) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, u := range f.users {
		if query != "" && u.Name == query {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Create(_ context.Context, user models.User, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	if passwordHash != "" {
		f.hashes[user.Email] = passwordHash
	}
	return &user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if _, ok := f.users[user.ID]; !ok {
		return nil, errors.New("no user to update")
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = user
	return &user, nil
}

func (f *fakeUserRepo) PasswordHashByEmail(_ context.Context, email string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hashes[email], nil
}

func (f *fakeUserRepo) TouchLastLogin(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		now := time.Now()
		u.LastLoginAt = &now
		f.users[id] = u
	}
	return nil
}

// fakeFeedRepo is an in-memory FeedRepository
type fakeFeedRepo struct {
	mu             sync.Mutex
	items          []models.FeedItem
	participants   map[string][]string // eventID -> userIDs
	createEventErr error
	searchEvents   []models.Event
	feedGate       chan struct{} // when set, Feed blocks until closed
}

func newFakeFeedRepo() *fakeFeedRepo {
	return &fakeFeedRepo{participants: map[string][]string{}}
}

func (f *fakeFeedRepo) Feed(_ context.Context, limit int) ([]models.FeedItem, error) {
	f.mu.Lock()
	gate := f.feedGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.FeedItem{}, f.items...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeFeedRepo) EventByID(_ context.Context, id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if e, ok := item.(models.Event); ok && e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeFeedRepo) SearchEvents(_ context.Context, _ string, _ int) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Event{}, f.searchEvents...), nil
}

func (f *fakeFeedRepo) CreateEvent(_ context.Context, event models.Event) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createEventErr != nil {
		return nil, f.createEventErr
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now()
	f.items = append([]models.FeedItem{event}, f.items...)
	return &event, nil
}

func (f *fakeFeedRepo) DeleteEvent(_ context.Context, id string) error {
	return nil
}

func (f *fakeFeedRepo) CreateAnnouncement(_ context.Context, a models.Announcement) (*models.Announcement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = time.Now()
	f.items = append([]models.FeedItem{a}, f.items...)
	return &a, nil
}

func (f *fakeFeedRepo) DeleteAnnouncement(_ context.Context, id string) error {
	return nil
}

func (f *fakeFeedRepo) JoinEvent(_ context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.participants[eventID] {
		if id == userID {
			return fmt.Errorf("user %s already joined event %s", userID, eventID)
		}
	}
	f.participants[eventID] = append(f.participants[eventID], userID)
	return nil
}

func (f *fakeFeedRepo) LeaveEvent(_ context.Context, eventID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.participants[eventID][:0]
	for _, id := range f.participants[eventID] {
		if id != userID {
			kept = append(kept, id)
		}
	}
	f.participants[eventID] = kept
	return nil
}

func (f *fakeFeedRepo) EventParticipants(_ context.Context, eventID string) ([]models.EventParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EventParticipant
	for _, id := range f.participants[eventID] {
		out = append(out, models.EventParticipant{EventID: eventID, UserID: id, JoinedAt: time.Now()})
	}
	return out, nil
}

// fakeChatRepo is an in-memory ChatRepository
type fakeChatRepo struct {
	mu           sync.Mutex
	chats        map[string]models.Chat
	participants map[string]models.ChatParticipant // chatID+"/"+userID
	listGate     chan struct{}                     // when set, ChatsForUser blocks until closed
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:        map[string]models.Chat{},
		participants: map[string]models.ChatParticipant{},
	}
}

func (f *fakeChatRepo) addParticipant(chatID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.participants[chatID+"/"+userID] = models.ChatParticipant{
		ChatID:   chatID,
		UserID:   userID,
		JoinedAt: time.Now(),
	}
}

func (f *fakeChatRepo) ChatsForUser(_ context.Context, userID string) ([]models.Chat, error) {
	f.mu.Lock()
	gate := f.listGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Chat
	for _, c := range f.chats {
		for _, id := range c.ParticipantIDs {
			if id == userID {
				out = append(out, c)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeChatRepo) ChatByID(_ context.Context, chatID, _ string) (*models.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.chats[chatID]; ok {
		return &c, nil
	}
	return nil, nil
}

func (f *fakeChatRepo) CreatePrivateChat(_ context.Context, userA, userB string) (*models.Chat, error) {
	c := models.Chat{
		ID:             uuid.New().String(),
		Type:           models.ChatTypePrivate,
		ParticipantIDs: []string{userA, userB},
		CreatedAt:      time.Now(),
	}
	f.mu.Lock()
	f.chats[c.ID] = c
	f.mu.Unlock()
	f.addParticipant(c.ID, userA)
	f.addParticipant(c.ID, userB)
	return &c, nil
}

func (f *fakeChatRepo) CreateGroupChat(_ context.Context, eventID string, participantIDs []string) (*models.Chat, error) {
	c := models.Chat{
		ID:             uuid.New().String(),
		Type:           models.ChatTypeGroup,
		EventID:        &eventID,
		ParticipantIDs: participantIDs,
		CreatedAt:      time.Now(),
	}
	f.mu.Lock()
	f.chats[c.ID] = c
	f.mu.Unlock()
	for _, id := range participantIDs {
		f.addParticipant(c.ID, id)
	}
	return &c, nil
}

func (f *fakeChatRepo) Participant(_ context.Context, chatID, userID string) (*models.ChatParticipant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.participants[chatID+"/"+userID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeChatRepo) SetMuted(_ context.Context, chatID, userID string, muted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := chatID + "/" + userID
	p, ok := f.participants[key]
	if !ok {
		return errors.New("not a participant")
	}
	p.IsMuted = muted
	f.participants[key] = p
	return nil
}

func (f *fakeChatRepo) MarkRead(_ context.Context, chatID, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := chatID + "/" + userID
	p, ok := f.participants[key]
	if !ok {
		return errors.New("not a participant")
	}
	if p.LastReadAt == nil || p.LastReadAt.Before(at) {
		p.LastReadAt = &at
		f.participants[key] = p
	}
	return nil
}

// fakeMessageRepo is an in-memory MessageRepository with per-user tombstones
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []models.Message

	sendErr error
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (f *fakeMessageRepo) MessagesForViewer(_ context.Context, chatID, viewerID string, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.messages {
		if m.ChatID == chatID && !m.DeletedFor(viewerID) {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (f *fakeMessageRepo) MessageByID(_ context.Context, messageID string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.ID == messageID {
			return &m, nil
		}
	}
	return nil, nil
}

func (f *fakeMessageRepo) Send(_ context.Context, message models.Message) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, message)
	return &message, nil
}

func (f *fakeMessageRepo) DeleteForUser(_ context.Context, messageID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.messages {
		if m.ID == messageID && !m.DeletedFor(userID) {
			m.DeletedBy = append(append([]string{}, m.DeletedBy...), userID)
			f.messages[i] = m
		}
	}
	return nil
}

// fakeNotificationRepo is an in-memory NotificationRepository with a manual
// live-delivery hook.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []models.Notification
	subscribers   map[int]func(models.Notification)
	nextSub       int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{subscribers: map[int]func(models.Notification){}}
}

func (f *fakeNotificationRepo) ForUser(_ context.Context, userID string, limit int) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotificationRepo) Create(_ context.Context, n models.Notification) (*models.Notification, error) {
	f.mu.Lock()
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now()
	f.notifications = append([]models.Notification{n}, f.notifications...)
	subs := make([]func(models.Notification), 0, len(f.subscribers))
	for _, fn := range f.subscribers {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(n)
	}
	return &n, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notifications {
		if n.ID == notificationID && n.UserID == userID {
			f.notifications[i].IsRead = true
			return nil
		}
	}
	return errors.New("notification not found")
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.notifications {
		if n.UserID == userID {
			f.notifications[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) Subscribe(_ string, fn func(models.Notification)) func() {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subscribers[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, id)
			f.mu.Unlock()
		})
	}
}

func (f *fakeNotificationRepo) subscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers)
}

// fakeReportRepo is an in-memory ReportRepository
type fakeReportRepo struct {
	mu      sync.Mutex
	reports []models.Report
}

func newFakeReportRepo() *fakeReportRepo { return &fakeReportRepo{} }

func (f *fakeReportRepo) Create(_ context.Context, report models.Report) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	report.CreatedAt = time.Now()
	f.reports = append(f.reports, report)
	return &report, nil
}

func (f *fakeReportRepo) ForReporter(_ context.Context, reporterID string) ([]models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Report
	for _, r := range f.reports {
		if r.ReporterID == reporterID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeLookupRepo is an in-memory LookupRepository
type fakeLookupRepo struct {
	interests []models.Interest
}

func (f *fakeLookupRepo) StatusIDByName(_ context.Context, name string) (string, error) {
	return "status-" + name, nil
}

func (f *fakeLookupRepo) StatusNameByID(_ context.Context, id string) (string, error) {
	return "ACTIVE", nil
}

func (f *fakeLookupRepo) ActivityTypeIDByName(_ context.Context, name string) (string, error) {
	return "activity-" + name, nil
}

func (f *fakeLookupRepo) ActivityTypeNameByID(_ context.Context, id string) (string, error) {
	return "WALKING", nil
}

func (f *fakeLookupRepo) Interests(_ context.Context) ([]models.Interest, error) {
	return append([]models.Interest{}, f.interests...), nil
}

// fakeIdentityProvider accepts one known token
type fakeIdentityProvider struct {
	token    string
	identity auth.ProviderIdentity
}

func (f *fakeIdentityProvider) Verify(_ context.Context, providerToken string) (*auth.ProviderIdentity, error) {
	if providerToken != f.token {
		return nil, errors.New("unknown token")
	}
	identity := f.identity
	return &identity, nil
}
