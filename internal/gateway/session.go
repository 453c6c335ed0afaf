// Package gateway hosts the per-client screen sessions. A session owns one
// set of screen view-models for an authenticated user; state snapshots and
// side effects stream out over the WebSocket, intents come back in.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/walkandtalk/walktalk/internal/app/models"
	"github.com/walkandtalk/walktalk/internal/app/models/dto"
	"github.com/walkandtalk/walktalk/internal/app/repositories"
	"github.com/walkandtalk/walktalk/internal/app/viewmodels"
	"github.com/walkandtalk/walktalk/internal/pkg/filestorage"
	"github.com/walkandtalk/walktalk/internal/realtime"
)

// Screen names used in frames
const (
	ScreenFeed          = "feed"
	ScreenChatList      = "chatList"
	ScreenChat          = "chat"
	ScreenSearch        = "search"
	ScreenProfile       = "profile"
	ScreenNotifications = "notifications"
)

// Session is the server half of one connected client. All view-models it
// creates are closed when the session ends.
type Session struct {
	userID  string
	repos   *repositories.Repositories
	hub     *realtime.Hub
	storage filestorage.FileStorage
	logger  zerolog.Logger

	// frames to be written to the socket
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	feed          *viewmodels.FeedViewModel
	chatList      *viewmodels.ChatListViewModel
	search        *viewmodels.SearchViewModel
	profile       *viewmodels.ProfileViewModel
	notifications *viewmodels.NotificationsViewModel

	mu   sync.Mutex
	chat *viewmodels.ChatViewModel // the currently open conversation, if any
}

// NewSession builds the screen set for one user and starts streaming
func NewSession(
	repos *repositories.Repositories,
	hub *realtime.Hub,
	storage filestorage.FileStorage,
	userID string,
	logger zerolog.Logger,
) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		userID:  userID,
		repos:   repos,
		hub:     hub,
		storage: storage,
		logger:  logger.With().Str("userID", userID).Logger(),
		send:    make(chan []byte, 64),
		ctx:     ctx,
		cancel:  cancel,
	}

	log := s.logger
	s.feed = viewmodels.NewFeedViewModel(repos.Feed, repos.Reports, userID, log)
	s.chatList = viewmodels.NewChatListViewModel(repos.Chats, userID, log)
	s.search = viewmodels.NewSearchViewModel(repos.Feed, repos.Users, log)
	s.profile = viewmodels.NewProfileViewModel(repos.Users, repos.Lookups, storage, userID, log)
	s.notifications = viewmodels.NewNotificationsViewModel(repos.Notifications, userID, log)

	stream(s, ScreenFeed, s.feed.Observe(ctx), s.feed.SideEffects(ctx))
	stream(s, ScreenChatList, s.chatList.Observe(ctx), s.chatList.SideEffects(ctx))
	stream(s, ScreenSearch, s.search.Observe(ctx), s.search.SideEffects(ctx))
	stream(s, ScreenProfile, s.profile.Observe(ctx), s.profile.SideEffects(ctx))
	stream(s, ScreenNotifications, s.notifications.Observe(ctx), s.notifications.SideEffects(ctx))

	return s
}

// Frames returns the outbound frame channel consumed by the write pump
func (s *Session) Frames() <-chan []byte {
	return s.send
}

// Close tears the session down: every container is closed, pending intents
// are abandoned cooperatively.
func (s *Session) Close() {
	s.cancel()

	s.mu.Lock()
	chat := s.chat
	s.chat = nil
	s.mu.Unlock()
	if chat != nil {
		chat.Close()
	}

	s.feed.Close()
	s.chatList.Close()
	s.search.Close()
	s.profile.Close()
	s.notifications.Close()
	s.wg.Wait()
}

// stream forwards one screen's state and effect channels into the session's
// outbound frame channel.
func stream[S, E any](s *Session, screen string, states <-chan S, effects <-chan E) {
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		for state := range states {
			s.push(dto.StateFrame{Kind: "state", Screen: screen, State: state})
		}
	}()
	go func() {
		defer s.wg.Done()
		for effect := range effects {
			s.push(dto.EffectFrame{Kind: "effect", Screen: screen, Effect: envelope(effect)})
		}
	}()
}

// envelope names an effect variant for the wire
func envelope(effect interface{}) interface{} {
	return struct {
		Type string      `json:"type"`
		Data interface{} `json:"data"`
	}{
		Type: reflect.TypeOf(effect).Name(),
		Data: effect,
	}
}

func (s *Session) push(frame interface{}) {
	data, err := json.Marshal(frame)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode outbound frame")
		return
	}
	select {
	case s.send <- data:
	case <-s.ctx.Done():
	}
}

// Intent payloads

type eventPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Date        string `json:"date"` // RFC 3339
	ImageURL    string `json:"imageUrl"`
}

type announcementPayload struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	Location     string `json:"location"`
	ActivityType string `json:"activityType"`
}

type idPayload struct {
	ID string `json:"id"`
}

type reportPayload struct {
	ContentType string `json:"contentType"`
	ContentID   string `json:"contentId"`
	Reason      string `json:"reason"`
}

type sendMessagePayload struct {
	Content string `json:"content"`
	TempID  string `json:"tempId"`
}

type textPayload struct {
	Value string `json:"value"`
}

type boolPayload struct {
	Value bool `json:"value"`
}

type avatarPayload struct {
	Filename string `json:"filename"`
	Data     []byte `json:"data"` // base64 on the wire
}

// Dispatch routes one inbound intent frame to its screen's view-model.
// Unknown screens or intents are an error back to the caller, not a crash.
func (s *Session) Dispatch(frame dto.IntentFrame) error {
	switch frame.Screen {
	case ScreenFeed:
		return s.dispatchFeed(frame)
	case ScreenChatList:
		return s.dispatchChatList(frame)
	case ScreenChat:
		return s.dispatchChat(frame)
	case ScreenSearch:
		return s.dispatchSearch(frame)
	case ScreenProfile:
		return s.dispatchProfile(frame)
	case ScreenNotifications:
		return s.dispatchNotifications(frame)
	default:
		return fmt.Errorf("unknown screen %q", frame.Screen)
	}
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return date, nil
}

func decode[P any](frame dto.IntentFrame) (P, error) {
	var p P
	if len(frame.Payload) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(frame.Payload, &p); err != nil {
		return p, fmt.Errorf("invalid payload for %s/%s: %w", frame.Screen, frame.Intent, err)
	}
	return p, nil
}

func (s *Session) dispatchFeed(frame dto.IntentFrame) error {
	switch frame.Intent {
	case "refresh":
		s.feed.Refresh()
	case "createEvent":
		p, err := decode[eventPayload](frame)
		if err != nil {
			return err
		}
		event := models.Event{
			Title:       p.Title,
			Description: p.Description,
			Status:      p.Status,
			Location:    p.Location,
		}
		if p.Date != "" {
			date, err := parseDate(p.Date)
			if err != nil {
				return err
			}
			event.Date = date
		}
		if p.ImageURL != "" {
			event.ImageURL = &p.ImageURL
		}
		s.feed.CreateEvent(event)
	case "createAnnouncement":
		p, err := decode[announcementPayload](frame)
		if err != nil {
			return err
		}
		s.feed.CreateAnnouncement(models.Announcement{
			Title:        p.Title,
			Description:  p.Description,
			Status:       p.Status,
			Location:     p.Location,
			ActivityType: p.ActivityType,
		})
	case "joinEvent":
		p, err := decode[idPayload](frame)
		if err != nil {
			return err
		}
		s.feed.JoinEvent(p.ID)
	case "leaveEvent":
		p, err := decode[idPayload](frame)
		if err != nil {
			return err
		}
		s.feed.LeaveEvent(p.ID)
	case "report":
		p, err := decode[reportPayload](frame)
		if err != nil {
			return err
		}
		s.feed.Report(models.ReportedContentType(p.ContentType), p.ContentID, p.Reason)
	default:
		return fmt.Errorf("unknown intent %q for screen %q", frame.Intent, frame.Screen)
	}
	return nil
}

func (s *Session) dispatchChatList(frame dto.IntentFrame) error {
	switch frame.Intent {
	case "refresh":
		s.chatList.Refresh()
	case "select":
		p, err := decode[idPayload](frame)
		if err != nil {
			return err
		}
		s.chatList.SelectChat(p.ID)
	default:
		return fmt.Errorf("unknown intent %q for screen %q", frame.Intent, frame.Screen)
	}
	return nil
}

func (s *Session) dispatchChat(frame dto.IntentFrame) error {
	if frame.Intent == "open" {
		p, err := decode[idPayload](frame)
		if err != nil {
			return err
		}
		s.openChat(p.ID)
		return nil
	}

	s.mu.Lock()
	chat := s.chat
	s.mu.Unlock()
	if chat == nil {
		return fmt.Errorf("no open chat for intent %q", frame.Intent)
	}

	switch frame.Intent {
	case "send":
		p, err := decode[sendMessagePayload](frame)
		if err != nil {
			return err
		}
		chat.Send(p.Content, p.TempID)
	case "deleteForMe":
		p, err := decode[idPayload](frame)
		if err != nil {
			return err
		}
		chat.DeleteForMe(p.ID)
	case "setMuted":
		p, err := decode[boolPayload](frame)
		if err != nil {
			return err
		}
		chat.SetMuted(p.Value)
	case "markRead":
		chat.MarkRead()
	case "close":
		s.closeChat()
	default:
		return fmt.Errorf("unknown intent %q for screen %q", frame.Intent, frame.Screen)
	}
	return nil
}

// openChat swaps the active conversation, closing the previous one first so
// its realtime subscription detaches.
func (s *Session) openChat(chatID string) {
	chat := viewmodels.NewChatViewModel(s.repos.Chats, s.repos.Messages, s.hub, chatID, s.userID, s.logger)

	s.mu.Lock()
	previous := s.chat
	s.chat = chat
	s.mu.Unlock()
	if previous != nil {
		previous.Close()
	}

	stream(s, ScreenChat, chat.Observe(s.ctx), chat.SideEffects(s.ctx))
}

func (s *Session) closeChat() {
	s.mu.Lock()
	chat := s.chat
	s.chat = nil
	s.mu.Unlock()
	if chat != nil {
		chat.Close()
	}
}

func (s *Session) dispatchSearch(frame dto.IntentFrame) error {
	switch frame.Intent {
	case "setQuery":
		p, err := decode[textPayload](frame)
		if err != nil {
			return err
		}
		s.search.SetQuery(p.Value)
	case "searchNow":
		s.search.SearchNow()
	case "selectEvent":
		p, err := decode[idPayload](frame)
		if err != nil {
			return err
		}
		s.search.SelectEvent(p.ID)
	default:
		return fmt.Errorf("unknown intent %q for screen %q", frame.Intent, frame.Screen)
	}
	return nil
}

func (s *Session) dispatchProfile(frame dto.IntentFrame) error {
	switch frame.Intent {
	case "setName":
		p, err := decode[textPayload](frame)
		if err != nil {
			return err
		}
		s.profile.SetName(p.Value)
	case "setBio":
		p, err := decode[textPayload](frame)
		if err != nil {
			return err
		}
		s.profile.SetBio(p.Value)
	case "toggleInterest":
		p, err := decode[idPayload](frame)
		if err != nil {
			return err
		}
		s.profile.ToggleInterest(p.ID)
	case "save":
		s.profile.Save()
	case "uploadAvatar":
		p, err := decode[avatarPayload](frame)
		if err != nil {
			return err
		}
		s.profile.UploadAvatar(p.Data, p.Filename)
	default:
		return fmt.Errorf("unknown intent %q for screen %q", frame.Intent, frame.Screen)
	}
	return nil
}

func (s *Session) dispatchNotifications(frame dto.IntentFrame) error {
	switch frame.Intent {
	case "refresh":
		s.notifications.Refresh()
	case "markRead":
		p, err := decode[idPayload](frame)
		if err != nil {
			return err
		}
		s.notifications.MarkRead(p.ID)
	case "markAllRead":
		s.notifications.MarkAllRead()
	default:
		return fmt.Errorf("unknown intent %q for screen %q", frame.Intent, frame.Screen)
	}
	return nil
}
