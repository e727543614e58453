package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
)

const streamKeepAlive = 30 * time.Second

// NotificationHandler serves the in-app inbox that late arrivals and salary
// payouts are delivered to, plus its event stream.
type NotificationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
	jwtService   jwt.Service
}

func NewNotificationHandler(notifService notification.Service, jwtService jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{
		notifService: notifService,
		jwtService:   jwtService,
	}
}

// inboxOwner returns the user id whose inbox the request addresses.
func inboxOwner(r *http.Request) (string, error) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok || principal.UserID == "" {
		return "", user.ErrInvalidToken
	}
	return principal.UserID, nil
}

type inboxQuery struct {
	page       int
	pageSize   int
	unreadOnly bool
}

// parseInboxQuery reads page, page_size and unread_only. Malformed or
// non-positive numbers keep their defaults.
func parseInboxQuery(values url.Values) inboxQuery {
	q := inboxQuery{page: 1, pageSize: 20}
	if n, err := strconv.Atoi(values.Get("page")); err == nil && n > 0 {
		q.page = n
	}
	if n, err := strconv.Atoi(values.Get("page_size")); err == nil && n > 0 {
		q.pageSize = n
	}
	if b, err := strconv.ParseBool(values.Get("unread_only")); err == nil {
		q.unreadOnly = b
	}
	return q
}

func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	userID, err := inboxOwner(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	q := parseInboxQuery(r.URL.Query())
	result, err := h.notifService.GetNotifications(r.Context(), userID, q.page, q.pageSize, q.unreadOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *notificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, err := inboxOwner(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	count, err := h.notifService.GetUnreadCount(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, notification.UnreadCountResponse{UnreadCount: count})
}

func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := inboxOwner(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var req notification.MarkAsReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := h.notifService.MarkAsRead(r.Context(), userID, req); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Notifications marked as read", nil)
}

func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, err := inboxOwner(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.notifService.MarkAllAsRead(r.Context(), userID); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

// GetSSEToken issues the short-lived token the event stream is opened with.
// Browsers cannot attach an Authorization header to an EventSource.
func (h *notificationHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	userID, err := inboxOwner(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(userID)
	if err != nil {
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}
	response.Success(w, notification.SSETokenResponse{Token: token, ExpiresIn: expiresIn})
}

// eventWriter frames server-sent events and flushes each one.
type eventWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func (e eventWriter) send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	e.flusher.Flush()
	return nil
}

// Stream pushes new inbox entries to the caller until the client disconnects.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	userID, err := h.jwtService.ValidateSSEToken(r.URL.Query().Get("token"))
	if err != nil {
		response.HandleError(w, user.ErrInvalidToken)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	events, unsubscribe := h.notifService.Subscribe(r.Context(), userID)
	defer unsubscribe()

	out := eventWriter{w: w, flusher: flusher}
	if err := out.send("connected", map[string]string{"user_id": userID}); err != nil {
		return
	}

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		var err error
		select {
		case <-r.Context().Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			err = out.send(event.Event, event.Data)
		case now := <-keepAlive.C:
			err = out.send("ping", map[string]int64{"timestamp": now.Unix()})
		}
		if err != nil {
			return
		}
	}
}
