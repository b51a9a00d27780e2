// Package notification is the client side of the backend's notification and
// group-invitation REST endpoints, plus the boundary that normalizes their
// payloads into domain notifications.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/poopay/poopay-realtime/errors"
	"github.com/poopay/poopay-realtime/logger"
	"github.com/poopay/poopay-realtime/types"
	"go.uber.org/zap"
)

const maxErrorBody = 64 << 10

var (
	errEmptyBody   = errors.New("empty response body")
	errMissingList = errors.New("response has no notifications array")
)

// Client represents a client for the POOPAY notification API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	log        *zap.SugaredLogger
	metrics    *clientMetrics
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new notification API client
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: "poopay-realtime",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log:     logger.GetLogger().Named("notification_client"),
		metrics: newClientMetrics(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListNotifications fetches the current user's notification snapshot.
func (c *Client) ListNotifications(ctx context.Context, token string) (*types.NotificationList, error) {
	var list types.NotificationList
	if err := c.do(ctx, "list", http.MethodGet, "/notifications", token, nil, &list); err != nil {
		return nil, err
	}
	if list.Notifications == nil {
		return nil, apperrors.Decode(errMissingList, "failed to decode list response")
	}
	return &list, nil
}

// UnreadCount asks the server for the number of unread notifications.
func (c *Client) UnreadCount(ctx context.Context, token string) (int, error) {
	var resp types.UnreadCount
	if err := c.do(ctx, "unread_count", http.MethodGet, "/notifications/unread-count", token, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// MarkAsRead persists the read state of a notification.
func (c *Client) MarkAsRead(ctx context.Context, token, notificationID string) error {
	if notificationID == "" {
		return apperrors.ValidationFailed("notification id is required", "")
	}
	path := fmt.Sprintf("/notifications/%s/read", url.PathEscape(notificationID))
	return c.do(ctx, "mark_read", http.MethodPost, path, token, nil, nil)
}

// DeleteNotification deletes a notification on the server.
func (c *Client) DeleteNotification(ctx context.Context, token, notificationID string) error {
	if notificationID == "" {
		return apperrors.ValidationFailed("notification id is required", "")
	}
	path := fmt.Sprintf("/notifications/%s", url.PathEscape(notificationID))
	return c.do(ctx, "delete", http.MethodDelete, path, token, nil, nil)
}

// InviteUser creates a group invitation for userID.
func (c *Client) InviteUser(ctx context.Context, token, groupID, userID string) (*types.Invitation, error) {
	if groupID == "" || userID == "" {
		return nil, apperrors.ValidationFailed("group id and user id are required", "")
	}
	path := fmt.Sprintf("/groups/%s/invite", url.PathEscape(groupID))

	var resp types.InviteResponse
	if err := c.do(ctx, "invite", http.MethodPost, path, token, types.InviteRequest{UserID: userID}, &resp); err != nil {
		return nil, err
	}
	return &resp.Invitation, nil
}

// AcceptInvitation accepts the invitation identified by invitationID.
func (c *Client) AcceptInvitation(ctx context.Context, token, invitationID string) (*types.InvitationResult, error) {
	if invitationID == "" {
		return nil, apperrors.ValidationFailed("invitation id is required", "")
	}
	path := fmt.Sprintf("/group-invitations/%s/accept", url.PathEscape(invitationID))

	var result types.InvitationResult
	if err := c.do(ctx, "accept_invitation", http.MethodPost, path, token, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectInvitation rejects the invitation identified by invitationID.
func (c *Client) RejectInvitation(ctx context.Context, token, invitationID string) error {
	if invitationID == "" {
		return apperrors.ValidationFailed("invitation id is required", "")
	}
	path := fmt.Sprintf("/group-invitations/%s/reject", url.PathEscape(invitationID))
	return c.do(ctx, "reject_invitation", http.MethodPost, path, token, nil, nil)
}

// do performs one authenticated JSON round trip. out may be nil when the
// response body is not needed.
func (c *Client) do(ctx context.Context, op, method, path, token string, body, out interface{}) (err error) {
	if token == "" {
		return apperrors.AuthenticationFailed("auth token is required")
	}

	start := time.Now()
	defer func() {
		c.metrics.observe(op, err, time.Since(start))
	}()

	var reqBody io.Reader
	if body != nil {
		jsonData, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return fmt.Errorf("failed to marshal request: %w", marshalErr)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	requestID := uuid.New().String()
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	c.log.Debugw("API request", "op", op, "method", method, "path", path, "requestID", requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.Transport(err, fmt.Sprintf("failed to send %s request", op))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := apperrors.APIFailure(resp.StatusCode, errorMessage(resp.Body))
		c.log.Warnw("API request failed",
			"op", op,
			"path", path,
			"status", resp.StatusCode,
			"requestID", requestID,
			"error", apiErr.Message)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Transport(err, fmt.Sprintf("failed to read %s response", op))
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return apperrors.Decode(errEmptyBody, fmt.Sprintf("failed to decode %s response", op))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Decode(err, fmt.Sprintf("failed to decode %s response", op))
	}
	return nil
}

// errorMessage extracts the backend's {"message": ...} or {"error": ...}
// field from an error body, if any.
func errorMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &errResp); err != nil {
		return ""
	}
	if errResp.Message != "" {
		return errResp.Message
	}
	return errResp.Error
}
