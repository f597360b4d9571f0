package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Banyel3/iayos-sub011/config"
	"github.com/Banyel3/iayos-sub011/model"
	"github.com/Banyel3/iayos-sub011/pkg/apperr"
)

// Backend is the client for the iAyos core API. It owns no domain logic:
// it shapes requests, checks responses, and normalizes failures. Endpoint
// paths must match the core API bit-for-bit.
type Backend struct {
	baseURL    string
	httpClient *http.Client
}

func NewBackend(cfg *config.BackendConfig) *Backend {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Backend{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// doJSON issues one request and decodes a JSON response into out. The
// content type is checked before any decode attempt: proxy error pages and
// other non-JSON bodies never surface as parse exceptions, and their text
// never leaks past this function.
func (b *Backend) doJSON(ctx context.Context, method, path, accountID string, body any, out any) error {
	if b.baseURL == "" {
		return apperr.ErrServiceUnavailable
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accountID != "" {
		req.Header.Set("X-Account-ID", accountID)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &apperr.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperr.NetworkError{Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	isJSON := strings.Contains(contentType, "application/json")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if !isJSON {
			// Gateway/proxy error page. Drop the body.
			return &apperr.HTTPError{Status: resp.StatusCode}
		}
		return &apperr.HTTPError{Status: resp.StatusCode, Body: respBody}
	}

	// A call that expects no body accepts 204s and empty responses
	// regardless of content type.
	if out == nil {
		return nil
	}
	if !isJSON {
		return fmt.Errorf("unexpected content type %q: %w", contentType, apperr.ErrServiceUnavailable)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", apperr.ErrServiceUnavailable)
	}
	return nil
}

// LoginResult is the backend response for a credential check.
type LoginResult struct {
	Account model.Account `json:"account"`
	Error   string        `json:"error,omitempty"`
}

func (b *Backend) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := b.doJSON(ctx, "POST", "/api/accounts/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// OTPVerifyResult is the backend response for an OTP check.
type OTPVerifyResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func (b *Backend) VerifyOTP(ctx context.Context, email, otp string) (*OTPVerifyResult, error) {
	var result OTPVerifyResult
	err := b.doJSON(ctx, "POST", "/api/accounts/verify-otp", "", map[string]string{
		"email": email,
		"otp":   otp,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// OTPResendResult carries the new code's lifetime and an optional cooldown
// the client must wait out before the next resend.
type OTPResendResult struct {
	OTPCode          string `json:"otp_code"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
	WaitSeconds      int    `json:"wait_seconds,omitempty"`
}

func (b *Backend) ResendOTP(ctx context.Context, email string) (*OTPResendResult, error) {
	var result OTPResendResult
	err := b.doJSON(ctx, "POST", "/api/accounts/resend-otp", "", map[string]string{
		"email": email,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *Backend) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	return b.doJSON(ctx, "POST", "/api/accounts/change-password", accountID, map[string]string{
		"current_password": currentPassword,
		"new_password":     newPassword,
	}, nil)
}

func (b *Backend) Categories(ctx context.Context) (*model.CategoryList, error) {
	var result model.CategoryList
	if err := b.doJSON(ctx, "GET", "/api/jobs/categories", "", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// JobList is the backend response for a filtered job listing.
type JobList struct {
	Jobs       []model.Job `json:"jobs"`
	TotalCount int         `json:"total_count"`
}

func (b *Backend) Jobs(ctx context.Context, accountID, status string) (*JobList, error) {
	path := "/api/jobs"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var result JobList
	if err := b.doJSON(ctx, "GET", path, accountID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *Backend) Job(ctx context.Context, accountID, jobID string) (*model.Job, error) {
	var result model.Job
	if err := b.doJSON(ctx, "GET", "/api/jobs/"+url.PathEscape(jobID), accountID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *Backend) ConfirmWorkStarted(ctx context.Context, accountID, jobID string) error {
	return b.doJSON(ctx, "POST", "/api/jobs/"+url.PathEscape(jobID)+"/confirm-start", accountID, nil, nil)
}

func (b *Backend) MarkJobComplete(ctx context.Context, accountID, jobID string, photos []string, notes string) error {
	return b.doJSON(ctx, "POST", "/api/jobs/"+url.PathEscape(jobID)+"/mark-complete", accountID, map[string]any{
		"completion_photos": photos,
		"completion_notes":  notes,
	}, nil)
}

func (b *Backend) ApproveCompletion(ctx context.Context, accountID, jobID string) error {
	return b.doJSON(ctx, "POST", "/api/jobs/"+url.PathEscape(jobID)+"/approve-completion", accountID, nil, nil)
}

func (b *Backend) JobApplications(ctx context.Context, accountID, jobID string) (*model.JobApplications, error) {
	var result model.JobApplications
	if err := b.doJSON(ctx, "GET", "/api/jobs/job-applications/"+url.PathEscape(jobID), accountID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *Backend) ManageApplication(ctx context.Context, accountID, applicationID, action string) error {
	return b.doJSON(ctx, "POST", "/api/jobs/applications/"+url.PathEscape(applicationID)+"/manage", accountID, map[string]string{
		"action": action,
	}, nil)
}

func (b *Backend) Notifications(ctx context.Context, accountID string) (*model.NotificationList, error) {
	var result model.NotificationList
	if err := b.doJSON(ctx, "GET", "/api/notifications", accountID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *Backend) MarkNotificationRead(ctx context.Context, accountID, notificationID string) error {
	return b.doJSON(ctx, "POST", "/api/notifications/"+url.PathEscape(notificationID)+"/read", accountID, nil, nil)
}

func (b *Backend) DeleteNotification(ctx context.Context, accountID, notificationID string) error {
	return b.doJSON(ctx, "DELETE", "/api/notifications/"+url.PathEscape(notificationID), accountID, nil, nil)
}

func (b *Backend) PendingEarnings(ctx context.Context, accountID string) (*model.PendingEarnings, error) {
	var result model.PendingEarnings
	if err := b.doJSON(ctx, "GET", "/api/wallet/pending-earnings", accountID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *Backend) KYCStatus(ctx context.Context, accountID string) (*model.KYCRecord, error) {
	var result model.KYCRecord
	if err := b.doJSON(ctx, "GET", "/api/kyc/status", accountID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *Backend) SubmitKYC(ctx context.Context, accountID string, documents []model.KYCDocument) error {
	return b.doJSON(ctx, "POST", "/api/kyc/submit", accountID, map[string]any{
		"documents": documents,
	}, nil)
}

// ConversationList is the backend response for the conversations screen.
type ConversationList struct {
	Conversations []model.Conversation `json:"conversations"`
}

func (b *Backend) Conversations(ctx context.Context, accountID string) (*ConversationList, error) {
	var result ConversationList
	if err := b.doJSON(ctx, "GET", "/api/conversations", accountID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *Backend) Messages(ctx context.Context, accountID, conversationID string) (*model.MessagePage, error) {
	var result model.MessagePage
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := b.doJSON(ctx, "GET", path, accountID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (b *Backend) SendMessage(ctx context.Context, accountID, conversationID, body string) (*model.Message, error) {
	var result model.Message
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := b.doJSON(ctx, "POST", path, accountID, map[string]string{"body": body}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
