package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.telegram.org"

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a Bot API client. An empty baseURL uses DefaultBaseURL.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Token:   token,
		HTTPClient: &http.Client{
			// Long polls hold the connection open for up to the poll timeout.
			Timeout: 90 * time.Second,
		},
	}
}

func (c *Client) GetMe(ctx context.Context) (User, error) {
	var out User
	err := c.call(ctx, "getMe", struct{}{}, &out)
	return out, err
}

func (c *Client) GetChatAdministrators(ctx context.Context, chatID int64) ([]ChatMember, error) {
	var out []ChatMember
	err := c.call(ctx, "getChatAdministrators", map[string]int64{"chat_id": chatID}, &out)
	return out, err
}

func (c *Client) CreateChatInviteLink(ctx context.Context, p CreateChatInviteLinkParams) (ChatInviteLink, error) {
	var out ChatInviteLink
	err := c.call(ctx, "createChatInviteLink", p, &out)
	return out, err
}

func (c *Client) RevokeChatInviteLink(ctx context.Context, chatID int64, link string) (ChatInviteLink, error) {
	var out ChatInviteLink
	err := c.call(ctx, "revokeChatInviteLink", map[string]any{
		"chat_id":     chatID,
		"invite_link": link,
	}, &out)
	return out, err
}

func (c *Client) SendMessage(ctx context.Context, p SendMessageParams) (Message, error) {
	var out Message
	err := c.call(ctx, "sendMessage", p, &out)
	return out, err
}

func (c *Client) EditMessageText(ctx context.Context, p EditMessageTextParams) error {
	// The result is either the edited Message or true for inline messages.
	return c.call(ctx, "editMessageText", p, nil)
}

func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	return c.call(ctx, "answerCallbackQuery", map[string]string{
		"callback_query_id": callbackQueryID,
		"text":              text,
	}, nil)
}

func (c *Client) GetUpdates(ctx context.Context, p GetUpdatesParams) ([]Update, error) {
	var out []Update
	err := c.call(ctx, "getUpdates", p, &out)
	return out, err
}

// call posts params as JSON to method and decodes the result into target.
// A nil target discards the result.
func (c *Client) call(ctx context.Context, method string, params any, target any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("telegram: failed to encode %s params: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		// The URL embeds the token, keep it out of the error.
		return fmt.Errorf("telegram: %s request failed: %w", method, redact(err, c.Token))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("telegram: failed to read %s response: %w", method, err)
	}

	var envelope response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("telegram: failed to decode %s response (status %d): %w", method, resp.StatusCode, err)
	}

	if !envelope.OK {
		apiErr := &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
		if envelope.Parameters != nil {
			apiErr.RetryAfter = envelope.Parameters.RetryAfter
		}
		return apiErr
	}

	if target == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Result, target); err != nil {
		return fmt.Errorf("telegram: failed to decode %s result: %w", method, err)
	}
	return nil
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), token, "<token>"), err: err}
}
