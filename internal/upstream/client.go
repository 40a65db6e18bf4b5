package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/ecclesia-app/admin-gateway/pkg/errors"
)

// Client is the typed HTTP client for the church platform backend. Every
// stateful read and write in the gateway goes through it; it attaches the
// bearer token uniformly and validates response shapes at the boundary so a
// malformed payload fails fast instead of propagating zero values.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	validate *validator.Validate
	logger   *zap.Logger

	// OnRequest, when set, observes every upstream round trip.
	OnRequest func(method string, status int, duration time.Duration)
}

// NewClient builds an upstream client.
func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: timeout},
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
	}
}

// Resource accessors.

func (c *Client) Members() *MembersClient           { return &MembersClient{c} }
func (c *Client) Groups() *GroupsClient             { return &GroupsClient{c} }
func (c *Client) Churches() *ChurchesClient         { return &ChurchesClient{c} }
func (c *Client) Missions() *MissionsClient         { return &MissionsClient{c} }
func (c *Client) Marriages() *MarriagesClient       { return &MarriagesClient{c} }
func (c *Client) Appointments() *AppointmentsClient { return &AppointmentsClient{c} }
func (c *Client) SundayClasses() *SundayClassesClient {
	return &SundayClassesClient{c}
}
func (c *Client) Deaths() *DeathsClient           { return &DeathsClient{c} }
func (c *Client) Mentorships() *MentorshipsClient { return &MentorshipsClient{c} }

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode upstream payload")
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

// submitForm sends a validated draft. Forms carrying a file part go out as
// multipart form data; all others as JSON.
func (c *Client) submitForm(ctx context.Context, method, path string, form *Form, out interface{}) error {
	if form.HasFiles() {
		body, contentType, err := form.EncodeMultipart()
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode multipart form")
		}
		return c.do(ctx, method, path, body, contentType, out)
	}
	body, err := form.EncodeJSON()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode form")
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

func (c *Client) deleteResource(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.Token()
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "upstream token unavailable")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.http.Do(req)
	duration := time.Since(start)
	if err != nil {
		if c.OnRequest != nil {
			c.OnRequest(method, 0, duration)
		}
		appErr := appErrors.Clone(appErrors.ErrUpstream, "upstream unreachable")
		appErr.Err = err
		return appErr
	}
	defer resp.Body.Close() //nolint:errcheck

	if c.OnRequest != nil {
		c.OnRequest(method, resp.StatusCode, duration)
	}
	c.logger.Debug("upstream request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamDecode.Code, appErrors.ErrUpstreamDecode.Status,
			fmt.Sprintf("decode %s %s response", method, path))
	}
	if err := c.checkShape(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstreamDecode.Code, appErrors.ErrUpstreamDecode.Status,
			fmt.Sprintf("%s %s returned a malformed record", method, path))
	}
	return nil
}

func (c *Client) statusError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(raw, &payload)
	message := payload.Message
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, message)
	case http.StatusUnauthorized:
		return appErrors.Clone(appErrors.ErrUnauthorized, message)
	case http.StatusForbidden:
		return appErrors.Clone(appErrors.ErrForbidden, message)
	case http.StatusConflict:
		return appErrors.Clone(appErrors.ErrConflict, message)
	default:
		return appErrors.Clone(appErrors.ErrUpstream,
			fmt.Sprintf("upstream responded %d: %s", resp.StatusCode, message))
	}
}

// checkShape runs struct validation over the decoded value, descending into
// slices so list responses are checked record by record.
func (c *Client) checkShape(out interface{}) error {
	value := reflect.ValueOf(out)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			item := value.Index(i)
			if item.Kind() == reflect.Struct {
				if err := c.validate.Struct(item.Interface()); err != nil {
					return fmt.Errorf("record %d: %w", i, err)
				}
			}
		}
		return nil
	case reflect.Struct:
		return c.validate.Struct(value.Interface())
	default:
		return nil
	}
}
