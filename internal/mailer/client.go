package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.emailjs.com"
	DefaultTimeout = 15 * time.Second

	// EmailJS accepts about one request per second per account.
	DefaultRatePerSecond = 1.0
	DefaultBurst         = 2

	sendPath = "/api/v1.0/email/send"
)

// TemplateParams are the variables substituted into an EmailJS template.
type TemplateParams map[string]string

// Account identifies one EmailJS service and its two templates.
type Account struct {
	ServiceID          string `mapstructure:"service_id" json:"service_id"`
	CustomerTemplateID string `mapstructure:"customer_template_id" json:"customer_template_id"`
	AgentTemplateID    string `mapstructure:"agent_template_id" json:"agent_template_id"`
	PublicKey          string `mapstructure:"public_key" json:"public_key"`
	PrivateKey         string `mapstructure:"private_key" json:"-"`
	AgentEmail         string `mapstructure:"agent_email" json:"agent_email"`
}

// Validate reports missing identifiers.
func (a Account) Validate() error {
	var missing []string
	if strings.TrimSpace(a.ServiceID) == "" {
		missing = append(missing, "service_id")
	}
	if strings.TrimSpace(a.CustomerTemplateID) == "" {
		missing = append(missing, "customer_template_id")
	}
	if strings.TrimSpace(a.AgentTemplateID) == "" {
		missing = append(missing, "agent_template_id")
	}
	if strings.TrimSpace(a.PublicKey) == "" {
		missing = append(missing, "public_key")
	}
	if strings.TrimSpace(a.AgentEmail) == "" {
		missing = append(missing, "agent_email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("emailjs account missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Response is a successful send.
type Response struct {
	StatusCode int
	Text       string
	Duration   time.Duration
}

// Client sends templated email through the EmailJS REST API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Limiter    *rate.Limiter
}

// NewClient returns a client with defaults applied and an outbound throttle
// of ratePerSecond requests with the given burst.
func NewClient(baseURL string, ratePerSecond float64, burst int) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = DefaultBaseURL
	}
	if ratePerSecond <= 0 {
		ratePerSecond = DefaultRatePerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}

	return &Client{
		BaseURL: url,
		Timeout: DefaultTimeout,
		Limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams TemplateParams `json:"template_params"`
}

// Send renders templateID of the account with params. Only HTTP 200 counts
// as delivered; anything else is returned as a *SendError.
func (c *Client) Send(ctx context.Context, account Account, templateID string, params TemplateParams) (*Response, error) {
	if c == nil {
		return nil, fmt.Errorf("emailjs client not configured")
	}
	if strings.TrimSpace(account.ServiceID) == "" || strings.TrimSpace(account.PublicKey) == "" {
		return nil, fmt.Errorf("emailjs service id and public key are required")
	}
	if strings.TrimSpace(templateID) == "" {
		return nil, fmt.Errorf("emailjs template id is required")
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for send slot: %w", err)
		}
	}

	if params == nil {
		params = TemplateParams{}
	}
	body, err := json.Marshal(sendRequest{
		ServiceID:      account.ServiceID,
		TemplateID:     templateID,
		UserID:         account.PublicKey,
		AccessToken:    account.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(c.BaseURL, "/") + sendPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	text := strings.TrimSpace(string(respBody))
	if resp.StatusCode != http.StatusOK {
		return nil, &SendError{StatusCode: resp.StatusCode, Message: text, TemplateID: templateID}
	}

	return &Response{StatusCode: resp.StatusCode, Text: text, Duration: time.Since(start)}, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
