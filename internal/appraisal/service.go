// Package appraisal runs appraisal form submissions: validation, rate
// limiting, sanitising and the customer and agent EmailJS sends.
package appraisal

import (
	"context"
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/mailer"
	"github.com/hayeswinckle/appraisals/internal/metrics"
	"github.com/hayeswinckle/appraisals/internal/observability"
	"github.com/hayeswinckle/appraisals/internal/ratelimit"
)

// Status is the outcome of a submission.
type Status string

const (
	StatusSuccess     Status = "success"
	StatusError       Status = "error"
	StatusRateLimited Status = "rate-limited"
	StatusInvalid     Status = "invalid"
)

// Sender delivers one templated email.
type Sender interface {
	Send(ctx context.Context, account mailer.Account, templateID string, params mailer.TemplateParams) (*mailer.Response, error)
}

// RateLimiter decides whether a client may submit.
type RateLimiter interface {
	Check(ctx context.Context, id string) (ratelimit.Decision, error)
}

// Request is one form submission.
type Request struct {
	Kind       lead.Kind
	Submission lead.Submission
	Client     lead.Client
}

// Result describes what happened to a submission.
type Result struct {
	Status      Status
	Errors      lead.FieldErrors
	ReferenceID string
	RetryAfter  time.Duration
	Err         error
}

// Options configures a Service. Catalog, Limiter, Sender and an account per
// form kind are required.
type Options struct {
	Catalog    *lead.Catalog
	Validator  *lead.Validator
	Limiter    RateLimiter
	Sender     Sender
	Accounts   map[lead.Kind]mailer.Account
	Location   *time.Location
	Clock      func() time.Time
	References func() string
	Logger     *logging.Logger
}

// Service processes submissions.
type Service struct {
	catalog    *lead.Catalog
	validator  *lead.Validator
	limiter    RateLimiter
	sender     Sender
	accounts   map[lead.Kind]mailer.Account
	location   *time.Location
	clock      func() time.Time
	references func() string
	logger     *logging.Logger
}

// NewService validates options and applies defaults.
func NewService(opts Options) (*Service, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("form catalog is required")
	}
	if opts.Limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if opts.Sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	for _, kind := range lead.Kinds {
		if _, ok := opts.Accounts[kind]; !ok {
			return nil, fmt.Errorf("no email account configured for %s form", kind)
		}
	}

	validator := opts.Validator
	if validator == nil {
		v, err := lead.NewValidator(opts.Catalog)
		if err != nil {
			return nil, err
		}
		validator = v
	}

	s := &Service{
		catalog:    opts.Catalog,
		validator:  validator,
		limiter:    opts.Limiter,
		sender:     opts.Sender,
		accounts:   opts.Accounts,
		location:   opts.Location,
		clock:      opts.Clock,
		references: opts.References,
		logger:     opts.Logger,
	}
	if s.location == nil {
		s.location = time.Local
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s, nil
}

// Catalog returns the form catalog the service validates against.
func (s *Service) Catalog() *lead.Catalog {
	return s.catalog
}

// Validate checks a submission without charging the limiter or sending email.
func (s *Service) Validate(kind lead.Kind, sub lead.Submission) (lead.FieldErrors, error) {
	return s.validator.Validate(kind, sub)
}

// Submit validates, rate-limits, sanitises and sends the customer then the
// agent email. Invalid submissions do not count against the limiter.
func (s *Service) Submit(ctx context.Context, req Request) Result {
	start := s.clock()
	result := s.submit(ctx, req)
	metrics.RecordSubmission(string(req.Kind), string(result.Status), s.clock().Sub(start))
	return result
}

func (s *Service) submit(ctx context.Context, req Request) Result {
	errs, err := s.validator.Validate(req.Kind, req.Submission)
	if err != nil {
		return Result{Status: StatusError, Err: err}
	}
	if len(errs) > 0 {
		return Result{Status: StatusInvalid, Errors: errs}
	}

	fingerprint := lead.Fingerprint(req.Client)
	decision, err := s.limiter.Check(ctx, lead.LimitKey(req.Client))
	if err != nil {
		s.logWarn("Rate limiter unavailable, allowing submission", zap.Error(err))
		decision.Allowed = true
	}
	if !decision.Allowed {
		metrics.RecordRateLimited(string(req.Kind))
		s.logInfo("Submission rate limited",
			zap.String("form", string(req.Kind)),
			zap.Int("count", decision.Count),
			zap.Duration("retry_after", decision.RetryAfter))
		return Result{Status: StatusRateLimited, RetryAfter: decision.RetryAfter}
	}

	clean := lead.SanitizeSubmission(req.Submission)
	account := s.accounts[req.Kind]
	reference := ""
	if s.references != nil {
		reference = s.references()
	}

	spec := s.catalog.Form(req.Kind)
	customer := CustomerParams(spec, clean, reference)
	if err := s.send(ctx, req.Kind, "customer", account, account.CustomerTemplateID, customer); err != nil {
		return Result{Status: StatusError, ReferenceID: reference, Err: err}
	}

	agent := AgentParams(spec, clean, reference, account.AgentEmail, AgentMeta{
		SubmittedAt: s.clock().In(s.location),
		UserAgent:   req.Client.UserAgent,
		Fingerprint: fingerprint,
	})
	if err := s.send(ctx, req.Kind, "agent", account, account.AgentTemplateID, agent); err != nil {
		return Result{Status: StatusError, ReferenceID: reference, Err: err}
	}

	s.logInfo("Appraisal request dispatched",
		zap.String("form", string(req.Kind)),
		zap.String("reference_id", reference),
		observability.MaskedEmail("customer_email", clean.Email))
	return Result{Status: StatusSuccess, ReferenceID: reference}
}

func (s *Service) send(ctx context.Context, kind lead.Kind, recipient string, account mailer.Account, templateID string, params mailer.TemplateParams) error {
	start := time.Now()
	_, err := s.sender.Send(ctx, account, templateID, params)
	metrics.RecordEmail(string(kind), recipient, err == nil, time.Since(start))
	if err != nil {
		s.logError("Email send failed",
			zap.String("form", string(kind)),
			zap.String("recipient", recipient),
			zap.String("template_id", templateID),
			zap.Error(err))
		return fmt.Errorf("send %s email: %w", recipient, err)
	}
	return nil
}

func (s *Service) log() *logging.Logger {
	if s.logger != nil {
		return s.logger
	}
	return observability.ServerLogger
}

func (s *Service) logInfo(msg string, fields ...zap.Field) {
	if l := s.log(); l != nil {
		l.Info(msg, fields...)
	}
}

func (s *Service) logWarn(msg string, fields ...zap.Field) {
	if l := s.log(); l != nil {
		l.Warn(msg, fields...)
	}
}

func (s *Service) logError(msg string, fields ...zap.Field) {
	if l := s.log(); l != nil {
		l.Error(msg, fields...)
	}
}
