package appraisal

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/mailer"
	"github.com/hayeswinckle/appraisals/internal/ratelimit"
)

type sentEmail struct {
	account    mailer.Account
	templateID string
	params     mailer.TemplateParams
}

type fakeSender struct {
	mu     sync.Mutex
	sent   []sentEmail
	failOn map[string]error
}

func (f *fakeSender) Send(ctx context.Context, account mailer.Account, templateID string, params mailer.TemplateParams) (*mailer.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEmail{account: account, templateID: templateID, params: params})
	if err, ok := f.failOn[templateID]; ok {
		return nil, err
	}
	return &mailer.Response{StatusCode: 200, Text: "OK"}, nil
}

type errLimiter struct{}

func (errLimiter) Check(ctx context.Context, id string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("store down")
}

var (
	salesAccount = mailer.Account{
		ServiceID:          "service_sales",
		CustomerTemplateID: "sales_customer",
		AgentTemplateID:    "sales_agent",
		PublicKey:          "pk_sales",
		AgentEmail:         "sales@hayeswinckle.example",
	}
	rentalAccount = mailer.Account{
		ServiceID:          "service_rental",
		CustomerTemplateID: "rental_customer",
		AgentTemplateID:    "rental_agent",
		PublicKey:          "pk_rental",
		AgentEmail:         "rentals@hayeswinckle.example",
	}
	fixedNow = time.Date(2026, 3, 5, 4, 7, 9, 0, time.UTC)
)

func newTestService(t *testing.T, sender Sender, limiter RateLimiter) *Service {
	t.Helper()

	catalog, err := lead.LoadCatalog()
	require.NoError(t, err)

	melbourne, err := time.LoadLocation("Australia/Melbourne")
	require.NoError(t, err)

	svc, err := NewService(Options{
		Catalog:    catalog,
		Limiter:    limiter,
		Sender:     sender,
		Accounts:   map[lead.Kind]mailer.Account{lead.KindSales: salesAccount, lead.KindRental: rentalAccount},
		Location:   melbourne,
		Clock:      func() time.Time { return fixedNow },
		References: func() string { return "HW-TEST1" },
	})
	require.NoError(t, err)
	return svc
}

func validRequest(kind lead.Kind) Request {
	sub := lead.Submission{
		FirstName:       "Jane",
		LastName:        "Citizen",
		Email:           "jane@example.com",
		Phone:           "0412345678",
		Address:         "12 Example St, Geelong",
		PropertyType:    "House",
		AppraisalReason: "Selling",
		Message:         "<b>Call</b> after 5pm!",
	}
	if kind == lead.KindRental {
		sub.AppraisalReason = "Just curious"
	}
	return Request{
		Kind:       kind,
		Submission: sub,
		Client:     lead.Client{UserAgent: "Mozilla/5.0", Screen: "1920x1080", TimeZone: "Australia/Melbourne", IP: "10.0.0.1"},
	}
}

func TestSubmitSalesSuccess(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, sender, ratelimit.New(5, 15*time.Minute))

	result := svc.Submit(context.Background(), validRequest(lead.KindSales))
	require.Equal(t, StatusSuccess, result.Status, "err: %v", result.Err)
	assert.Equal(t, "HW-TEST1", result.ReferenceID)

	require.Len(t, sender.sent, 2)

	customer := sender.sent[0]
	assert.Equal(t, "service_sales", customer.account.ServiceID)
	assert.Equal(t, "sales_customer", customer.templateID)
	assert.Equal(t, "jane@example.com", customer.params["to_email"])
	assert.Equal(t, "sales", customer.params["inquiry_type"])
	assert.Equal(t, "Call after 5pm", customer.params["message"])
	assert.Equal(t, "12 Example St Geelong", customer.params["address"])
	assert.Equal(t, "HW-TEST1", customer.params["reference_id"])
	assert.NotContains(t, customer.params, "submission_date")

	agent := sender.sent[1]
	assert.Equal(t, "sales_agent", agent.templateID)
	assert.Equal(t, "sales@hayeswinckle.example", agent.params["to_email"])
	assert.Equal(t, "05/03/2026, 3:07:09 pm", agent.params["submission_date"])
	assert.Equal(t, "Mozilla/5.0", agent.params["user_agent"])
	assert.Equal(t, lead.Fingerprint(validRequest(lead.KindSales).Client), agent.params["ip_fingerprint"])
	assert.Equal(t, "Jane", agent.params["firstName"])
}

func TestSubmitRentalUsesRentalAccount(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, sender, ratelimit.New(5, 15*time.Minute))

	result := svc.Submit(context.Background(), validRequest(lead.KindRental))
	require.Equal(t, StatusSuccess, result.Status)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, "rental_customer", sender.sent[0].templateID)
	assert.Equal(t, "rental_agent", sender.sent[1].templateID)
	assert.Equal(t, "rentals@hayeswinckle.example", sender.sent[1].params["to_email"])
	assert.NotContains(t, sender.sent[0].params, "inquiry_type")
}

func TestSubmitInvalidDoesNotChargeLimiter(t *testing.T) {
	sender := &fakeSender{}
	limiter := ratelimit.New(1, 15*time.Minute)
	svc := newTestService(t, sender, limiter)

	bad := validRequest(lead.KindSales)
	bad.Submission.Phone = "0398765432"

	for i := 0; i < 3; i++ {
		result := svc.Submit(context.Background(), bad)
		require.Equal(t, StatusInvalid, result.Status)
		assert.Equal(t, "Please enter a valid Australian mobile number (starting with 04)", result.Errors[lead.FieldPhone])
	}
	assert.Empty(t, sender.sent)

	result := svc.Submit(context.Background(), validRequest(lead.KindSales))
	assert.Equal(t, StatusSuccess, result.Status)
}

func TestSubmitRateLimited(t *testing.T) {
	sender := &fakeSender{}
	limiter := ratelimit.New(2, 15*time.Minute)
	limiter.Clock = func() time.Time { return fixedNow }
	svc := newTestService(t, sender, limiter)

	for i := 0; i < 2; i++ {
		require.Equal(t, StatusSuccess, svc.Submit(context.Background(), validRequest(lead.KindSales)).Status)
	}

	result := svc.Submit(context.Background(), validRequest(lead.KindSales))
	require.Equal(t, StatusRateLimited, result.Status)
	assert.Equal(t, 15*time.Minute, result.RetryAfter)
	assert.Len(t, sender.sent, 4)

	other := validRequest(lead.KindSales)
	other.Client.Screen = "390x844"
	assert.Equal(t, StatusSuccess, svc.Submit(context.Background(), other).Status)
}

func TestSubmitRateLimitIsPerClientIP(t *testing.T) {
	sender := &fakeSender{}
	limiter := ratelimit.New(5, 15*time.Minute)
	limiter.Clock = func() time.Time { return fixedNow }
	svc := newTestService(t, sender, limiter)

	first := validRequest(lead.KindSales)
	first.Client.IP = "203.0.113.1"
	for i := 0; i < 5; i++ {
		require.Equal(t, StatusSuccess, svc.Submit(context.Background(), first).Status, "submission %d", i+1)
	}
	require.Equal(t, StatusRateLimited, svc.Submit(context.Background(), first).Status)

	// Same browser build, screen and time zone from another address.
	second := validRequest(lead.KindSales)
	second.Client.IP = "198.51.100.77"
	result := svc.Submit(context.Background(), second)
	require.Equal(t, StatusSuccess, result.Status)

	// The agent email keeps the IP-free fingerprint.
	agent := sender.sent[len(sender.sent)-1]
	assert.Equal(t, lead.Fingerprint(second.Client), agent.params["ip_fingerprint"])
}

func TestSubmitCustomerSendFailureSkipsAgent(t *testing.T) {
	sender := &fakeSender{failOn: map[string]error{
		"sales_customer": &mailer.SendError{StatusCode: 400, Message: "bad template", TemplateID: "sales_customer"},
	}}
	svc := newTestService(t, sender, ratelimit.New(5, time.Minute))

	result := svc.Submit(context.Background(), validRequest(lead.KindSales))
	require.Equal(t, StatusError, result.Status)
	require.Error(t, result.Err)

	var sendErr *mailer.SendError
	assert.True(t, errors.As(result.Err, &sendErr))
	assert.Len(t, sender.sent, 1)
}

func TestSubmitAgentSendFailureIsError(t *testing.T) {
	sender := &fakeSender{failOn: map[string]error{
		"sales_agent": errors.New("connection reset"),
	}}
	svc := newTestService(t, sender, ratelimit.New(5, time.Minute))

	result := svc.Submit(context.Background(), validRequest(lead.KindSales))
	require.Equal(t, StatusError, result.Status)
	assert.True(t, strings.Contains(result.Err.Error(), "agent"))
	assert.Len(t, sender.sent, 2)
}

func TestSubmitLimiterErrorFailsOpen(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, sender, errLimiter{})

	result := svc.Submit(context.Background(), validRequest(lead.KindSales))
	assert.Equal(t, StatusSuccess, result.Status)
}

func TestSubmitUnknownKind(t *testing.T) {
	svc := newTestService(t, &fakeSender{}, ratelimit.New(5, time.Minute))

	req := validRequest(lead.KindSales)
	req.Kind = lead.Kind("commercial")
	result := svc.Submit(context.Background(), req)
	assert.Equal(t, StatusError, result.Status)
	assert.Error(t, result.Err)
}

func TestNewServiceRequiresAccounts(t *testing.T) {
	catalog, err := lead.LoadCatalog()
	require.NoError(t, err)

	_, err = NewService(Options{
		Catalog:  catalog,
		Limiter:  ratelimit.New(5, time.Minute),
		Sender:   &fakeSender{},
		Accounts: map[lead.Kind]mailer.Account{lead.KindSales: salesAccount},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rental")
}
