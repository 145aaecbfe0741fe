package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hayeswinckle/appraisals/internal/appraisal"
	apperrors "github.com/hayeswinckle/appraisals/internal/errors"
	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/observability"
	"github.com/hayeswinckle/appraisals/internal/site"
)

const maxFormBytes = 64 << 10

// AppraisalHandler serves the pages, form posts and JSON API.
type AppraisalHandler struct {
	service  *appraisal.Service
	renderer *site.Renderer
}

// NewAppraisalHandler wires the handler.
func NewAppraisalHandler(service *appraisal.Service, renderer *site.Renderer) *AppraisalHandler {
	return &AppraisalHandler{service: service, renderer: renderer}
}

// SubmitResponse is the JSON API success body.
type SubmitResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ReferenceID string `json:"reference_id,omitempty"`
}

// Home renders the landing page.
func (h *AppraisalHandler) Home(w http.ResponseWriter, r *http.Request) {
	var buf strings.Builder
	if err := h.renderer.Home(&buf); err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Unable to render page"))
		return
	}
	writeHTML(w, http.StatusOK, buf.String())
}

// Page renders an empty appraisal form.
func (h *AppraisalHandler) Page(kind lead.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.renderForm(w, r, http.StatusOK, kind, nil, nil, nil)
	}
}

// SubmitForm handles a form-encoded post and re-renders the page.
func (h *AppraisalHandler) SubmitForm(kind lead.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			respondWithError(w, r, apperrors.WrapInvalidInput(r.Context(), err, "Unable to read form submission"))
			return
		}

		sub := lead.SubmissionFromValues(r.PostForm.Get)
		result := h.service.Submit(r.Context(), appraisal.Request{
			Kind:       kind,
			Submission: sub,
			Client:     clientFrom(r, r.PostForm.Get("screen"), r.PostForm.Get("tz")),
		})

		switch result.Status {
		case appraisal.StatusSuccess:
			h.renderForm(w, r, http.StatusOK, kind, nil, nil, h.renderer.SuccessBanner(kind))
		case appraisal.StatusInvalid:
			h.renderForm(w, r, http.StatusUnprocessableEntity, kind, sub.Values(), result.Errors, nil)
		case appraisal.StatusRateLimited:
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retrySeconds(result)))
			h.renderForm(w, r, http.StatusTooManyRequests, kind, sub.Values(), nil, site.RateLimitedBanner())
		default:
			logSubmitError(r, kind, result)
			h.renderForm(w, r, http.StatusBadGateway, kind, sub.Values(), nil, site.ErrorBanner())
		}
	}
}

type apiSubmission struct {
	lead.Submission
	Screen   string `json:"screen"`
	TimeZone string `json:"timeZone"`
}

// SubmitAPI handles POST /api/appraisals/{kind}.
func (h *AppraisalHandler) SubmitAPI(w http.ResponseWriter, r *http.Request) {
	kind, err := lead.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondWithError(w, r, apperrors.NewNotFoundError("Unknown appraisal form"))
		return
	}

	var body apiSubmission
	if env := decodeJSON(w, r, &body); env != nil {
		respondWithError(w, r, env)
		return
	}

	result := h.service.Submit(r.Context(), appraisal.Request{
		Kind:       kind,
		Submission: body.Submission,
		Client:     clientFrom(r, body.Screen, body.TimeZone),
	})

	switch result.Status {
	case appraisal.StatusSuccess:
		writeJSON(w, http.StatusOK, SubmitResponse{
			Status:      string(result.Status),
			Message:     h.renderer.SuccessBanner(kind).Message,
			ReferenceID: result.ReferenceID,
		})
	case appraisal.StatusInvalid:
		respondWithError(w, r, apperrors.NewValidationError("Submission is invalid", result.Errors))
	case appraisal.StatusRateLimited:
		respondWithError(w, r, apperrors.NewRateLimitedError(site.MessageRateLimited, result.RetryAfter))
	default:
		respondWithError(w, r, sendFailure(r.Context(), result.Err))
	}
}

// Validate checks a JSON submission without sending anything.
func (h *AppraisalHandler) Validate(w http.ResponseWriter, r *http.Request) {
	kind, err := lead.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		respondWithError(w, r, apperrors.NewNotFoundError("Unknown appraisal form"))
		return
	}

	var sub lead.Submission
	if env := decodeJSON(w, r, &sub); env != nil {
		respondWithError(w, r, env)
		return
	}

	errs, err := h.service.Validate(kind, sub)
	if err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Unable to validate submission"))
		return
	}
	if len(errs) > 0 {
		respondWithError(w, r, apperrors.NewValidationError("Submission is invalid", errs))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "valid"})
}

// decodeJSON reads exactly one JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) *gferrors.ErrorEnvelope {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err := decoder.Decode(v); err != nil {
		return apperrors.WrapInvalidInput(r.Context(), err, "Request body must be a JSON appraisal submission")
	}
	if decoder.More() {
		return apperrors.NewInvalidInputError("Request body must contain a single JSON object")
	}
	return nil
}

// sendFailure maps a failed dispatch to 504 when the email deadline passed
// and 502 otherwise.
func sendFailure(ctx context.Context, err error) *gferrors.ErrorEnvelope {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.WrapTimeout(ctx, err, site.MessageError)
	}
	return apperrors.WrapExternalService(ctx, err, site.MessageError)
}

func (h *AppraisalHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, kind lead.Kind, values map[string]string, errs lead.FieldErrors, banner *site.Banner) {
	var buf strings.Builder
	if err := h.renderer.Form(&buf, kind, values, errs, banner); err != nil {
		respondWithError(w, r, apperrors.WrapInternal(r.Context(), err, "Unable to render page"))
		return
	}
	writeHTML(w, status, buf.String())
}

// clientFrom identifies the browser. RemoteAddr has been rewritten by chi's
// RealIP middleware.
func clientFrom(r *http.Request, screen, tz string) lead.Client {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return lead.Client{
		UserAgent: r.UserAgent(),
		Screen:    strings.TrimSpace(screen),
		TimeZone:  strings.TrimSpace(tz),
		IP:        ip,
	}
}

func retrySeconds(result appraisal.Result) int {
	seconds := int(result.RetryAfter.Seconds())
	if result.RetryAfter > 0 && float64(seconds) < result.RetryAfter.Seconds() {
		seconds++
	}
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func logSubmitError(r *http.Request, kind lead.Kind, result appraisal.Result) {
	if observability.ServerLogger == nil {
		return
	}
	fields := []zap.Field{
		zap.String("form", string(kind)),
		zap.String("reference_id", result.ReferenceID),
		zap.String("path", r.URL.Path),
	}
	if result.Err != nil {
		fields = append(fields, zap.Error(result.Err))
	}
	observability.ServerLogger.Error("Appraisal submission failed", fields...)
}
