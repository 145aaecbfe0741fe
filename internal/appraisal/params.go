package appraisal

import (
	"time"

	"github.com/hayeswinckle/appraisals/internal/lead"
	"github.com/hayeswinckle/appraisals/internal/mailer"
)

// SubmissionDateLayout renders dates the way Australian browsers print
// them, e.g. "16/10/2026, 3:04:05 pm".
const SubmissionDateLayout = "02/01/2006, 3:04:05 pm"

// AgentMeta is the extra context included in the agent notification.
type AgentMeta struct {
	SubmittedAt time.Time
	UserAgent   string
	Fingerprint string
}

// CustomerParams builds the auto-response template parameters.
func CustomerParams(spec *lead.FormSpec, sub lead.Submission, reference string) mailer.TemplateParams {
	params := baseParams(spec, sub, reference)
	params["to_email"] = sub.Email
	return params
}

// AgentParams builds the agent notification template parameters.
func AgentParams(spec *lead.FormSpec, sub lead.Submission, reference, agentEmail string, meta AgentMeta) mailer.TemplateParams {
	params := baseParams(spec, sub, reference)
	params["to_email"] = agentEmail
	params["submission_date"] = meta.SubmittedAt.Format(SubmissionDateLayout)
	params["user_agent"] = meta.UserAgent
	params["ip_fingerprint"] = meta.Fingerprint
	return params
}

func baseParams(spec *lead.FormSpec, sub lead.Submission, reference string) mailer.TemplateParams {
	params := mailer.TemplateParams{}
	for field, value := range sub.Values() {
		params[field] = value
	}
	if spec != nil && spec.InquiryType != "" {
		params["inquiry_type"] = spec.InquiryType
	}
	if reference != "" {
		params["reference_id"] = reference
	}
	return params
}
