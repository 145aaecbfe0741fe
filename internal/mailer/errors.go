package mailer

import "fmt"

// SendError is returned when EmailJS answers with anything but 200.
type SendError struct {
	StatusCode int
	Message    string
	TemplateID string
}

func (e *SendError) Error() string {
	if e == nil {
		return "emailjs send failed"
	}
	if e.Message == "" {
		return fmt.Sprintf("emailjs send %s failed: status %d", e.TemplateID, e.StatusCode)
	}
	return fmt.Sprintf("emailjs send %s failed: status %d: %s", e.TemplateID, e.StatusCode, e.Message)
}
