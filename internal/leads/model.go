package leads

import (
	"net/url"
	"time"

	"github.com/fixam/fixam-site/internal/forms"
)

// Kind distinguishes a general contact request from a service enquiry.
type Kind string

const (
	KindContact Kind = "contact"
	KindInquiry Kind = "inquiry"
)

// Noun is the human label used in notification subjects.
func (k Kind) Noun() string {
	if k == KindInquiry {
		return "enquiry"
	}
	return "contact"
}

// Lead is a validated contact or enquiry submission. It is never mutated
// after validation.
type Lead struct {
	Kind        Kind
	FullName    string
	Email       string
	Phone       string
	Company     string
	ServiceSlug string
	Message     string
	Consent     bool
	Referer     string
	UserAgent   string
	CreatedAt   time.Time
}

// Row renders the lead in spreadsheet column order.
func (l Lead) Row() []string {
	return []string{
		forms.Timestamp(l.CreatedAt),
		string(l.Kind),
		l.ServiceSlug,
		l.FullName,
		l.Email,
		l.Phone,
		l.Company,
		l.Message,
		l.Referer,
		l.UserAgent,
	}
}

// Input holds the cleaned raw fields of a lead form.
type Input struct {
	Kind        string
	FullName    string
	Email       string
	Phone       string
	Company     string
	ServiceSlug string
	Message     string
	Consent     string
	Meta        forms.RequestMeta
}

// InputFromValues cleans the submitted form values.
func InputFromValues(values url.Values, meta forms.RequestMeta) Input {
	return Input{
		Kind:        forms.Clean(values.Get("kind")),
		FullName:    forms.Clean(values.Get("fullName")),
		Email:       forms.Clean(values.Get("email")),
		Phone:       forms.Clean(values.Get("phone")),
		Company:     forms.Clean(values.Get("company")),
		ServiceSlug: forms.Clean(values.Get("serviceSlug")),
		Message:     forms.Clean(values.Get("message")),
		Consent:     forms.Clean(values.Get("consent")),
		Meta:        meta,
	}
}
