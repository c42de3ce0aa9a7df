package feedback

import (
	"net/url"
	"strconv"
	"time"

	"github.com/fixam/fixam-site/internal/forms"
)

// Feedback is a validated customer feedback submission.
type Feedback struct {
	FullName       string
	Email          string
	Rating         int
	Position       string
	Company        string
	Text           string
	PublishConsent bool
	// Approved marks the record as eligible for the public testimonials list.
	Approved  bool
	Referer   string
	UserAgent string
	CreatedAt time.Time
}

// Row renders the feedback in spreadsheet column order.
func (f Feedback) Row() []string {
	return []string{
		forms.Timestamp(f.CreatedAt),
		f.FullName,
		f.Email,
		strconv.Itoa(f.Rating),
		f.Position,
		f.Company,
		f.Text,
		forms.BoolCell(f.PublishConsent),
		forms.BoolCell(f.Approved),
		f.Referer,
		f.UserAgent,
	}
}

// Input holds the cleaned raw fields of a feedback form.
type Input struct {
	FullName       string
	Email          string
	Rating         string
	Position       string
	Company        string
	Text           string
	PublishConsent string
	Meta           forms.RequestMeta
}

func InputFromValues(values url.Values, meta forms.RequestMeta) Input {
	return Input{
		FullName:       forms.Clean(values.Get("fullName")),
		Email:          forms.Clean(values.Get("email")),
		Rating:         forms.Clean(values.Get("rating")),
		Position:       forms.Clean(values.Get("position")),
		Company:        forms.Clean(values.Get("company")),
		Text:           forms.Clean(values.Get("feedback")),
		PublishConsent: forms.Clean(values.Get("publishConsent")),
		Meta:           meta,
	}
}
