package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/fixam/fixam-site/internal/feedback"
	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/internal/leads"
)

// Rendered is the channel-neutral content of one notification.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

var leadHTML = template.Must(template.New("lead").Parse(`<div style="font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Helvetica, Arial; line-height: 1.5;">
  <h2 style="margin: 0 0 12px;">New {{.Noun}} request</h2>
  <p style="margin: 0 0 12px; color: #555;">{{.Time}}</p>
  <table style="border-collapse: collapse; width: 100%; max-width: 720px;">
    <tr><td style="padding: 6px 0; color: #555; width: 140px;">Type</td><td style="padding: 6px 0;"><strong>{{.Kind}}</strong></td></tr>
    {{- if .Service}}
    <tr><td style="padding: 6px 0; color: #555;">Service</td><td style="padding: 6px 0;">{{.Service}}</td></tr>
    {{- end}}
    <tr><td style="padding: 6px 0; color: #555;">Name</td><td style="padding: 6px 0;">{{.Name}}</td></tr>
    <tr><td style="padding: 6px 0; color: #555;">Email</td><td style="padding: 6px 0;"><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
    {{- if .Phone}}
    <tr><td style="padding: 6px 0; color: #555;">Phone</td><td style="padding: 6px 0;"><a href="tel:{{.Phone}}">{{.Phone}}</a></td></tr>
    {{- end}}
    {{- if .Company}}
    <tr><td style="padding: 6px 0; color: #555;">Company</td><td style="padding: 6px 0;">{{.Company}}</td></tr>
    {{- end}}
  </table>
  <h3 style="margin: 18px 0 8px;">Message</h3>
  <pre style="white-space: pre-wrap; background: #f6f6f6; padding: 12px; border-radius: 8px;">{{.Message}}</pre>
  {{- if .Page}}
  <p style="margin: 14px 0 0; color: #555;">Page: <a href="{{.Page}}">{{.Page}}</a></p>
  {{- end}}
</div>`))

var preHTML = template.Must(template.New("pre").Parse(
	`<pre style="white-space: pre-wrap; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, monospace;">{{.}}</pre>`))

// lines accumulates a plain text body. Optional fields are skipped when empty.
type lines []string

func (l *lines) add(format string, args ...any) { *l = append(*l, fmt.Sprintf(format, args...)) }

func (l *lines) addIf(value, format string) {
	if value != "" {
		l.add(format, value)
	}
}

func (l *lines) blank() { *l = append(*l, "") }

func (l lines) String() string { return strings.TrimRight(strings.Join(l, "\n"), "\n") }

// RenderLead builds the notification for an accepted lead.
func RenderLead(prefix string, lead leads.Lead) (Rendered, error) {
	ts := forms.Timestamp(lead.CreatedAt)

	var text lines
	text.add("Time: %s", ts)
	text.add("Type: %s", lead.Kind)
	text.addIf(lead.ServiceSlug, "Service: %s")
	text.add("Name: %s", lead.FullName)
	text.add("Email: %s", lead.Email)
	text.addIf(lead.Phone, "Phone: %s")
	text.addIf(lead.Company, "Company: %s")
	text.blank()
	text.add("Message:")
	text.add("%s", lead.Message)
	if lead.Referer != "" {
		text.blank()
		text.add("Page: %s", lead.Referer)
	}

	var html bytes.Buffer
	err := leadHTML.Execute(&html, map[string]string{
		"Noun":    lead.Kind.Noun(),
		"Time":    ts,
		"Kind":    string(lead.Kind),
		"Service": lead.ServiceSlug,
		"Name":    lead.FullName,
		"Email":   lead.Email,
		"Phone":   lead.Phone,
		"Company": lead.Company,
		"Message": lead.Message,
		"Page":    lead.Referer,
	})
	if err != nil {
		return Rendered{}, fmt.Errorf("notify: render lead html: %w", err)
	}

	return Rendered{
		Subject: fmt.Sprintf("%s: New %s request", prefix, lead.Kind.Noun()),
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

// RenderFeedback builds the notification for accepted feedback.
func RenderFeedback(prefix string, fb feedback.Feedback) (Rendered, error) {
	var text lines
	text.add("Time: %s", forms.Timestamp(fb.CreatedAt))
	text.add("Name: %s", fb.FullName)
	text.addIf(fb.Email, "Email: %s")
	text.add("Rating: %d/5", fb.Rating)
	text.addIf(fb.Position, "Role: %s")
	text.addIf(fb.Company, "Company: %s")
	if fb.PublishConsent {
		text.add("Publish consent: Yes")
	} else {
		text.add("Publish consent: No")
	}
	text.blank()
	text.add("Feedback:")
	text.add("%s", fb.Text)
	if fb.Referer != "" {
		text.blank()
		text.add("Page: %s", fb.Referer)
	}

	return RenderText(prefix+": New feedback submitted", text.String())
}

// RenderText wraps free text, escaped, in a preformatted HTML body.
func RenderText(subject, text string) (Rendered, error) {
	var html bytes.Buffer
	if err := preHTML.Execute(&html, text); err != nil {
		return Rendered{}, fmt.Errorf("notify: render text html: %w", err)
	}
	return Rendered{Subject: subject, Text: text, HTML: html.String()}, nil
}
