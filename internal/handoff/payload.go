package handoff

import (
	"strings"
	"time"

	"github.com/fixam/fixam-site/internal/forms"
)

// Payload is the chat widget's live-help request. Non-string JSON values are
// treated as absent.
type Payload struct {
	Reason         string
	Message        string
	PageURL        string
	Pathname       string
	ServiceSlug    string
	Name           string
	Email          string
	Phone          string
	ConversationID string
}

func payloadFromMap(raw map[string]any) Payload {
	str := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}
	return Payload{
		Reason:         str("reason"),
		Message:        str("message"),
		PageURL:        str("pageUrl"),
		Pathname:       str("pathname"),
		ServiceSlug:    str("serviceSlug"),
		Name:           str("name"),
		Email:          str("email"),
		Phone:          str("phone"),
		ConversationID: str("conversationId"),
	}
}

// Key identifies a handoff for deduplication.
func Key(p Payload) string {
	conversation := forms.Clean(p.ConversationID)
	if conversation == "" {
		conversation = "no-conversation"
	}
	page := forms.Clean(p.PageURL)
	if page == "" {
		page = "no-page"
	}
	reason := strings.ToLower(forms.Clean(p.Reason))
	if reason == "" {
		reason = "handoff"
	}
	return conversation + "|" + page + "|" + reason
}

// Text renders the notification body. Every value is whitespace-collapsed.
func Text(p Payload, at time.Time) string {
	reason := forms.CollapseSpace(p.Reason)
	if reason == "" {
		reason = "Visitor requested live help"
	}
	page := forms.CollapseSpace(p.PageURL)
	if page == "" {
		page = forms.CollapseSpace(p.Pathname)
	}

	out := []string{
		"Time: " + forms.Timestamp(at),
		"Reason: " + reason,
	}
	optional := []struct{ label, value string }{
		{"Page", page},
		{"Service", forms.CollapseSpace(p.ServiceSlug)},
		{"Name", forms.CollapseSpace(p.Name)},
		{"Email", forms.CollapseSpace(p.Email)},
		{"Phone", forms.CollapseSpace(p.Phone)},
		{"Conversation", forms.CollapseSpace(p.ConversationID)},
	}
	for _, field := range optional {
		if field.value != "" {
			out = append(out, field.label+": "+field.value)
		}
	}
	if msg := forms.CollapseSpace(p.Message); msg != "" {
		out = append(out, "", "Message:", msg)
	}
	return strings.Join(out, "\n")
}
