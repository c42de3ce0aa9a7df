package leads

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/pkg/logging"
)

type recordingStore struct {
	rows [][]string
	err  error
}

func (s *recordingStore) Append(_ context.Context, row []string) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, row)
	return nil
}

type recordingNotifier struct {
	leads []Lead
}

func (n *recordingNotifier) NotifyLead(_ context.Context, lead Lead) {
	n.leads = append(n.leads, lead)
}

type panickingStore struct{}

func (panickingStore) Append(context.Context, []string) error { panic("nil map write") }

var support = forms.Support{Email: "info@fixam.co.uk", Phone: "+44 7733 738545"}

func newTestService(store Store, notifier Notifier, buf *bytes.Buffer) *Service {
	svc := NewService(store, notifier, support, logging.NewWithWriter(buf, "debug"), nil)
	svc.now = func() time.Time { return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC) }
	return svc
}

func validValues() url.Values {
	return url.Values{
		"kind":        {"inquiry"},
		"fullName":    {"  Jane Forbes "},
		"email":       {"jane@example.com"},
		"phone":       {"+44 7700 900123"},
		"company":     {"Forbes Ltd"},
		"serviceSlug": {"cyber-security"},
		"message":     {"We need MFA rolled out."},
		"consent":     {"on"},
	}
}

var meta = forms.RequestMeta{Referer: "https://fixam.co.uk/services/cyber-security", UserAgent: "Mozilla/5.0"}

func TestSubmit_ValidLeadStoresOneRowInColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	store := &recordingStore{}
	notifier := &recordingNotifier{}

	state := newTestService(store, notifier, &buf).Submit(context.Background(), validValues(), meta)

	assert.Equal(t, forms.StatusSuccess, state.Status)
	assert.Empty(t, state.FieldErrors)
	require.Len(t, store.rows, 1)
	assert.Equal(t, []string{
		"2026-10-18T09:30:00.000Z",
		"inquiry",
		"cyber-security",
		"Jane Forbes",
		"jane@example.com",
		"+44 7700 900123",
		"Forbes Ltd",
		"We need MFA rolled out.",
		"https://fixam.co.uk/services/cyber-security",
		"Mozilla/5.0",
	}, store.rows[0])
	require.Len(t, notifier.leads, 1)
	assert.Equal(t, KindInquiry, notifier.leads[0].Kind)
	assert.Equal(t, "Jane Forbes", notifier.leads[0].FullName)
}

func TestSubmit_HoneypotLooksLikeSuccess(t *testing.T) {
	var buf bytes.Buffer
	store := &recordingStore{}
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier, &buf)

	bot := svc.Submit(context.Background(), url.Values{"website": {"x"}}, meta)
	human := svc.Submit(context.Background(), validValues(), meta)

	assert.Equal(t, human, bot)
	assert.Len(t, store.rows, 1, "only the human submission is stored")
	assert.Len(t, notifier.leads, 1)
}

func TestSubmit_CollectsAllFieldErrors(t *testing.T) {
	var buf bytes.Buffer
	store := &recordingStore{}
	notifier := &recordingNotifier{}

	state := newTestService(store, notifier, &buf).Submit(context.Background(), url.Values{
		"kind":  {"inquiry"},
		"email": {"not-an-email"},
	}, meta)

	assert.Equal(t, forms.StatusError, state.Status)
	assert.Equal(t, "Please check the form.", state.Message)
	assert.Equal(t, forms.FieldErrors{
		"fullName":    "Please enter your name.",
		"email":       "Please enter a valid email address.",
		"serviceSlug": "Please select a service.",
		"message":     "Please add a short message.",
		"consent":     "Please confirm we can contact you about this request.",
	}, state.FieldErrors)
	assert.Empty(t, store.rows)
	assert.Empty(t, notifier.leads)
}

func TestSubmit_InquiryWithoutServiceRejected(t *testing.T) {
	var buf bytes.Buffer
	store := &recordingStore{}
	values := validValues()
	values.Set("serviceSlug", "   ")

	state := newTestService(store, nil, &buf).Submit(context.Background(), values, meta)

	assert.Equal(t, forms.StatusError, state.Status)
	assert.Contains(t, state.FieldErrors, "serviceSlug")
	assert.Len(t, state.FieldErrors, 1)
	assert.Empty(t, store.rows)
}

func TestSubmit_UnknownKindFallsBackToContact(t *testing.T) {
	var buf bytes.Buffer
	store := &recordingStore{}
	values := validValues()
	values.Set("kind", "partnership")
	values.Del("serviceSlug")

	state := newTestService(store, nil, &buf).Submit(context.Background(), values, meta)

	require.Equal(t, forms.StatusSuccess, state.Status)
	assert.Equal(t, "contact", store.rows[0][1])
}

func TestSubmit_StoreFailureIsOpaqueAndSkipsNotify(t *testing.T) {
	var buf bytes.Buffer
	store := &recordingStore{err: errors.New("googleapi: Error 403: The caller does not have permission")}
	notifier := &recordingNotifier{}

	state := newTestService(store, notifier, &buf).Submit(context.Background(), validValues(), meta)

	assert.Equal(t, forms.StatusError, state.Status)
	require.NotEmpty(t, state.Reference)
	assert.Contains(t, state.Message, state.Reference)
	assert.NotContains(t, state.Message, "permission")
	assert.Empty(t, notifier.leads)
	assert.Contains(t, buf.String(), state.Reference, "reference is logged alongside the error")
	assert.Contains(t, buf.String(), "permission")
}

func TestSubmit_PanicBecomesCorrelatedFailure(t *testing.T) {
	var buf bytes.Buffer
	state := newTestService(panickingStore{}, nil, &buf).Submit(context.Background(), validValues(), meta)

	assert.Equal(t, forms.StatusError, state.Status)
	assert.NotEmpty(t, state.Reference)
	assert.True(t, strings.Contains(buf.String(), "panicked"))
}

func TestValidate_ConsentLiterals(t *testing.T) {
	for _, consent := range []string{"on", "true", "yes", "1"} {
		in := InputFromValues(validValues(), meta)
		in.Consent = consent
		_, errs := Validate(in)
		assert.Empty(t, errs, consent)
	}
	in := InputFromValues(validValues(), meta)
	in.Consent = "off"
	_, errs := Validate(in)
	assert.Contains(t, errs, "consent")
}

func TestKindNoun(t *testing.T) {
	assert.Equal(t, "enquiry", KindInquiry.Noun())
	assert.Equal(t, "contact", KindContact.Noun())
}
