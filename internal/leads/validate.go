package leads

import "github.com/fixam/fixam-site/internal/forms"

// Validate applies the lead rules and collects every field error.
// Unknown kinds fall back to a plain contact request.
func Validate(in Input) (Lead, forms.FieldErrors) {
	kind := KindContact
	if Kind(in.Kind) == KindInquiry {
		kind = KindInquiry
	}
	consent := forms.ParseBool(in.Consent)

	errs := forms.FieldErrors{}
	if in.FullName == "" {
		errs.Add("fullName", "Please enter your name.")
	}
	if in.Email == "" {
		errs.Add("email", "Please enter your email.")
	} else if !forms.IsValidEmail(in.Email) {
		errs.Add("email", "Please enter a valid email address.")
	}
	if kind == KindInquiry && in.ServiceSlug == "" {
		errs.Add("serviceSlug", "Please select a service.")
	}
	if in.Message == "" {
		errs.Add("message", "Please add a short message.")
	}
	if !consent {
		errs.Add("consent", "Please confirm we can contact you about this request.")
	}
	if len(errs) > 0 {
		return Lead{}, errs
	}

	return Lead{
		Kind:        kind,
		FullName:    in.FullName,
		Email:       in.Email,
		Phone:       in.Phone,
		Company:     in.Company,
		ServiceSlug: in.ServiceSlug,
		Message:     in.Message,
		Consent:     consent,
		Referer:     in.Meta.Referer,
		UserAgent:   in.Meta.UserAgent,
	}, nil
}
