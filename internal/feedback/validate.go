package feedback

import "github.com/fixam/fixam-site/internal/forms"

const (
	msgRatingMissing = "Please select a rating."
	msgRatingInvalid = "Please choose a rating between 1 and 5."
)

// Validate applies the feedback rules and collects every field error.
// Approval is granted only with publish consent and when manual approval
// is not required.
func Validate(in Input, requireApproval bool) (Feedback, forms.FieldErrors) {
	errs := forms.FieldErrors{}
	if in.FullName == "" {
		errs.Add("fullName", "Please enter your name.")
	}
	if in.Email != "" && !forms.IsValidEmail(in.Email) {
		errs.Add("email", "Please enter a valid email address (or leave it blank).")
	}

	rating, ok := forms.ParseRating(in.Rating)
	switch {
	case in.Rating == "":
		errs.Add("rating", msgRatingMissing)
	case !ok:
		errs.Add("rating", msgRatingInvalid)
	}

	if in.Text == "" {
		errs.Add("feedback", "Please tell us what went well (or what we can improve).")
	}
	if len(errs) > 0 {
		return Feedback{}, errs
	}

	// rating must be set once the aggregate check passes
	if rating < 1 || rating > 5 {
		return Feedback{}, forms.FieldErrors{"rating": msgRatingMissing}
	}

	consent := forms.ParseBool(in.PublishConsent)
	return Feedback{
		FullName:       in.FullName,
		Email:          in.Email,
		Rating:         rating,
		Position:       in.Position,
		Company:        in.Company,
		Text:           in.Text,
		PublishConsent: consent,
		Approved:       consent && !requireApproval,
		Referer:        in.Meta.Referer,
		UserAgent:      in.Meta.UserAgent,
	}, nil
}
