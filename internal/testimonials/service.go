package testimonials

import (
	"context"
	"errors"
	"strings"

	"github.com/fixam/fixam-site/internal/forms"
	"github.com/fixam/fixam-site/internal/sheets"
	"github.com/fixam/fixam-site/pkg/logging"
)

const (
	SourceWebsite = "website"
	SourceForm    = "form"
)

// Item is one public testimonial.
type Item struct {
	Avatar   string `json:"avatar"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Feedback string `json:"feedback"`
	Rating   *int   `json:"rating,omitempty"`
	Source   string `json:"source,omitempty"`
}

// RowReader reads a spreadsheet range.
type RowReader interface {
	Rows(ctx context.Context, rng string) ([][]string, error)
}

// Config points the service at both spreadsheet layouts. Either reader may be nil.
type Config struct {
	// Feedback holds rows written by the feedback form.
	Feedback      RowReader
	FeedbackRange string
	// Legacy holds responses from the original Google Form.
	Legacy      RowReader
	LegacyRange string
}

// Service assembles the testimonials shown on the landing page.
type Service struct {
	cfg    Config
	logger *logging.Logger
}

func NewService(cfg Config, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FeedbackRange != "" {
		cfg.FeedbackRange = sheets.WithCells(cfg.FeedbackRange, "A2:K")
	}
	if cfg.LegacyRange == "" {
		cfg.LegacyRange = "Form Responses 1!A2:I"
	}
	return &Service{cfg: cfg, logger: logger}
}

// List returns exactly limit items: approved website feedback newest first,
// then valid legacy responses, then built-in samples. It never fails.
func (s *Service) List(ctx context.Context, limit int) []Item {
	if limit < 1 {
		return []Item{}
	}

	items := make([]Item, 0, limit)
	if s.cfg.Feedback != nil && s.cfg.FeedbackRange != "" {
		items = append(items, s.read(ctx, s.cfg.Feedback, s.cfg.FeedbackRange, fromFeedbackRows)...)
	}
	if len(items) < limit && s.cfg.Legacy != nil {
		items = append(items, s.read(ctx, s.cfg.Legacy, s.cfg.LegacyRange, fromLegacyRows)...)
	}
	if len(items) > limit {
		return items[:limit]
	}
	return append(items, Samples(limit-len(items))...)
}

func (s *Service) read(ctx context.Context, reader RowReader, rng string, convert func([][]string) []Item) []Item {
	rows, err := reader.Rows(ctx, rng)
	if errors.Is(err, sheets.ErrNotConfigured) {
		s.logger.Debug("testimonial sheet not configured", "range", rng)
		return nil
	}
	if err != nil {
		s.logger.Error("failed to read testimonials", "range", rng, "error", err)
		return nil
	}
	return convert(rows)
}

// fromFeedbackRows reads rows in the feedback form's column order and keeps
// the approved ones, newest first.
func fromFeedbackRows(rows [][]string) []Item {
	var items []Item
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		if cell(row, 8) != "TRUE" {
			continue
		}
		name, text := cell(row, 1), cell(row, 6)
		if name == "" || text == "" {
			continue
		}
		item := Item{
			Avatar:   Avatar(name),
			Name:     name,
			Position: joinNonEmpty(cell(row, 4), cell(row, 5)),
			Feedback: text,
			Source:   SourceWebsite,
		}
		if rating, ok := forms.ParseRating(cell(row, 3)); ok {
			item.Rating = &rating
		}
		items = append(items, item)
	}
	return items
}

// fromLegacyRows reads the Google Form layout: feedback in C, name in E,
// position in G and the display flag in H.
func fromLegacyRows(rows [][]string) []Item {
	var items []Item
	for _, row := range rows {
		if cell(row, 7) != "TRUE" {
			continue
		}
		name := cell(row, 4)
		items = append(items, Item{
			Avatar:   Avatar(name),
			Name:     name,
			Position: cell(row, 6),
			Feedback: cell(row, 2),
			Source:   SourceForm,
		})
	}
	return items
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

var (
	sampleNames = []string{
		"Jane Forbes", "Peter Maze", "Claude Mae",
		"Sinclair Kerry", "John Kimali", "Lucy Falcao",
	}
	samplePositions = []string{
		"Business Owner", "IT Manager", "Office Administrator", "Freelancer", "Student",
	}
	sampleFeedback = []string{
		"Excellent service! Fixed my laptop in no time.",
		"Very professional and knowledgeable team. Highly recommended!",
		"Saved our company's data after a critical system failure. Lifesavers!",
		"Quick response time and efficient problem-solving. Great IT support.",
		"Affordable and reliable. Will definitely use their services again.",
		"Helped set up our entire office network. Smooth and hassle-free experience.",
	}
)

// Samples returns n built-in testimonials. The output is deterministic.
func Samples(n int) []Item {
	items := make([]Item, 0, max(n, 0))
	for i := 0; i < n; i++ {
		name := sampleNames[i%len(sampleNames)]
		items = append(items, Item{
			Avatar:   Avatar(name),
			Name:     name,
			Position: samplePositions[i%len(samplePositions)],
			Feedback: sampleFeedback[i%len(sampleFeedback)],
		})
	}
	return items
}
