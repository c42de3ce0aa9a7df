package sheets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fixam/fixam-site/internal/observability/metrics"
	"github.com/fixam/fixam-site/pkg/logging"
)

var tracer = otel.Tracer("fixam/sheets")

// ErrNotConfigured is returned by reads when no spreadsheet or API is configured.
var ErrNotConfigured = errors.New("sheets: not configured")

// API is the subset of the spreadsheet service the store needs.
type API interface {
	AppendRow(ctx context.Context, spreadsheetID, rng string, row []string) error
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	AddSheet(ctx context.Context, spreadsheetID, title string) error
	Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error)
}

// RowStore appends rows to one spreadsheet range.
type RowStore struct {
	api           API
	spreadsheetID string
	rng           string
	logger        *logging.Logger
	metrics       *metrics.SiteMetrics
}

// NewRowStore normalizes the destination. A nil api or empty id yields a
// store that only logs rows.
func NewRowStore(api API, spreadsheetID, rng string, logger *logging.Logger, m *metrics.SiteMetrics) *RowStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &RowStore{
		api:           api,
		spreadsheetID: NormalizeSpreadsheetID(spreadsheetID),
		rng:           NormalizeRange(rng),
		logger:        logger,
		metrics:       m,
	}
}

// Configured reports whether appends reach a real spreadsheet.
func (s *RowStore) Configured() bool {
	return s != nil && s.api != nil && s.spreadsheetID != ""
}

// Range returns the normalized destination range.
func (s *RowStore) Range() string { return s.rng }

// Append writes row as a new spreadsheet row. It is not idempotent.
func (s *RowStore) Append(ctx context.Context, row []string) error {
	if !s.Configured() {
		s.logger.Warn("spreadsheet not configured, row logged only", "range", s.rng, "row", row)
		return nil
	}

	ctx, span := tracer.Start(ctx, "sheets.append", trace.WithAttributes(
		attribute.String("sheets.range", s.rng),
		attribute.Int("sheets.columns", len(row)),
	))
	defer span.End()

	start := time.Now()
	err := s.append(ctx, row)
	s.metrics.ObserveStoreLatency(time.Since(start).Seconds(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "append failed")
		return err
	}
	return nil
}

func (s *RowStore) append(ctx context.Context, row []string) error {
	if err := s.ensureTab(ctx); err != nil {
		return err
	}
	if err := s.api.AppendRow(ctx, s.spreadsheetID, s.rng, row); err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}

// ensureTab creates the target tab when missing. It runs before every append;
// a concurrent creator winning the race is not an error.
func (s *RowStore) ensureTab(ctx context.Context) error {
	name := SheetName(s.rng)
	if name == "" {
		return nil
	}

	titles, err := s.api.SheetTitles(ctx, s.spreadsheetID)
	if err != nil {
		return fmt.Errorf("sheets: list tabs: %w", err)
	}
	if slices.Contains(titles, name) {
		return nil
	}

	if err := s.api.AddSheet(ctx, s.spreadsheetID, name); err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("sheets: create tab %q: %w", name, err)
	}
	s.logger.Info("spreadsheet tab created", "tab", name)
	return nil
}

// Rows reads rng from the store's spreadsheet.
func (s *RowStore) Rows(ctx context.Context, rng string) ([][]string, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}
	rows, err := s.api.Values(ctx, s.spreadsheetID, NormalizeRange(rng))
	if err != nil {
		return nil, fmt.Errorf("sheets: read values: %w", err)
	}
	return rows, nil
}

func isAlreadyExists(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}
