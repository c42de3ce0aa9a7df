package sheets

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/fixam/fixam-site/internal/credentials"
)

// GoogleAPI implements API on the Sheets v4 REST service.
type GoogleAPI struct {
	svc *gsheets.Service
}

// NewGoogleAPI authenticates with the service account and the spreadsheets
// scope. Extra options are appended (tests point the client at a fake server).
func NewGoogleAPI(ctx context.Context, account *credentials.ServiceAccount, opts ...option.ClientOption) (*GoogleAPI, error) {
	if account == nil && len(opts) == 0 {
		return nil, errors.New("sheets: service account required")
	}
	clientOpts := []option.ClientOption{option.WithScopes(gsheets.SpreadsheetsScope)}
	if account != nil {
		clientOpts = append(clientOpts, option.WithCredentialsJSON(account.JSON))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &GoogleAPI{svc: svc}, nil
}

func (g *GoogleAPI) AppendRow(ctx context.Context, spreadsheetID, rng string, row []string) error {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	_, err := g.svc.Spreadsheets.Values.Append(spreadsheetID, rng, &gsheets.ValueRange{
		Values: [][]interface{}{cells},
	}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (g *GoogleAPI) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	ss, err := g.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (g *GoogleAPI) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	_, err := g.svc.Spreadsheets.BatchUpdate(spreadsheetID, &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			AddSheet: &gsheets.AddSheetRequest{
				Properties: &gsheets.SheetProperties{Title: title},
			},
		}},
	}).Context(ctx).Do()
	return err
}

func (g *GoogleAPI) Values(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

var _ API = (*GoogleAPI)(nil)
