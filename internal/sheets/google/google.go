package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"baketrack/internal/core"
	ports "baketrack/internal/sheets"
)

// Column layout of the data sheets. Row 1 holds the headers.
const (
	transactionCols = "A:H"
	productCols     = "A:G"
	profileRange    = "A2:C2"
)

var errNoService = errors.New("sheets service not initialized")

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	productsSheet     string
	profileSheet      string
	now               func() time.Time

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// Ensure interface conformance
var _ ports.DataService = (*Client)(nil)

// Options configures a Client. Either CredentialsJSON or CredentialsFile is
// used unless ClientOptions already carry authentication.
type Options struct {
	SpreadsheetID     string
	TransactionsSheet string
	ProductsSheet     string
	ProfileSheet      string
	CredentialsJSON   string
	CredentialsFile   string
	// Extra options passed to the Sheets service, e.g. a test endpoint.
	ClientOptions []goption.ClientOption
}

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID and one of GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_APPLICATION_CREDENTIALS.
// Optional sheet names: GOOGLE_TRANSACTIONS_SHEET_NAME (default "Transactions"),
// GOOGLE_PRODUCTS_SHEET_NAME (default "Products"),
// GOOGLE_PROFILE_SHEET_NAME (default "Profile").
func NewFromEnv(ctx context.Context) (*Client, error) {
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	return New(ctx, Options{
		SpreadsheetID:     strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID")),
		TransactionsSheet: strings.TrimSpace(os.Getenv("GOOGLE_TRANSACTIONS_SHEET_NAME")),
		ProductsSheet:     strings.TrimSpace(os.Getenv("GOOGLE_PRODUCTS_SHEET_NAME")),
		ProfileSheet:      strings.TrimSpace(os.Getenv("GOOGLE_PROFILE_SHEET_NAME")),
		CredentialsJSON:   strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")),
		CredentialsFile:   file,
	})
}

func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.SpreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		svc:               svc,
		spreadsheetID:     opts.SpreadsheetID,
		transactionsSheet: orDefault(opts.TransactionsSheet, "Transactions"),
		productsSheet:     orDefault(opts.ProductsSheet, "Products"),
		profileSheet:      orDefault(opts.ProfileSheet, "Profile"),
		now:               time.Now,
		sheetIDs:          make(map[string]int64),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, opts Options) (*gsheet.Service, error) {
	clientOpts := slices.Clone(opts.ClientOptions)
	if len(clientOpts) == 0 {
		var credentialsJSON []byte
		switch {
		case opts.CredentialsJSON != "":
			slog.InfoContext(ctx, "Using inline JSON credentials")
			credentialsJSON = []byte(opts.CredentialsJSON)
		case opts.CredentialsFile != "":
			slog.InfoContext(ctx, "Reading credentials from file", "path", opts.CredentialsFile)
			b, err := os.ReadFile(opts.CredentialsFile)
			if err != nil {
				return nil, fmt.Errorf("read service account file: %w", err)
			}
			credentialsJSON = b
		default:
			return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
		}
		clientOpts = append(clientOpts,
			goption.WithCredentialsJSON(credentialsJSON),
			goption.WithScopes(gsheet.SpreadsheetsScope))
	}

	service, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	values, err := c.read(ctx, c.transactionsSheet, "A1:H")
	if err != nil {
		return nil, err
	}
	return parseTransactions(values), nil
}

func (c *Client) SubmitTransaction(ctx context.Context, tx core.Transaction, isUpdate bool) (string, error) {
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errNoService
	}

	if !isUpdate {
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if tx.Timestamp == "" {
			tx.Timestamp = c.now().UTC().Format(time.RFC3339)
		}
		if err := c.appendRow(ctx, c.transactionsSheet, transactionCols, transactionRow(tx)); err != nil {
			return "", err
		}
		return tx.ID, nil
	}

	row, err := c.findRow(ctx, c.transactionsSheet, tx.ID)
	if err != nil {
		return "", err
	}
	if tx.Timestamp == "" {
		tx.Timestamp = c.now().UTC().Format(time.RFC3339)
	}
	rng := fmt.Sprintf("%s!A%d:H%d", c.transactionsSheet, row, row)
	if err := c.updateRange(ctx, rng, [][]any{transactionRow(tx)}); err != nil {
		return "", err
	}
	return tx.ID, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	if c.svc == nil {
		return errNoService
	}
	row, err := c.findRow(ctx, c.transactionsSheet, id)
	if err != nil {
		return err
	}
	return c.deleteRow(ctx, c.transactionsSheet, row)
}

func (c *Client) ListProducts(ctx context.Context) ([]core.Product, error) {
	values, err := c.read(ctx, c.productsSheet, "A1:G")
	if err != nil {
		return nil, err
	}
	return parseProducts(values), nil
}

func (c *Client) SubmitProduct(ctx context.Context, p core.Product, isUpdate bool) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return 0, errNoService
	}

	if !isUpdate {
		existing, err := c.ListProducts(ctx)
		if err != nil {
			return 0, err
		}
		p.ID = nextProductID(existing)
		if err := c.appendRow(ctx, c.productsSheet, productCols, productRow(p)); err != nil {
			return 0, err
		}
		return p.ID, nil
	}

	row, err := c.findRow(ctx, c.productsSheet, fmt.Sprint(p.ID))
	if err != nil {
		return 0, err
	}
	rng := fmt.Sprintf("%s!A%d:G%d", c.productsSheet, row, row)
	if err := c.updateRange(ctx, rng, [][]any{productRow(p)}); err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errNoService
	}
	row, err := c.findRow(ctx, c.productsSheet, fmt.Sprint(id))
	if err != nil {
		return err
	}
	return c.deleteRow(ctx, c.productsSheet, row)
}

// GetProfile reads the single profile row, falling back to the guest
// profile when the sheet is still empty.
func (c *Client) GetProfile(ctx context.Context) (core.Profile, error) {
	values, err := c.read(ctx, c.profileSheet, profileRange)
	if err != nil {
		return core.Profile{}, err
	}
	return parseProfile(values), nil
}

func (c *Client) UpdateProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return errNoService
	}
	rng := fmt.Sprintf("%s!%s", c.profileSheet, profileRange)
	return c.updateRange(ctx, rng, [][]any{{p.Name, p.Email, p.PhotoURL}})
}

func (c *Client) read(ctx context.Context, sheet, cells string) ([][]any, error) {
	if c.svc == nil {
		return nil, errNoService
	}
	rng := fmt.Sprintf("%s!%s", sheet, cells)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// Values are written RAW so dates stay strings and product names are never
// evaluated as formulas.
func (c *Client) appendRow(ctx context.Context, sheet, cols string, row []any) error {
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	vr := &gsheet.ValueRange{Values: [][]any{row}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", sheet, err)
	}
	return nil
}

func (c *Client) updateRange(ctx context.Context, rng string, values [][]any) error {
	vr := &gsheet.ValueRange{Values: values}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

// findRow returns the 1-based row whose column A equals id.
func (c *Client) findRow(ctx context.Context, sheet, id string) (int, error) {
	values, err := c.read(ctx, sheet, "A:A")
	if err != nil {
		return 0, err
	}
	if row := rowOf(values, id); row > 0 {
		return row, nil
	}
	return 0, fmt.Errorf("%s row %q: %w", sheet, id, core.ErrNotFound)
}

func (c *Client) deleteRow(ctx context.Context, sheet string, row int) error {
	sheetID, err := c.sheetID(ctx, sheet)
	if err != nil {
		return err
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
					// Sheet id 0 is the first tab and must still be sent.
					ForceSendFields: []string{"SheetId", "StartIndex"},
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete %s row %d: %w", sheet, row, err)
	}
	return nil
}

// sheetID resolves a tab title to its numeric id, caching the lookup.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	c.mu.Lock()
	id, ok := c.sheetIDs[title]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read spreadsheet metadata: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			c.sheetIDs[s.Properties.Title] = s.Properties.SheetId
		}
	}
	id, ok = c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("sheet %q: %w", title, core.ErrNotFound)
	}
	return id, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
