package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"prodhub/internal/export"
	applog "prodhub/internal/log"
	ports "prodhub/internal/sheets"
)

const (
	DefaultTasksSheet    = "Tasks"
	DefaultExpensesSheet = "Expenses"

	// Exported rows never exceed these columns.
	clearColumns = "A:Z"
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	TasksSheet      string
	ExpensesSheet   string
	CredentialsJSON string
	CredentialsFile string
}

// Client mirrors export snapshots into two sheets of one spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	tasksSheet    string
	expensesSheet string
	logger        *slog.Logger
}

// Ensure interface conformance
var _ ports.SnapshotWriter = (*Client)(nil)

// NewClient creates a Sheets client authenticated with a service account.
func NewClient(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if len(opts) == 0 {
		creds, err := loadCredentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, cfg), nil
}

func newClient(svc *gsheet.Service, cfg Config) *Client {
	tasks := strings.TrimSpace(cfg.TasksSheet)
	if tasks == "" {
		tasks = DefaultTasksSheet
	}
	expenses := strings.TrimSpace(cfg.ExpensesSheet)
	if expenses == "" {
		expenses = DefaultExpensesSheet
	}
	return &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		tasksSheet:    tasks,
		expensesSheet: expenses,
		logger:        slog.Default().With(applog.FieldComponent, applog.ComponentSheets),
	}
}

// loadCredentials prefers inline JSON over a credentials file.
func loadCredentials(cfg Config) ([]byte, error) {
	if j := strings.TrimSpace(cfg.CredentialsJSON); j != "" {
		return []byte(j), nil
	}
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// WriteSnapshot replaces the contents of both sheets with the snapshot rows.
// The two sheets are written concurrently; the first failure cancels the other.
func (c *Client) WriteSnapshot(ctx context.Context, snap export.Snapshot) error {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.replaceSheet(gctx, c.tasksSheet, TaskRows(snap.Tasks))
	})
	g.Go(func() error {
		return c.replaceSheet(gctx, c.expensesSheet, ExpenseRows(snap.Expenses))
	})
	if err := g.Wait(); err != nil {
		return err
	}
	c.logger.InfoContext(ctx, "Snapshot mirrored to spreadsheet",
		applog.FieldOperation, applog.OpExport,
		"tasks", len(snap.Tasks),
		"expenses", len(snap.Expenses),
		applog.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (c *Client) replaceSheet(ctx context.Context, sheet string, rows [][]any) error {
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, sheet+"!"+clearColumns, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear %s: %w", sheet, err)
	}
	vr := &gsheet.ValueRange{Values: rows}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, sheet+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("update %s: %w", sheet, err)
	}
	return nil
}
