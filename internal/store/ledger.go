package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var ledgerColumns = []string{ColumnName, ColumnCode, ColumnUserID}

// Ledger is the spreadsheet of verified users. Reads tolerate a broken file by
// treating it as empty; writes are serialized so concurrent completions
// cannot drop each other's rows.
type Ledger struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// ledgerRow holds the cells of one row as stored. Rows are written back
// verbatim, including ones whose UserID does not parse.
type ledgerRow struct {
	name   string
	code   string
	userID string
}

func NewLedger(path string, logger *zap.Logger) *Ledger {
	return &Ledger{path: path, logger: logger.Named("ledger")}
}

func (l *Ledger) Path() string {
	return l.path
}

// Load returns all records in file order. A missing or unreadable file yields
// an empty table; rows without a numeric UserID are skipped.
func (l *Ledger) Load() []Record {
	rows, err := l.read()
	if err != nil {
		l.logger.Error("failed to read ledger, treating as empty", zap.String("path", l.path), zap.Error(err))
		return []Record{}
	}

	records := make([]Record, 0, len(rows))
	for n, row := range rows {
		userID, err := strconv.ParseInt(row.userID, 10, 64)
		if err != nil {
			l.logger.Warn("skipping ledger row with invalid user id",
				zap.Int("row", n+2), zap.String("user_id", row.userID))
			continue
		}
		records = append(records, Record{Name: row.name, Code: row.code, UserID: userID})
	}
	return records
}

func (l *Ledger) IsVerified(userID int64) bool {
	rows, err := l.read()
	if err != nil {
		l.logger.Error("failed to read ledger, treating as empty", zap.String("path", l.path), zap.Error(err))
		return false
	}
	return containsUser(rows, userID)
}

// Save appends a record unless userID is already present. It reports whether
// a row was written. An existing but unreadable ledger is never overwritten.
func (l *Ledger) Save(name, code string, userID int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.read()
	if err != nil {
		return false, fmt.Errorf("refusing to overwrite unreadable ledger: %w", err)
	}
	if containsUser(rows, userID) {
		return false, nil
	}

	rows = append(rows, ledgerRow{name: name, code: code, userID: strconv.FormatInt(userID, 10)})
	if err := writeLedger(l.path, rows); err != nil {
		return false, err
	}
	l.logger.Info("user recorded", zap.Int64("user_id", userID), zap.Int("rows", len(rows)))
	return true, nil
}

// Export writes the current table to path. Exporting to the ledger's own path
// rewrites it in place. An unreadable ledger is reported, never exported as
// an empty table.
func (l *Ledger) Export(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.read()
	if err != nil {
		return fmt.Errorf("failed to export ledger: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	return writeLedger(path, rows)
}

func (l *Ledger) read() ([]ledgerRow, error) {
	f, err := excelize.OpenFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []ledgerRow{}, nil
		}
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}
	if len(rows) == 0 {
		return []ledgerRow{}, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[header] = i
	}
	for _, col := range ledgerColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("ledger is missing column %q", col)
		}
	}

	out := make([]ledgerRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		r := ledgerRow{
			name:   cell(row, index[ColumnName]),
			code:   cell(row, index[ColumnCode]),
			userID: strings.TrimSpace(cell(row, index[ColumnUserID])),
		}
		if r == (ledgerRow{}) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func writeLedger(path string, rows []ledgerRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, len(ledgerColumns))
	for i, col := range ledgerColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}

	for i, r := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address ledger row %d: %w", i+2, err)
		}
		// Everything is stored as text so long IDs and codes keep their digits.
		row := []interface{}{r.name, r.code, r.userID}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write ledger row %d: %w", i+2, err)
		}
	}

	return writeAtomic(path, 0o644, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

// containsUser compares user IDs as text, so unparseable rows never match.
func containsUser(rows []ledgerRow, userID int64) bool {
	id := strconv.FormatInt(userID, 10)
	for _, r := range rows {
		if r.userID == id {
			return true
		}
	}
	return false
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
