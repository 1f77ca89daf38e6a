package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return NewLedger(filepath.Join(t.TempDir(), "user_codes.xlsx"), zap.NewNop())
}

func TestLedger_LoadMissingFile(t *testing.T) {
	l := newTestLedger(t)

	records := l.Load()
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.False(t, l.IsVerified(1))
}

func TestLedger_SaveAndLoad(t *testing.T) {
	l := newTestLedger(t)

	added, err := l.Save("Alice", "123456789", 5123456789)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = l.Save("Bob", "987654321", 7)
	require.NoError(t, err)
	assert.True(t, added)

	assert.Equal(t, []Record{
		{Name: "Alice", Code: "123456789", UserID: 5123456789},
		{Name: "Bob", Code: "987654321", UserID: 7},
	}, l.Load())
	assert.True(t, l.IsVerified(5123456789))
	assert.False(t, l.IsVerified(8))
}

func TestLedger_FileLayout(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Save("Alice", "123456789", 42)
	require.NoError(t, err)

	f, err := excelize.OpenFile(l.Path())
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Name", "Code", "UserID"},
		{"Alice", "123456789", "42"},
	}, rows)
}

func TestLedger_SaveIsIdempotentPerUser(t *testing.T) {
	l := newTestLedger(t)

	added, err := l.Save("Alice", "111111111", 42)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = l.Save("Alice Again", "222222222", 42)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, []Record{{Name: "Alice", Code: "111111111", UserID: 42}}, l.Load())
}

func TestLedger_ConcurrentSaves(t *testing.T) {
	l := newTestLedger(t)
	const users = 20

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := l.Save(fmt.Sprintf("user-%d", id), "100000000", id)
			assert.NoError(t, err)
		}(int64(i + 1))
	}
	wg.Wait()

	records := l.Load()
	assert.Len(t, records, users)
	for i := int64(1); i <= users; i++ {
		assert.True(t, l.IsVerified(i), "user %d missing", i)
	}
}

func TestLedger_UnreadableFile(t *testing.T) {
	l := newTestLedger(t)
	garbage := []byte("this is not a spreadsheet")
	require.NoError(t, os.WriteFile(l.Path(), garbage, 0o644))

	assert.Empty(t, l.Load())
	assert.False(t, l.IsVerified(42))

	added, err := l.Save("Alice", "123456789", 42)
	assert.Error(t, err)
	assert.False(t, added)

	got, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, garbage, got)
}

func TestLedger_Export(t *testing.T) {
	l := newTestLedger(t)
	_, err := l.Save("Alice", "123456789", 42)
	require.NoError(t, err)

	t.Run("In Place", func(t *testing.T) {
		require.NoError(t, l.Export(l.Path()))
		assert.Equal(t, []Record{{Name: "Alice", Code: "123456789", UserID: 42}}, l.Load())
	})

	t.Run("Separate Path", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "exports", "codes.xlsx")
		require.NoError(t, l.Export(out))

		exported := NewLedger(out, zap.NewNop())
		assert.Equal(t, l.Load(), exported.Load())
	})
}

func TestLedger_ExportUnreadableFile(t *testing.T) {
	l := newTestLedger(t)
	garbage := []byte("this is not a spreadsheet")
	require.NoError(t, os.WriteFile(l.Path(), garbage, 0o644))

	assert.Error(t, l.Export(l.Path()))

	got, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	assert.Equal(t, garbage, got)

	out := filepath.Join(t.TempDir(), "codes.xlsx")
	assert.Error(t, l.Export(out))
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

// writeRawLedger writes rows exactly as given, bypassing Ledger.Save.
func writeRawLedger(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, axis, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func readRawLedger(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	return rows
}

func TestLedger_MalformedRowsAreKept(t *testing.T) {
	l := newTestLedger(t)
	writeRawLedger(t, l.Path(), [][]interface{}{
		{"Name", "Code", "UserID"},
		{"Alice", "111111111", "42"},
		{"Hand Edited", "222222222", "n/a"},
		{"No ID", "333333333", ""},
		{"Bob", "444444444", "7"},
	})

	assert.Equal(t, []Record{
		{Name: "Alice", Code: "111111111", UserID: 42},
		{Name: "Bob", Code: "444444444", UserID: 7},
	}, l.Load())
	assert.True(t, l.IsVerified(42))
	assert.True(t, l.IsVerified(7))
	assert.False(t, l.IsVerified(8))

	added, err := l.Save("Carol", "555555555", 8)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = l.Save("Alice Again", "666666666", 42)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Equal(t, [][]string{
		{"Name", "Code", "UserID"},
		{"Alice", "111111111", "42"},
		{"Hand Edited", "222222222", "n/a"},
		{"No ID", "333333333"},
		{"Bob", "444444444", "7"},
		{"Carol", "555555555", "8"},
	}, readRawLedger(t, l.Path()))

	out := filepath.Join(t.TempDir(), "codes.xlsx")
	require.NoError(t, l.Export(out))
	assert.Equal(t, readRawLedger(t, l.Path()), readRawLedger(t, out))
}
