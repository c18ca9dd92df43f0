package testutil

import (
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("stage completed", slog.String("stage", "format"))
		logger.Error("sensor failed", slog.Int("code", 2))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("stage completed"))
		assert.True(t, handler.ContainsAttr("stage", "format"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelInfo), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelError), 1)
	})

	t.Run("derived loggers keep attrs and share the buffer", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With(slog.String("sensor", "piezo-data_P1")).Info("cleaned")
		logger.WithGroup("campaign").Info("window", slog.String("name", "May 2024"))

		assert.Equal(t, 2, handler.Count())
		AssertLogAttr(t, handler, "sensor", "piezo-data_P1")
		AssertLogAttr(t, handler, "campaign.name", "May 2024")
	})

	t.Run("clear functionality", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		logger.Info("message 1")
		handler.Clear()
		assert.Equal(t, 0, handler.Count())
	})

	t.Run("assertion helpers", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("important message", slog.String("component", "test"))
		AssertLogContains(t, handler, slog.LevelInfo, "important")
		AssertLogAttr(t, handler, "component", "test")
		AssertNoErrors(t, handler)
	})

	t.Run("thread safety", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				logger.Info("concurrent log", slog.Int("goroutine", n))
			}(i)
		}
		wg.Wait()

		assert.Equal(t, 10, handler.Count())
	})
}

func TestFixtures(t *testing.T) {
	dir := t.TempDir()

	book := filepath.Join(dir, "raw", "Site_P1_COMPENSADA.xlsx")
	WriteWorkbook(t, book, [][]any{PiezometerHeader, {"2024-05-21", "00:00:00", 0, 1, 12.5, 3, 2450, 101}})

	f, err := excelize.OpenFile(book)
	require.NoError(t, err)
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.Len(t, rows, 2)
	assert.Equal(t, "Date", rows[0][0])

	export := filepath.Join(dir, "soil", "z6-1(1).csv")
	WriteSoilExport(t, export, []string{"z6-1", "Port1"}, []string{"Timestamp", "cbar Water Content"},
		[][]string{{"2024-05-21 00:00:00", "10"}})
	assert.FileExists(t, export)
}
