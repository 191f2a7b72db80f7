package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLine(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	ev := ScheduleCompletedEvent{
		EventID:        "e-1",
		UserID:         7,
		AssetID:        3,
		AssetName:      "Forklift",
		RecordID:       11,
		ScheduleID:     5,
		ScheduledDate:  "2024-03-01",
		NextScheduleID: 6,
		NextDate:       "2024-04-10",
		FrequencyType:  "months",
		FrequencyValue: 1,
		CompletedOn:    "2024-03-10",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(body, dir))
	require.NoError(t, handleMessage(body, dir))

	raw, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[2024-03-10] Maintenance completed")
	assert.Contains(t, lines[0], `asset="Forklift"`)
	assert.Contains(t, lines[0], "next_date=2024-04-10")
	assert.Contains(t, lines[0], "every=1 months")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, handleMessage([]byte("{not json"), dir))
	assert.Error(t, handleMessage([]byte(`{"event_id":"x"}`), dir))

	_, err := os.Stat(filepath.Join(dir, LogFileName))
	assert.True(t, os.IsNotExist(err))
}
