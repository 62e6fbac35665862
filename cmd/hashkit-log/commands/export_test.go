package commands

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashkit-io/hashkit-go/pkg/log"
)

func TestExportJSONL(t *testing.T) {
	path := writeCapture(t)
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	require.NoError(t, RunExport(path, "jsonl", outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4)
	for _, line := range lines {
		var obj map[string]any
		assert.NoError(t, json.Unmarshal([]byte(line), &obj), "each line is a JSON object")
	}
}

func TestExportCSV(t *testing.T) {
	path := writeCapture(t)
	outPath := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, RunExport(path, "csv", outPath))

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5, "header plus four events")
	assert.Equal(t, "timestamp", records[0][0])

	// The HSET row carries command details.
	var hsetRow []string
	for _, rec := range records[1:] {
		if rec[6] == "HSET" {
			hsetRow = rec
		}
	}
	require.NotNil(t, hsetRow)
	assert.Equal(t, "user:42", hsetRow[7])
	assert.Equal(t, "800", hsetRow[9], "elapsed in microseconds")
}

func TestExportUnknownFormat(t *testing.T) {
	path := writeCapture(t)
	err := RunExport(path, "xml", "")
	assert.Error(t, err)
}

func TestFilterRoundTrip(t *testing.T) {
	path := writeCapture(t)
	outPath := filepath.Join(t.TempDir(), "filtered.hklog")

	var status strings.Builder
	require.NoError(t, RunFilter(path, log.Filter{Command: "HSET"}, outPath, &status))
	assert.Contains(t, status.String(), "Filtered 1 events")

	// The output is itself a readable capture file.
	r, err := log.NewReader(outPath)
	require.NoError(t, err)
	defer r.Close()

	ev, err := r.Next()
	require.NoError(t, err)
	require.NotNil(t, ev.Command)
	assert.Equal(t, "HSET", ev.Command.Name)
}
