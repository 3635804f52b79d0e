package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/castquery/internal/core/ports/driving"
)

func TestIngestCmd_RequiresArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := executeRoot(t, "ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_ReportsTotals(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.reports["a.json"] = driving.IngestReport{Jobs: 2, Points: 10}
	ts.ingest.reports["b.json"] = driving.IngestReport{Jobs: 1, Points: 3, IndexFailures: 1}

	out, err := executeRoot(t, "ingest", "a.json", "b.json")

	require.NoError(t, err)
	assert.Contains(t, out, "OK a.json (2 jobs, 10 points)")
	assert.Contains(t, out, "Ingested 3 jobs, indexed 13 points, 1 jobs could not be indexed")
}

func TestIngestCmd_ContinuesAfterFailure(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.errs["bad.json"] = errors.New("malformed")
	ts.ingest.reports["good.json"] = driving.IngestReport{Jobs: 1, Points: 2}

	out, err := executeRoot(t, "ingest", "bad.json", "good.json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, out, "FAILED bad.json: malformed")
	assert.Contains(t, out, "OK good.json")
}

func TestIngestCmd_NoService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	_, err := executeRoot(t, "ingest", "a.json")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestWatchCmd_PassesDirectory(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeRoot(t, "watch", "/data/incoming")

	require.NoError(t, err)
	assert.Equal(t, "/data/incoming", ts.ingest.watchDir)
	assert.Contains(t, out, "Watching /data/incoming")
}

func TestWatchCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.watchErr = errors.New("no such directory")

	_, err := executeRoot(t, "watch", "/missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch failed: no such directory")
}

func TestIndexInitCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeRoot(t, "index", "init")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.ingest.ensureCalls)
	assert.Contains(t, out, "Vector index is ready.")
}

func TestIndexInitCmd_Error(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.ingest.ensureErr = errors.New("qdrant down")

	_, err := executeRoot(t, "index", "init")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating index: qdrant down")
}
