package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
)

func TestAskCmd(t *testing.T) {
	f := newFixture()

	out, err := f.run("", "ask", "How", "do", "I", "enable", "FIPS?")

	require.NoError(t, err)
	assert.Equal(t, "How do I enable FIPS?", f.query.lastReq.Question)
	assert.Empty(t, f.query.lastReq.ControlID)
	assert.Contains(t, out, "RHEL Version Focus: 9")
	assert.Contains(t, out, "fips-mode-setup --enable")
	assert.Contains(t, out, "STIG ID: RHEL-09-671010")
}

func TestAskCmd_Flags(t *testing.T) {
	f := newFixture()

	_, err := f.run("", "ask", "--stig-id", "RHEL-08-010020", "--rhel", "8", "what is required?")

	require.NoError(t, err)
	assert.Equal(t, "RHEL-08-010020", f.query.lastReq.ControlID)
	assert.Equal(t, domain.Release8, f.query.lastReq.ReleaseVersion)
}

func TestAskCmd_DetectsControlID(t *testing.T) {
	f := newFixture()

	_, err := f.run("", "ask", "what does rhel-08-010010 require?")

	require.NoError(t, err)
	assert.Equal(t, "RHEL-08-010010", f.query.lastReq.ControlID)
}

func TestAskCmd_JSON(t *testing.T) {
	f := newFixture()

	out, err := f.run("", "ask", "--json", "fips")

	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "answered", body["status"])
	assert.Equal(t, "9", body["rhel_version_focus"])
}

func TestAskCmd_FailedAnswer(t *testing.T) {
	f := newFixture()
	f.query.answer = &domain.Answer{
		Text:   domain.ErrorAnswerPrefix + errBoom.Error(),
		Status: domain.AnswerStatusFailed,
		Err:    errBoom,
	}

	out, err := f.run("", "ask", "fips")

	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, out, "Error processing query: boom")
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	f := newFixture()

	_, err := f.run("", "ask")

	assert.Error(t, err)
}

func TestFindCmd(t *testing.T) {
	f := newFixture()
	f.retrieval.results = sampleResults()

	out, err := f.run("", "find", "RHEL-09-671")

	require.NoError(t, err)
	assert.Equal(t, "RHEL-09-671", f.retrieval.lastID)
	assert.Contains(t, out, "Results for STIG ID: RHEL-09-671")
	assert.Contains(t, out, "RHEL-09-671010 (RHEL 9, high)")
}

func TestFindCmd_NoResults(t *testing.T) {
	f := newFixture()

	out, err := f.run("", "find", "NOPE")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestFindCmd_JSON(t *testing.T) {
	f := newFixture()
	f.retrieval.results = sampleResults()

	out, err := f.run("", "find", "--json", "RHEL-09")

	require.NoError(t, err)
	assert.Contains(t, out, `"stig_id": "RHEL-09"`)
	assert.Contains(t, out, `"results"`)
}

func TestSearchCmd_Defaults(t *testing.T) {
	f := newFixture()
	f.retrieval.results = sampleResults()

	out, err := f.run("", "search", "ssh", "root", "login")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultK, f.retrieval.lastOpts.K)
	assert.True(t, f.retrieval.lastOpts.PreferVersion9)
	assert.Contains(t, out, "0.87")
}

func TestSearchCmd_Flags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		k       int
		prefer9 bool
		version domain.ReleaseVersion
	}{
		{name: "k", args: []string{"-k", "8"}, k: 8, prefer9: true},
		{name: "no prefer", args: []string{"--no-prefer9"}, k: domain.DefaultK},
		{name: "version filter", args: []string{"--rhel", "8"}, k: domain.DefaultK, version: domain.Release8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			args := append([]string{"search"}, tt.args...)
			args = append(args, "audit")

			_, err := f.run("", args...)

			require.NoError(t, err)
			assert.Equal(t, tt.k, f.retrieval.lastOpts.K)
			assert.Equal(t, tt.prefer9, f.retrieval.lastOpts.PreferVersion9)
			assert.Equal(t, tt.version, f.retrieval.lastOpts.Filter.ReleaseVersion)
		})
	}
}

func TestSearchCmd_Error(t *testing.T) {
	f := newFixture()
	f.retrieval.err = errBoom

	_, err := f.run("", "search", "audit")

	assert.ErrorIs(t, err, errBoom)
}

func TestHealthCmd(t *testing.T) {
	f := newFixture()

	out, err := f.run("", "health")

	require.NoError(t, err)
	assert.Contains(t, out, "Status: healthy")
	assert.Contains(t, out, "Segments: 4")

	out, err = f.run("", "health", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "healthy"`)
}

func TestLoadCmd(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"rhel9.xml", "rhel8.json", "notes.txt", ".hidden.yaml"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	single := filepath.Join(t.TempDir(), "extra.yml")
	require.NoError(t, os.WriteFile(single, []byte("x"), 0o600))

	f := newFixture()
	out, err := f.run("", "load", dir, single)

	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "rhel8.json"),
		filepath.Join(dir, "rhel9.xml"),
		single,
	}, f.ingest.loaded)
	assert.Contains(t, out, "1 controls, 2 chunks")
}

func TestLoadCmd_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.xml")
	good := filepath.Join(dir, "good.xml")
	require.NoError(t, os.WriteFile(bad, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(good, []byte("x"), 0o600))

	f := newFixture()
	f.ingest.fail = map[string]bool{bad: true}

	_, err := f.run("", "load", dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Equal(t, []string{good}, f.ingest.loaded)
}

func TestLoadCmd_MissingPath(t *testing.T) {
	f := newFixture()

	_, err := f.run("", "load", filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestLoadCmd_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rhel9.xml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	f := newFixture()
	out, err := f.run("", "load", "--json", path)

	require.NoError(t, err)
	var reports []domain.LoadReport
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, domain.FormatXCCDF, reports[0].Format)
}

func TestInteractiveCmd_RequiresTerminal(t *testing.T) {
	f := newFixture()

	_, err := f.run("", "interactive")

	assert.ErrorIs(t, err, ErrNotTerminal)
	assert.Zero(t, f.closed)
}

func TestServeAddress(t *testing.T) {
	f := newFixture()
	assert.Equal(t, defaultServeAddr, serverAddress(f.app))

	f.settings.settings = &domain.AppSettings{Server: domain.ServerSettings{Address: "127.0.0.1:9000"}}
	assert.Equal(t, "127.0.0.1:9000", serverAddress(f.app))
}

func TestWatchCmd_MissingDir(t *testing.T) {
	f := newFixture()

	_, err := f.run("", "watch", "--initial=false", filepath.Join(t.TempDir(), "missing"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "root path error")
}
