package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stig-assist/internal/adapters/driven/corpus/memory"
	"github.com/custodia-labs/stig-assist/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/loaders"
	"github.com/custodia-labs/stig-assist/internal/postprocessors"
)

const mixedReleaseControls = `{"controls": [
  {
    "id": "RHEL-09-211010",
    "title": "RHEL 9 must be a vendor-supported release.",
    "severity": "high",
    "description": "Unsupported releases no longer receive security patches.",
    "check": "Verify the release with cat /etc/redhat-release.",
    "fix": "Upgrade to a supported version of the operating system.",
    "version": "9"
  },
  {
    "id": "RHEL-08-010040",
    "title": "RHEL 8 must display the Standard Mandatory DoD Notice and Consent Banner before granting SSH access.",
    "description": "The SSH warning banner must be shown before login.",
    "check": "Verify the SSH banner with grep -i banner /etc/ssh/sshd_config.",
    "fix": "Set Banner /etc/issue in /etc/ssh/sshd_config and restart sshd.",
    "version": "8"
  }
]}`

// wiredServices builds the real ingest and query path over an in-memory corpus.
type wiredServices struct {
	ingest    *IngestService
	retrieval *RetrievalService
	query     *QueryService
	llm       *mockLLMService
}

func newWiredServices(t *testing.T) *wiredServices {
	t.Helper()

	pipeline, err := postprocessors.NewDefaultPipeline(1000, 200)
	require.NoError(t, err)

	embedder := hashing.NewEmbeddingService(hashing.DefaultDimensions)
	corpus := memory.NewCorpus()
	llm := &mockLLMService{response: "Configure the banner."}

	retrieval := NewRetrievalService(embedder, corpus)
	return &wiredServices{
		ingest:    NewIngestService(loaders.NewDefaultRegistry(), pipeline, embedder, corpus),
		retrieval: retrieval,
		query:     NewQueryService(retrieval, llm, &mockPromptStore{template: testTemplate}, QueryConfig{K: 5}),
		llm:       llm,
	}
}

func (w *wiredServices) load(t *testing.T, name, content string) *domain.LoadReport {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	report, err := w.ingest.LoadDocument(context.Background(), path, domain.FormatRecordArray)
	require.NoError(t, err)
	return report
}

func TestWired_AnswerRanksRelease9First(t *testing.T) {
	w := newWiredServices(t)
	report := w.load(t, "mixed.json", mixedReleaseControls)
	require.Equal(t, 2, report.RecordsLoaded)

	ctx := context.Background()
	question := "How do I configure the SSH warning banner in sshd_config?"

	plain, err := w.retrieval.Search(ctx, question, domain.RetrievalOptions{K: 5})
	require.NoError(t, err)
	require.NotEmpty(t, plain)
	assert.Equal(t, domain.Release8, plain[0].Segment.Metadata.ReleaseVersion,
		"the RHEL 8 banner control is the closer match by similarity")

	answer := w.query.Answer(ctx, domain.QueryRequest{Question: question})

	require.False(t, answer.Failed(), "answer failed: %v", answer.Err)
	assert.Equal(t, domain.AnswerStatusAnswered, answer.Status)
	assert.Equal(t, domain.Release9, answer.ResolvedVersion)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "RHEL-09-211010", answer.Sources[0].Metadata.ControlID)
	assert.Equal(t, domain.Release9, answer.Sources[0].Metadata.ReleaseVersion)
	assert.Equal(t, "RHEL-08-010040", answer.Sources[1].Metadata.ControlID)
	assert.Equal(t, domain.Release8, answer.Sources[1].Metadata.ReleaseVersion)
	require.Len(t, w.llm.prompts, 1)
}

func TestWired_FindControlWithLowercaseSourceID(t *testing.T) {
	w := newWiredServices(t)
	w.load(t, "lower.json", `{"controls": [
  {"id": "rhel-09-000001", "title": "Lowercase id", "version": "9"},
  {"title": "Control without an id", "version": "9"}
]}`)

	results, err := w.retrieval.SearchByControlID(context.Background(), "RHEL-09-000001")

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "RHEL-09-000001", results[0].Segment.Metadata.ControlID)
	assert.Contains(t, results[0].Segment.Content, "STIG ID: RHEL-09-000001")
}

func TestWired_EmptyCorpusAnswerIsLabelled(t *testing.T) {
	w := newWiredServices(t)

	answer := w.query.Answer(context.Background(), domain.QueryRequest{Question: "How do I enable FIPS mode?"})

	assert.Empty(t, answer.Sources)
	assert.Equal(t, domain.AnswerStatusNoContext, answer.Status)
	assert.Equal(t, domain.Release9, answer.ResolvedVersion)
	assert.Equal(t, "Question about RHEL 9: How do I enable FIPS mode?", answer.Query)
}
