// Package milvus provides a remote IndexedCorpus backed by a Milvus collection.
//
// Filters become Milvus boolean expressions over scalar fields; the full
// segment metadata is stored as a JSON string and decoded on read.
package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/custodia-labs/stig-assist/internal/core/domain"
	"github.com/custodia-labs/stig-assist/internal/core/ports/driven"
	"github.com/custodia-labs/stig-assist/internal/logger"
)

// Ensure Corpus implements the interface.
var _ driven.IndexedCorpus = (*Corpus)(nil)

// Field names in the collection schema.
const (
	fieldID             = "id"
	fieldControlID      = "control_id"
	fieldReleaseVersion = "release_version"
	fieldContent        = "content"
	fieldMetadata       = "metadata"
	fieldEmbedding      = "embedding"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "stig_controls"

// milvusClient is the subset of client.Client used by the corpus.
type milvusClient interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	Insert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Flush(ctx context.Context, collName string, async bool, opts ...client.FlushOption) error
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string,
		vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int,
		sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	GetCollectionStatistics(ctx context.Context, collName string) (map[string]string, error)
	Close() error
}

// Config holds configuration for the Milvus corpus.
type Config struct {
	// Address is the Milvus gRPC endpoint, e.g. "localhost:19530" (required).
	Address string

	// Collection is the collection name (default: stig_controls).
	Collection string

	// Dimensions is the embedding size used when creating the collection (required).
	Dimensions int
}

// Corpus stores segments in a Milvus collection.
type Corpus struct {
	client     milvusClient
	collection string
	dimensions int
}

// New connects to Milvus and ensures the collection exists and is loaded.
func New(ctx context.Context, cfg Config) (*Corpus, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: milvus address is required", domain.ErrInvalidInput)
	}

	c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("%w: connect milvus %s: %v", domain.ErrCorpusUnavailable, cfg.Address, err)
	}

	corpus, err := newWithClient(ctx, c, cfg)
	if err != nil {
		c.Close()
		return nil, err
	}
	return corpus, nil
}

func newWithClient(ctx context.Context, c milvusClient, cfg Config) (*Corpus, error) {
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: embedding dimensions are required", domain.ErrInvalidInput)
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	corpus := &Corpus{
		client:     c,
		collection: cfg.Collection,
		dimensions: cfg.Dimensions,
	}
	if err := corpus.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return corpus, nil
}

func (c *Corpus) ensureCollection(ctx context.Context) error {
	exists, err := c.client.HasCollection(ctx, c.collection)
	if err != nil {
		return fmt.Errorf("%w: has collection: %v", domain.ErrCorpusUnavailable, err)
	}

	if !exists {
		logger.Info("Creating Milvus collection %s (dim=%d)", c.collection, c.dimensions)
		if err := c.client.CreateCollection(ctx, c.schema(), entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		idx, err := entity.NewIndexFlat(entity.COSINE)
		if err != nil {
			return fmt.Errorf("build index: %w", err)
		}
		if err := c.client.CreateIndex(ctx, c.collection, fieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	if err := c.client.LoadCollection(ctx, c.collection, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func (c *Corpus) schema() *entity.Schema {
	return entity.NewSchema().
		WithName(c.collection).
		WithDescription("STIG control segments").
		WithAutoID(false).
		WithField(entity.NewField().WithName(fieldID).WithDataType(entity.FieldTypeVarChar).
			WithIsPrimaryKey(true).WithMaxLength(64)).
		WithField(entity.NewField().WithName(fieldControlID).WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(256)).
		WithField(entity.NewField().WithName(fieldReleaseVersion).WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(16)).
		WithField(entity.NewField().WithName(fieldContent).WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(8192)).
		WithField(entity.NewField().WithName(fieldMetadata).WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(65535)).
		WithField(entity.NewField().WithName(fieldEmbedding).WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(c.dimensions)))
}

// Add inserts segments as one column batch and flushes them.
func (c *Corpus) Add(ctx context.Context, segments []domain.Segment) error {
	if len(segments) == 0 {
		return nil
	}

	var (
		ids        = make([]string, len(segments))
		controlIDs = make([]string, len(segments))
		versions   = make([]string, len(segments))
		contents   = make([]string, len(segments))
		metadata   = make([]string, len(segments))
		vectors    = make([][]float32, len(segments))
	)

	for i := range segments {
		seg := &segments[i]
		if len(seg.Embedding) != c.dimensions {
			return fmt.Errorf("%w: segment %s has %d dimensions, collection expects %d",
				domain.ErrInvalidInput, seg.ID, len(seg.Embedding), c.dimensions)
		}
		metaJSON, err := json.Marshal(seg.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling segment metadata: %w", err)
		}

		ids[i] = seg.ID
		controlIDs[i] = seg.Metadata.ControlID
		versions[i] = seg.Metadata.ReleaseVersion.String()
		contents[i] = seg.Content
		metadata[i] = string(metaJSON)
		vectors[i] = seg.Embedding
	}

	_, err := c.client.Insert(ctx, c.collection, "",
		entity.NewColumnVarChar(fieldID, ids),
		entity.NewColumnVarChar(fieldControlID, controlIDs),
		entity.NewColumnVarChar(fieldReleaseVersion, versions),
		entity.NewColumnVarChar(fieldContent, contents),
		entity.NewColumnVarChar(fieldMetadata, metadata),
		entity.NewColumnFloatVector(fieldEmbedding, c.dimensions, vectors),
	)
	if err != nil {
		return fmt.Errorf("insert segments: %w", err)
	}

	if err := c.client.Flush(ctx, c.collection, false); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// Search returns up to k segments passing the filter, most similar first.
func (c *Corpus) Search(
	ctx context.Context, query []float32, k int, filter domain.SegmentFilter,
) ([]domain.SearchResult, error) {
	if k <= 0 || len(query) == 0 {
		return []domain.SearchResult{}, nil
	}

	sp, err := entity.NewIndexFlatSearchParam()
	if err != nil {
		return nil, fmt.Errorf("search params: %w", err)
	}

	expr := filterExpr(filter)
	logger.Debug("Milvus search: k=%d expr=%q", k, expr)

	res, err := c.client.Search(ctx, c.collection, nil, expr,
		[]string{fieldContent, fieldMetadata},
		[]entity.Vector{entity.FloatVector(query)},
		fieldEmbedding, entity.COSINE, k, sp)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	results := []domain.SearchResult{}
	for _, r := range res {
		if r.Err != nil {
			return nil, fmt.Errorf("search result: %w", r.Err)
		}
		decoded, err := decodeResult(r)
		if err != nil {
			return nil, err
		}
		results = append(results, decoded...)
	}
	return results, nil
}

func decodeResult(r client.SearchResult) ([]domain.SearchResult, error) {
	contentCol, ok := r.Fields.GetColumn(fieldContent).(*entity.ColumnVarChar)
	if !ok {
		return nil, fmt.Errorf("search result: missing %s column", fieldContent)
	}
	metaCol, ok := r.Fields.GetColumn(fieldMetadata).(*entity.ColumnVarChar)
	if !ok {
		return nil, fmt.Errorf("search result: missing %s column", fieldMetadata)
	}
	idCol, ok := r.IDs.(*entity.ColumnVarChar)
	if !ok {
		return nil, fmt.Errorf("search result: unexpected id column type")
	}

	out := make([]domain.SearchResult, 0, r.ResultCount)
	for i := 0; i < r.ResultCount; i++ {
		id, err := idCol.ValueByIdx(i)
		if err != nil {
			return nil, fmt.Errorf("read id: %w", err)
		}
		content, err := contentCol.ValueByIdx(i)
		if err != nil {
			return nil, fmt.Errorf("read content: %w", err)
		}
		metaJSON, err := metaCol.ValueByIdx(i)
		if err != nil {
			return nil, fmt.Errorf("read metadata: %w", err)
		}

		var meta domain.SegmentMetadata
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			return nil, fmt.Errorf("unmarshaling segment metadata: %w", err)
		}

		var score float64
		if i < len(r.Scores) {
			score = float64(r.Scores[i])
		}
		out = append(out, domain.SearchResult{
			Segment: domain.Segment{ID: id, Content: content, Metadata: meta},
			Score:   score,
		})
	}
	return out, nil
}

// Count returns the collection row count.
func (c *Corpus) Count(ctx context.Context) (int, error) {
	stats, err := c.client.GetCollectionStatistics(ctx, c.collection)
	if err != nil {
		return 0, fmt.Errorf("collection statistics: %w", err)
	}
	n, err := strconv.Atoi(stats["row_count"])
	if err != nil {
		return 0, fmt.Errorf("parse row count %q: %w", stats["row_count"], err)
	}
	return n, nil
}

// Close releases the client connection.
func (c *Corpus) Close() error {
	return c.client.Close()
}

// filterExpr builds a Milvus boolean expression. An empty string matches everything.
func filterExpr(filter domain.SegmentFilter) string {
	var conds []string

	if filter.ReleaseVersion.IsKnown() {
		conds = append(conds, fmt.Sprintf(`%s == "%s"`, fieldReleaseVersion, quote(filter.ReleaseVersion.String())))
	}
	if filter.ExcludeReleaseVersion.IsKnown() {
		conds = append(conds, fmt.Sprintf(`%s != "%s"`, fieldReleaseVersion, quote(filter.ExcludeReleaseVersion.String())))
	}
	if filter.ControlIDContains != "" {
		pattern := quote(escapeLike(filter.ControlIDContains))
		conds = append(conds, fmt.Sprintf(`%s like "%%%s%%"`, fieldControlID, pattern))
	}

	return strings.Join(conds, " && ")
}

// escapeLike makes % and _ match themselves inside a like pattern.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// quote escapes a value for use inside a double-quoted expression literal.
func quote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
