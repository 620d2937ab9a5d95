package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"sparsevec/internal/cluster"
	"sparsevec/internal/domain"
	"sparsevec/internal/embedding"
	"sparsevec/internal/tagging"
	"sparsevec/internal/vector"
)

// ErrNotIngested is returned by Query before a successful Ingest.
var ErrNotIngested = errors.New("no documents ingested")

// documentNamespace scopes the name-based UUIDs given to documents.
var documentNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("sparsevec:document"))

// Options tune clustering and tagging.
type Options struct {
	Cluster cluster.Config
	// Threshold enables the tagging fallback to the first cluster.
	Threshold *float32
	Logger    *slog.Logger
}

// ClusterServiceImpl ingests text files, clusters their passages and answers
// queries against them. It is not safe for concurrent Ingest calls.
type ClusterServiceImpl struct {
	chunker  domain.Chunker
	embedder embedding.Embedder
	store    domain.PassageStore
	labeler  domain.Labeler
	opts     Options
	logger   *slog.Logger

	// State of the last successful Ingest.
	corpus   []string
	passages []domain.Passage
	vectors  []*vector.SparseVector
	tags     []string
	clusters []domain.Cluster
	centers  []*vector.SparseVector
}

// NewClusterService wires the pipeline components together.
func NewClusterService(chunker domain.Chunker, embedder embedding.Embedder, store domain.PassageStore, labeler domain.Labeler, opts Options) *ClusterServiceImpl {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Cluster.Logger = logger
	return &ClusterServiceImpl{chunker: chunker, embedder: embedder, store: store, labeler: labeler, opts: opts, logger: logger}
}

// Ingest loads the .txt files matched by paths (globs allowed), clusters
// their passages and tags each passage with its cluster label.
//
// The store and the service state are only replaced once clustering and
// tagging have succeeded. On failure the embedder is prepared again on the
// previous corpus, so queries keep answering from the last good ingest.
func (s *ClusterServiceImpl) Ingest(ctx context.Context, paths []string) (_ []domain.Cluster, err error) {
	documents, err := loadDocuments(paths)
	if err != nil {
		return nil, err
	}
	var passages []domain.Passage
	var texts []string
	for _, d := range documents {
		chunks, err := s.chunker.Chunk(d)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", d.Path, err)
		}
		for _, p := range chunks {
			passages = append(passages, p)
			texts = append(texts, p.Text)
		}
	}
	if len(passages) == 0 {
		return nil, errors.New("documents contain no text")
	}
	s.logger.InfoContext(ctx, "loaded documents", "documents", len(documents), "passages", len(passages))

	defer func() {
		if err != nil {
			s.restoreEmbedder(ctx)
		}
	}()
	if err := s.embedder.Prepare(texts); err != nil {
		return nil, fmt.Errorf("prepare %s embedder: %w", s.embedder.Name(), err)
	}
	vectors := make([]*vector.SparseVector, len(passages))
	for i, p := range passages {
		v, err := s.embedder.Embed(p.Text)
		if err != nil {
			return nil, fmt.Errorf("embed passage %s: %w", p.PassageID, err)
		}
		if v == nil {
			return nil, fmt.Errorf("embed passage %s: nil vector", p.PassageID)
		}
		vectors[i] = v
	}

	cfg := s.opts.Cluster
	cfg.K = min(max(cfg.K, 1), len(passages))
	res, err := cluster.KMeans(ctx, vectors, cfg)
	if err != nil {
		return nil, fmt.Errorf("cluster passages: %w", err)
	}

	centers := make([]*tagging.Vector, len(res.Centers))
	for k, c := range res.Centers {
		centers[k] = tagging.Wrap(int64(k), s.labeler.Label(c), c)
	}
	tagged := make([]*tagging.Vector, len(vectors))
	for i, v := range vectors {
		tagged[i] = tagging.Wrap(int64(i), "", v)
	}
	if err := tagging.Tag(ctx, s.logger, tagged, centers, s.opts.Threshold); err != nil {
		return nil, fmt.Errorf("tag passages: %w", err)
	}
	tags := make([]string, len(tagged))
	for i, tv := range tagged {
		tags[i] = tv.Tag
	}

	clusters := make([]domain.Cluster, len(res.Centers))
	for k, members := range res.Groups {
		group := make([]domain.Passage, len(members))
		for i, m := range members {
			group[i] = passages[m]
		}
		clusters[k] = domain.Cluster{Index: k, Label: centers[k].Tag, Center: res.Centers[k], Passages: group}
	}

	if err := s.fillStore(passages, vectors, tags); err != nil {
		if len(s.passages) > 0 {
			if rerr := s.fillStore(s.passages, s.vectors, s.tags); rerr != nil {
				s.logger.ErrorContext(ctx, "failed to restore passage store", "error", rerr)
			}
		}
		return nil, err
	}

	s.corpus = texts
	s.passages = passages
	s.vectors = vectors
	s.tags = tags
	s.clusters = clusters
	s.centers = res.Centers
	return slices.Clone(clusters), nil
}

func (s *ClusterServiceImpl) fillStore(passages []domain.Passage, vectors []*vector.SparseVector, tags []string) error {
	s.store.Reset()
	if err := s.store.Add(passages, vectors); err != nil {
		return err
	}
	return s.store.SetTags(tags)
}

// restoreEmbedder prepares the embedder on the corpus of the last successful
// ingest. Before the first one there is nothing to restore.
func (s *ClusterServiceImpl) restoreEmbedder(ctx context.Context) {
	if len(s.corpus) == 0 {
		return
	}
	if err := s.embedder.Prepare(s.corpus); err != nil {
		s.logger.ErrorContext(ctx, "failed to restore embedder", "embedder", s.embedder.Name(), "error", err)
	}
}

// Clusters returns the clusters of the last Ingest.
func (s *ClusterServiceImpl) Clusters() []domain.Cluster { return slices.Clone(s.clusters) }

// Query ranks passages against text. When text shares no vocabulary with the
// corpus it falls back to term-set Jaccard similarity.
//
// The query's cluster is chosen with the clustering rule, while passage tags
// come from the largest dot product with a center, so a match's tag may name
// a different cluster than the result's label.
func (s *ClusterServiceImpl) Query(ctx context.Context, text string, topK int) (*domain.QueryResult, error) {
	if len(s.centers) == 0 {
		return nil, ErrNotIngested
	}
	vec, err := s.embedder.Embed(text)
	if err != nil {
		return nil, err
	}
	if vec.Len() == 0 {
		s.logger.DebugContext(ctx, "query outside vocabulary, using lexical ranking", "query", text)
		return &domain.QueryResult{Matches: s.lexicalSearch(text, topK), Cluster: -1}, nil
	}
	matches, err := s.store.Search(vec, topK)
	if err != nil {
		return nil, err
	}
	idx, err := s.opts.Cluster.Rule.AssignFunc()(vec, s.centers)
	if err != nil {
		return nil, err
	}
	return &domain.QueryResult{Matches: matches, Cluster: idx, Label: s.clusters[idx].Label}, nil
}

var unicodeWordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

func termSet(text string) *vector.SparseVector {
	return vector.FromNames(unicodeWordRe.FindAllString(strings.ToLower(text), -1))
}

func (s *ClusterServiceImpl) lexicalSearch(query string, topK int) []domain.Match {
	q := termSet(query)
	matches := make([]domain.Match, len(s.passages))
	for i, p := range s.passages {
		matches[i] = domain.Match{Passage: p, Score: q.JaccardSimilarity(termSet(p.Text))}
	}
	slices.SortStableFunc(matches, func(a, b domain.Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if topK <= 0 {
		topK = 5
	}
	return matches[:min(topK, len(matches))]
}

func loadDocuments(paths []string) ([]domain.Document, error) {
	var documents []domain.Document
	for _, p := range paths {
		matches, err := filepath.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("bad path pattern %q: %w", p, err)
		}
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".txt") {
				continue
			}
			data, err := os.ReadFile(m)
			if err != nil {
				return nil, err
			}
			id := uuid.NewSHA1(documentNamespace, []byte(m)).String()
			documents = append(documents, domain.Document{ID: id, Path: m, Content: string(data)})
		}
	}
	if len(documents) == 0 {
		return nil, fmt.Errorf("no .txt documents found")
	}
	return documents, nil
}
