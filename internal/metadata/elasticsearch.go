package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/crawlctl/coordinator/internal/logger"
)

// ElasticsearchStore upserts page records into a single index, one document
// per (runId, url) pair via a deterministic document id.
type ElasticsearchStore struct {
	client *es.Client
	index  string
	log    logger.Interface
}

// NewElasticsearchStore wraps an already-configured Elasticsearch client.
func NewElasticsearchStore(client *es.Client, index string, log logger.Interface) *ElasticsearchStore {
	return &ElasticsearchStore{client: client, index: index, log: log}
}

func documentID(record PageRecord) string {
	return record.RunID + ":" + record.URL
}

// Upsert indexes record under a document id derived from (RunID, URL), so a
// repeated report for the same URL replaces rather than duplicates it.
func (s *ElasticsearchStore) Upsert(ctx context.Context, record PageRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal page record: %w", err)
	}

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(body),
		s.client.Index.WithContext(ctx),
		s.client.Index.WithDocumentID(documentID(record)),
	)
	if err != nil {
		return fmt.Errorf("index page record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch index error: %s", res.String())
	}

	return nil
}
