package couchbase

import (
	"context"
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
)

// DocumentManager handles document writes and N1QL reads on one collection
type DocumentManager struct {
	cluster    *gocb.Cluster
	collection *gocb.Collection
}

// NewDocumentManager creates a new document manager
func NewDocumentManager(cluster *gocb.Cluster, collection *gocb.Collection) *DocumentManager {
	return &DocumentManager{
		cluster:    cluster,
		collection: collection,
	}
}

// InsertDocument stores a new document; an existing key is an error
func (dm *DocumentManager) InsertDocument(ctx context.Context, docID string, data interface{}) error {
	start := time.Now()
	_, err := dm.collection.Insert(docID, data, &gocb.InsertOptions{Context: ctx})
	if err != nil {
		return fmt.Errorf("failed to insert document %s: %w", docID, err)
	}

	log.Debug().
		Str("doc_id", docID).
		Dur("duration", time.Since(start)).
		Msg("Inserted document")
	return nil
}

// QueryDocuments runs a N1QL statement with named parameters and decodes every row as a JSON object
func (dm *DocumentManager) QueryDocuments(ctx context.Context, statement string, params map[string]interface{}) ([]map[string]interface{}, error) {
	start := time.Now()
	rows, err := dm.cluster.Query(statement, &gocb.QueryOptions{
		Context:         ctx,
		NamedParameters: params,
	})
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var row map[string]interface{}
		if err := rows.Row(&row); err != nil {
			log.Warn().Err(err).Msg("Failed to decode query row")
			continue
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query rows: %w", err)
	}

	log.Debug().
		Str("statement", statement).
		Int("rows", len(results)).
		Dur("duration", time.Since(start)).
		Msg("Query completed")
	return results, nil
}

// EnsurePrimaryIndex creates the collection's primary index if it does not exist yet
func (dm *DocumentManager) EnsurePrimaryIndex(ctx context.Context) error {
	err := dm.collection.QueryIndexes().CreatePrimaryIndex(&gocb.CreatePrimaryQueryIndexOptions{
		IgnoreIfExists: true,
		Context:        ctx,
	})
	if err != nil {
		return fmt.Errorf("create primary index: %w", err)
	}
	return nil
}
