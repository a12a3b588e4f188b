package records

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// KeyPrefix marks patient documents; system documents in the same collection use other prefixes
const KeyPrefix = "patient::"

// DocumentClient is the slice of the Couchbase client the store needs
type DocumentClient interface {
	Keyspace() string
	InsertDocument(ctx context.Context, docID string, data interface{}) error
	QueryDocuments(ctx context.Context, statement string, params map[string]interface{}) ([]map[string]interface{}, error)
}

// CouchbaseStore implements Store over a Couchbase collection. Keys are
// time-ordered UUIDs so ORDER BY META().id follows insertion order.
type CouchbaseStore struct {
	client DocumentClient
}

// NewCouchbaseStore creates a store over client
func NewCouchbaseStore(client DocumentClient) *CouchbaseStore {
	return &CouchbaseStore{client: client}
}

func (s *CouchbaseStore) selectStatement(where string, limit bool) string {
	stmt := fmt.Sprintf("SELECT RAW p FROM %s AS p WHERE META(p).id LIKE $prefix", s.client.Keyspace())
	if where != "" {
		stmt += " AND (" + where + ")"
	}
	stmt += " ORDER BY META(p).id"
	if limit {
		stmt += " LIMIT 1"
	}
	return stmt
}

// FindAll returns every patient document ordered by key
func (s *CouchbaseStore) FindAll(ctx context.Context) ([]Record, error) {
	rows, err := s.client.QueryDocuments(ctx, s.selectStatement("", false), map[string]interface{}{
		"prefix": KeyPrefix + "%",
	})
	if err != nil {
		return nil, fmt.Errorf("find all patients: %w", err)
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, Record(row))
	}
	return out, nil
}

// FindByID returns the first patient document whose patient_id equals id
func (s *CouchbaseStore) FindByID(ctx context.Context, id string) (Record, error) {
	return s.findOne(ctx, "p.patient_id = $id", map[string]interface{}{"id": id})
}

// FindByCondition returns the first document whose nested or flat condition matches pattern
func (s *CouchbaseStore) FindByCondition(ctx context.Context, pattern string) (Record, error) {
	_, expr, err := caseInsensitive(pattern)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx,
		"REGEXP_CONTAINS(p.diagnosis.`condition`, $pattern) OR REGEXP_CONTAINS(p.`condition`, $pattern)",
		map[string]interface{}{"pattern": expr})
}

// FindByName returns the first document whose nested or flat name matches pattern
func (s *CouchbaseStore) FindByName(ctx context.Context, pattern string) (Record, error) {
	_, expr, err := caseInsensitive(pattern)
	if err != nil {
		return nil, err
	}
	return s.findOne(ctx,
		"REGEXP_CONTAINS(p.patient.name, $pattern) OR REGEXP_CONTAINS(p.name, $pattern)",
		map[string]interface{}{"pattern": expr})
}

// Insert stores each record under a new patient:: key and stops at the first failure
func (s *CouchbaseStore) Insert(ctx context.Context, recs ...Record) (int, error) {
	for i, r := range recs {
		key, err := uuid.NewV7()
		if err != nil {
			return i, fmt.Errorf("generate document key: %w", err)
		}
		docID := KeyPrefix + key.String()
		if err := s.client.InsertDocument(ctx, docID, map[string]interface{}(r)); err != nil {
			return i, fmt.Errorf("insert patient %d of %d: %w", i+1, len(recs), err)
		}
		log.Debug().Str("doc_id", docID).Msg("Patient document stored")
	}
	return len(recs), nil
}

func (s *CouchbaseStore) findOne(ctx context.Context, where string, params map[string]interface{}) (Record, error) {
	params["prefix"] = KeyPrefix + "%"
	rows, err := s.client.QueryDocuments(ctx, s.selectStatement(where, true), params)
	if err != nil {
		return nil, fmt.Errorf("find patient: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return Record(rows[0]), nil
}
