package couchbase

import (
	"context"
	"time"
)

// Client bundles the connection, document and lock managers for one collection
type Client struct {
	connManager *ConnectionManager
	docManager  *DocumentManager
	locker      *DatabaseLocker
}

// NewClient creates a new Couchbase client
func NewClient(opts Options) (*Client, error) {
	connManager, err := NewConnectionManager(opts)
	if err != nil {
		return nil, err
	}

	return &Client{
		connManager: connManager,
		docManager:  NewDocumentManager(connManager.GetCluster(), connManager.GetCollection()),
		locker:      NewDatabaseLocker(connManager.GetCollection(), time.Hour),
	}, nil
}

// Close closes the Couchbase connection
func (c *Client) Close() error {
	return c.connManager.Close()
}

// GetLocker returns the database locker
func (c *Client) GetLocker() *DatabaseLocker {
	return c.locker
}

// Keyspace returns the escaped keyspace of the patient collection
func (c *Client) Keyspace() string {
	return c.connManager.Keyspace()
}

// InsertDocument stores a new document under docID
func (c *Client) InsertDocument(ctx context.Context, docID string, data interface{}) error {
	return c.docManager.InsertDocument(ctx, docID, data)
}

// QueryDocuments runs a parameterised N1QL statement
func (c *Client) QueryDocuments(ctx context.Context, statement string, params map[string]interface{}) ([]map[string]interface{}, error) {
	return c.docManager.QueryDocuments(ctx, statement, params)
}

// EnsurePrimaryIndex makes ad-hoc N1QL over the collection possible
func (c *Client) EnsurePrimaryIndex(ctx context.Context) error {
	return c.docManager.EnsurePrimaryIndex(ctx)
}
