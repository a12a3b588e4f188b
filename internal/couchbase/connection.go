package couchbase

import (
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"
)

// Options identifies the cluster and the keyspace patient documents live in
type Options struct {
	URL        string
	Username   string
	Password   string
	Bucket     string
	Scope      string
	Collection string
}

// ConnectionManager handles Couchbase cluster, bucket and collection handles
type ConnectionManager struct {
	cluster    *gocb.Cluster
	bucket     *gocb.Bucket
	collection *gocb.Collection
	opts       Options
}

// NewConnectionManager connects to the cluster and waits for the bucket to serve KV and query traffic
func NewConnectionManager(opts Options) (*ConnectionManager, error) {
	log.Info().
		Str("url", opts.URL).
		Str("bucket", opts.Bucket).
		Str("scope", opts.Scope).
		Str("collection", opts.Collection).
		Msg("Creating Couchbase connection")

	cluster, err := gocb.Connect(opts.URL, gocb.ClusterOptions{
		Authenticator: gocb.PasswordAuthenticator{
			Username: opts.Username,
			Password: opts.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect cluster: %w", err)
	}

	bucket := cluster.Bucket(opts.Bucket)
	err = bucket.WaitUntilReady(30*time.Second, &gocb.WaitUntilReadyOptions{
		ServiceTypes: []gocb.ServiceType{gocb.ServiceTypeKeyValue, gocb.ServiceTypeQuery},
	})
	if err != nil {
		_ = cluster.Close(nil)
		return nil, fmt.Errorf("bucket %q not ready: %w", opts.Bucket, err)
	}

	log.Info().Msg("Couchbase connection created successfully")
	return &ConnectionManager{
		cluster:    cluster,
		bucket:     bucket,
		collection: bucket.Scope(opts.Scope).Collection(opts.Collection),
		opts:       opts,
	}, nil
}

// Close closes the Couchbase connection
func (cm *ConnectionManager) Close() error {
	return cm.cluster.Close(nil)
}

// GetCluster returns the cluster instance
func (cm *ConnectionManager) GetCluster() *gocb.Cluster {
	return cm.cluster
}

// GetCollection returns the patient collection
func (cm *ConnectionManager) GetCollection() *gocb.Collection {
	return cm.collection
}

// Keyspace returns the fully qualified N1QL keyspace of the patient collection
func (cm *ConnectionManager) Keyspace() string {
	return Keyspace(cm.opts.Bucket, cm.opts.Scope, cm.opts.Collection)
}

// Keyspace formats bucket, scope and collection as an escaped N1QL path
func Keyspace(bucket, scope, collection string) string {
	return fmt.Sprintf("`%s`.`%s`.`%s`", bucket, scope, collection)
}
