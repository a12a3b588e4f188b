package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stealthcompany.com/oncoaide/internal/couchbase"
)

type fakeTarget struct {
	indexErr error
	inserted []string
}

func (f *fakeTarget) Keyspace() string { return "`onco_db`.`_default`.`patients`" }

func (f *fakeTarget) InsertDocument(ctx context.Context, docID string, data interface{}) error {
	f.inserted = append(f.inserted, docID)
	return nil
}

func (f *fakeTarget) QueryDocuments(ctx context.Context, statement string, params map[string]interface{}) ([]map[string]interface{}, error) {
	return nil, nil
}

func (f *fakeTarget) EnsurePrimaryIndex(ctx context.Context) error { return f.indexErr }

type fakeLocker struct {
	lockErr  error
	locked   bool
	unlocked bool
}

func (l *fakeLocker) Lock(ctx context.Context, owner string) error {
	if l.lockErr != nil {
		return l.lockErr
	}
	l.locked = true
	return nil
}

func (l *fakeLocker) Unlock(ctx context.Context) error {
	l.unlocked = true
	return nil
}

func seedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patient.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRunSeedsUnderLock(t *testing.T) {
	target := &fakeTarget{}
	locker := &fakeLocker{}

	err := run(context.Background(), target, locker, seedFile(t, `[{"patient_id": "1"}, {"patient_id": "2"}]`))
	require.NoError(t, err)
	assert.Len(t, target.inserted, 2)
	assert.True(t, locker.locked)
	assert.True(t, locker.unlocked)
}

func TestRunReturnsErrors(t *testing.T) {
	tests := []struct {
		name         string
		target       *fakeTarget
		locker       *fakeLocker
		content      string
		errContains  string
		wantUnlocked bool
	}{
		{
			name:        "index failure",
			target:      &fakeTarget{indexErr: errors.New("query service down")},
			locker:      &fakeLocker{},
			content:     `{"patient_id": "1"}`,
			errContains: "query service down",
		},
		{
			name:        "lock failure",
			target:      &fakeTarget{},
			locker:      &fakeLocker{lockErr: errors.New("timeout")},
			content:     `{"patient_id": "1"}`,
			errContains: "lock database",
		},
		{
			name:         "malformed seed still unlocks",
			target:       &fakeTarget{},
			locker:       &fakeLocker{},
			content:      `{"patient_id": `,
			errContains:  "seed load",
			wantUnlocked: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(context.Background(), tt.target, tt.locker, seedFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Equal(t, tt.wantUnlocked, tt.locker.unlocked)
			assert.Empty(t, tt.target.inserted)
		})
	}
}

func TestRunSkipsWhenLockedElsewhere(t *testing.T) {
	target := &fakeTarget{}
	locker := &fakeLocker{lockErr: couchbase.ErrLocked}

	err := run(context.Background(), target, locker, seedFile(t, `{"patient_id": "1"}`))
	require.NoError(t, err)
	assert.Empty(t, target.inserted)
	assert.False(t, locker.unlocked)
}
