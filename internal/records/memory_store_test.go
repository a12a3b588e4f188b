package records

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore() *MemoryStore {
	return NewMemoryStore(
		Record{
			"patient_id": "P001",
			"patient":    map[string]interface{}{"name": "Alice Johnson"},
			"diagnosis":  map[string]interface{}{"condition": "Breast Cancer"},
		},
		Record{
			"patient_id": "P002",
			"name":       "Bob Smith",
			"condition":  "Lung Cancer",
		},
		Record{
			"patient_id": "P003",
			"name":       "Alice Cooper",
		},
	)
}

func TestMemoryStoreFindByID(t *testing.T) {
	ctx := context.Background()
	s := seededStore()

	rec, err := s.FindByID(ctx, "P002")
	require.NoError(t, err)
	assert.Equal(t, "Bob Smith", rec.DisplayName(""))

	_, err = s.FindByID(ctx, "p002")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreFindByName(t *testing.T) {
	ctx := context.Background()
	s := seededStore()

	tests := []struct {
		pattern string
		wantID  string
		wantErr error
	}{
		{pattern: "alice", wantID: "P001"},
		{pattern: "SMITH", wantID: "P002"},
		{pattern: "coop", wantID: "P003"},
		{pattern: "zed", wantErr: ErrNotFound},
		{pattern: "", wantID: "P001"},
		{pattern: "(unclosed", wantErr: ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			rec, err := s.FindByName(ctx, tt.pattern)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, rec.PatientID())
		})
	}
}

func TestMemoryStoreFindByCondition(t *testing.T) {
	ctx := context.Background()
	s := seededStore()

	rec, err := s.FindByCondition(ctx, "breast cancer")
	require.NoError(t, err)
	assert.Equal(t, "P001", rec.PatientID())

	rec, err = s.FindByCondition(ctx, "lung cancer")
	require.NoError(t, err)
	assert.Equal(t, "P002", rec.PatientID())

	_, err = s.FindByCondition(ctx, "skin cancer")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreInsertAppendsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec := Record{"patient_id": "P100", "name": "Dana"}
	n, err := s.Insert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Insert(ctx, rec)
	require.NoError(t, err)

	all, err := s.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, all[0], all[1])
}

func TestMemoryStoreFindAllEmpty(t *testing.T) {
	all, err := NewMemoryStore().FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
