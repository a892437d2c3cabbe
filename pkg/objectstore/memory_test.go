package objectstore

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBucketRoundTrip(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBucket()

	require.NoError(t, b.Put(ctx, "survey_platform/Student/alice.json", bytes.NewBufferString(`{"a":1}`), 7, "application/json"))
	require.NoError(t, b.Put(ctx, "survey_platform/Employer/acme.json", bytes.NewBufferString(`{}`), 2, "application/json"))

	data, err := b.Get(ctx, "survey_platform/Student/alice.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))
	assert.Equal(t, "application/json", b.ContentType("survey_platform/Student/alice.json"))

	keys, err := b.List(ctx, "survey_platform/Student/")
	require.NoError(t, err)
	assert.Equal(t, []string{"survey_platform/Student/alice.json"}, keys)

	require.NoError(t, b.Remove(ctx, "survey_platform/Student/alice.json"))
	_, err = b.Get(ctx, "survey_platform/Student/alice.json")
	assert.True(t, errors.Is(err, ErrObjectNotFound))
}
