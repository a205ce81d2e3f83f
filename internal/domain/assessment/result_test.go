package assessment

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultsEnvelope_Decode(t *testing.T) {
	body := `{"tests":[
		{"_id":"t1","testType":"PHQ-9","score":12,"severity":"Moderate","createdAt":"2025-02-01T08:00:00Z"},
		{"id":7,"testType":"GAD-7","score":3.5,"severity":"low"}
	]}`

	var env ResultsEnvelope
	require.NoError(t, json.Unmarshal([]byte(body), &env))
	require.Len(t, env.Tests, 2)

	assert.Equal(t, "t1", env.Tests[0].ID)
	assert.Equal(t, SeverityModerate, env.Tests[0].Severity.Normalized())
	assert.Equal(t, 2025, env.Tests[0].CreatedAt.Year())

	assert.Equal(t, "7", env.Tests[1].ID)
	assert.InDelta(t, 3.5, env.Tests[1].Score, 0.0001)
	assert.True(t, env.Tests[1].CreatedAt.IsZero())
}

func TestResultsEnvelope_MissingTests(t *testing.T) {
	var env ResultsEnvelope
	require.NoError(t, json.Unmarshal([]byte(`{}`), &env))
	assert.Empty(t, env.Tests)
}
