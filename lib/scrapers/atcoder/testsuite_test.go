package atcoder

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSuiteJSON(t *testing.T) {
	suite := SimpleSuite(2*time.Second, []Sample{
		{Input: "1 2\n", Output: "3\n"},
	})

	data, err := json.Marshal(suite)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"type": "simple",
		"timelimit": "2s",
		"cases": [{"in": "1 2\n", "out": "3\n"}]
	}`, string(data))

	var decoded TestSuite
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, suite, decoded)
}

func TestSuiteJSONOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(UnsubmittableSuite())
	require.NoError(t, err)
	require.JSONEq(t, `{"type": "unsubmittable"}`, string(data))

	var decoded TestSuite
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, UnsubmittableSuite(), decoded)
}
