package snapshot_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/facets/pkg/facets/snapshot"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	doc := []byte(`{"t":"Object","i":0,"v":[["n",{"t":"number","v":1}]]}`)
	s := snapshot.New("owner-1", "state", doc)
	assert.Equal(t, snapshot.Version, s.Version)

	data, err := s.Marshal()
	require.NoError(t, err)

	back, err := snapshot.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", back.OwnerID)
	assert.Equal(t, "state", back.Name)
	assert.JSONEq(t, string(doc), string(back.Document))
	assert.True(t, s.Timestamp.Equal(back.Timestamp))
}

func TestUnmarshal_Errors(t *testing.T) {
	_, err := snapshot.Unmarshal([]byte(`{not json`))
	assert.ErrorContains(t, err, "parse snapshot")

	_, err = snapshot.Unmarshal([]byte(`{"version": 99, "document": null}`))
	assert.ErrorIs(t, err, snapshot.ErrUnsupportedVersion)
}

func TestSnapshot_ExportYAML(t *testing.T) {
	s := snapshot.New("owner-1", "state", []byte(`{"t":"string","v":"hi"}`))

	out, err := s.ExportYAML()
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(out, &parsed))
	assert.Equal(t, 1, parsed["version"])
	assert.Equal(t, "owner-1", parsed["owner_id"])
	assert.Equal(t, map[string]any{"t": "string", "v": "hi"}, parsed["document"])

	s.Document = []byte(`{broken`)
	_, err = s.ExportYAML()
	assert.ErrorContains(t, err, "parse document")
}
