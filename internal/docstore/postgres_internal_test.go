package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONField_MatchesIndexExpression(t *testing.T) {
	// Must stay textually equal to the expressions indexed in
	// internal/db/migrations, or the planner falls back to a scan.
	assert.Equal(t, "data->>'owner'", jsonField("owner"))
	assert.Equal(t, "data->>'blob_name'", jsonField("blob_name"))
	assert.Equal(t, "data->>'metadata_blob'", jsonField("metadata_blob"))
}

func TestValidateFilters_RejectsUnsafeFieldNames(t *testing.T) {
	for _, field := range []string{"", "owner'; DROP TABLE documents; --", "a-b", "1owner"} {
		assert.Error(t, validateFilters([]Filter{Eq(field, "x")}), field)
	}
	assert.NoError(t, validateFilters([]Filter{Eq("blob_name", "x")}))
}
