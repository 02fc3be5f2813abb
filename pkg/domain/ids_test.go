package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "signalbox/pkg/domain-errors"
)

func TestParseCaseID(t *testing.T) {
	valid := NewCaseID()

	parsed, err := ParseCaseID(valid.String())
	require.NoError(t, err)
	assert.Equal(t, valid, parsed)

	for name, raw := range map[string]string{
		"empty":    "",
		"garbage":  "not-a-uuid",
		"too long": strings.Repeat("a", 65),
		"nil uuid": "00000000-0000-0000-0000-000000000000",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCaseID(raw)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestIDsAreDistinctTypes(t *testing.T) {
	// Same underlying bytes, different types: the compiler keeps them apart,
	// and parsing yields the right type.
	tenantID, err := ParseTenantID(NewTenantID().String())
	require.NoError(t, err)
	assert.False(t, tenantID.IsNil())

	actorID, err := ParseActorID(NewActorID().String())
	require.NoError(t, err)
	assert.False(t, actorID.IsNil())
}

func TestIsNil(t *testing.T) {
	assert.True(t, TenantID{}.IsNil())
	assert.True(t, CaseID{}.IsNil())
	assert.False(t, NewTenantID().IsNil())
}

func TestJSONRoundTrip(t *testing.T) {
	original := NewCaseID()

	raw, err := json.Marshal(original)
	require.NoError(t, err)
	// Canonical UUID string form, not a byte array.
	assert.JSONEq(t, `"`+original.String()+`"`, string(raw))

	var decoded CaseID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original, decoded)

	var bad CaseID
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &bad))
}
