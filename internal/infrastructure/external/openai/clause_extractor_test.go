package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelink/claimworks/internal/application/port"
)

func TestParseExtraction(t *testing.T) {
	t.Run("plain json", func(t *testing.T) {
		result, err := parseExtraction(`{"clauses":[{"clause_ref":"14.2","title":"Time bar","body":"The Contractor shall...","risk_level":"high","page_number":3}]}`)
		require.NoError(t, err)
		require.Len(t, result.Clauses, 1)
		assert.Equal(t, "14.2", result.Clauses[0].ClauseRef)
		assert.Equal(t, "high", result.Clauses[0].RiskLevel)
	})

	t.Run("fenced json", func(t *testing.T) {
		result, err := parseExtraction("```json\n{\"clauses\":[{\"clause_ref\":\"1\",\"body\":\"x\",\"risk_level\":\"low\",\"page_number\":1}]}\n```")
		require.NoError(t, err)
		require.Len(t, result.Clauses, 1)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := parseExtraction("I could not find any clauses, sorry.")
		assert.Error(t, err)
	})
}

func TestSanitize(t *testing.T) {
	clauses := sanitize([]port.ExtractedClause{
		{ClauseRef: "1", Body: "valid", RiskLevel: "high", PageNumber: 2},
		{ClauseRef: "2", Body: "  ", RiskLevel: "low", PageNumber: 1},
		{ClauseRef: "3", Body: "odd rating", RiskLevel: "critical", PageNumber: 0},
	})

	require.Len(t, clauses, 2)
	assert.Equal(t, "high", clauses[0].RiskLevel)
	assert.Equal(t, "medium", clauses[1].RiskLevel, "unknown risk levels normalize to medium")
	assert.Equal(t, 1, clauses[1].PageNumber)
}
