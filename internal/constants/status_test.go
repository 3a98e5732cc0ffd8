package constants

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_String(t *testing.T) {
	assert.Equal(t, []string{"plan", "design", "code", "test", "postmortem"}, func() []string {
		out := make([]string, 0, len(Stages()))
		for _, s := range Stages() {
			out = append(out, s.String())
		}
		return out
	}())
}

func TestVerdict_String(t *testing.T) {
	tests := []struct {
		verdict  Verdict
		expected string
	}{
		{VerdictPass, "PASS"},
		{VerdictNeedsImprovement, "NEEDS_IMPROVEMENT"},
		{VerdictConditionalPass, "CONDITIONAL_PASS"},
		{VerdictFail, "FAIL"},
		{VerdictNeedsReview, "NEEDS_REVIEW"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.verdict.String())
		})
	}
}

func TestVerdict_IsBlocking(t *testing.T) {
	assert.True(t, VerdictFail.IsBlocking())
	assert.False(t, VerdictPass.IsBlocking())
	assert.False(t, VerdictNeedsImprovement.IsBlocking())
	assert.False(t, VerdictConditionalPass.IsBlocking())
}

func TestVerdict_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(struct {
		V Verdict `json:"v"`
	}{VerdictConditionalPass})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":"CONDITIONAL_PASS"}`, string(data))
}

func TestBudgets(t *testing.T) {
	assert.Equal(t, 3, DesignMaxIterations)
	assert.Equal(t, 3, CodeMaxIterations)
	assert.Equal(t, 2, TestMaxRetries)
	assert.Equal(t, 3, FileMaxAttempts)
	assert.Equal(t, 5, CodeHighIssueThreshold)
	assert.Less(t, MinFileTokens, MaxFileTokens)
}
