package promo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_LifetimeCode(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{name: "exact lowercase", code: "freshmanfriday"},
		{name: "mixed case", code: "FreshmanFriday"},
		{name: "surrounding whitespace", code: " freshmanfriday "},
		{name: "uppercase with whitespace", code: "  FRESHMANFRIDAY\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.code)
			assert.True(t, res.Valid)
			assert.Equal(t, GrantLifetime, res.Grant)
			assert.Zero(t, res.Days)
		})
	}
}

func TestValidate_TrialCode(t *testing.T) {
	res := Validate(" CC ")
	assert.True(t, res.Valid)
	assert.Equal(t, GrantTrial, res.Grant)
	assert.Equal(t, 7, res.Days)
}

func TestValidate_UnknownCodesFailClosed(t *testing.T) {
	for _, code := range []string{"", "   ", "freshman friday", "freshmanfriday2", "ccx", "random", "premium"} {
		res := Validate(code)
		assert.False(t, res.Valid, "code %q must be rejected", code)
		assert.Empty(t, res.Grant)
	}
}
