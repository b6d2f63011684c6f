package blood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covaid/covaid-backend/internal/validation"
)

func TestCompatibleDonors_Table(t *testing.T) {
	tests := []struct {
		receiver BloodType
		want     []int
	}{
		{APositive, []int{0, 1, 2, 3}},
		{ANegative, []int{1, 3}},
		{OPositive, []int{2, 3}},
		{ONegative, []int{3}},
		{BPositive, []int{4, 5, 2, 3}},
		{BNegative, []int{5, 3}},
		{ABPositive, []int{0, 1, 2, 3, 4, 5, 6, 7}},
		{ABNegative, []int{7, 1, 5, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.receiver.String(), func(t *testing.T) {
			got, err := CompatibleDonors(tt.receiver)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestCompatibleDonors_Invariants(t *testing.T) {
	for code := APositive; code <= ABNegative; code++ {
		donors, err := CompatibleDonors(code)
		require.NoError(t, err)
		assert.Contains(t, donors, int(code), "%s must accept its own group", code)
		assert.Contains(t, donors, int(ONegative), "%s must accept O-", code)
	}
}

func TestCompatibleDonors_UnknownCode(t *testing.T) {
	for _, code := range []BloodType{-1, 8} {
		_, err := CompatibleDonors(code)
		require.Error(t, err)
		assert.True(t, validation.IsValidation(err))
	}
}

func TestParseBloodType(t *testing.T) {
	got, err := ParseBloodType("AB-")
	require.NoError(t, err)
	assert.Equal(t, ABNegative, got)
	assert.Equal(t, "O-", ONegative.String())
	assert.Equal(t, "unknown", BloodType(9).String())

	_, err = ParseBloodType("C+")
	assert.True(t, validation.IsValidation(err))
}
