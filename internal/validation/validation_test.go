package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	MobileNumber string   `validate:"required,numeric,min=6,max=15"`
	Name         string   `validate:"notblank"`
	Latitude     *float64 `validate:"required,latitude"`
	BloodType    int      `validate:"min=0,max=7"`
}

func ptr(f float64) *float64 { return &f }

func TestValidate(t *testing.T) {
	valid := sample{MobileNumber: "9876543210", Name: "Asha", Latitude: ptr(0), BloodType: 3}

	tests := []struct {
		name    string
		mutate  func(s *sample)
		wantMsg string
	}{
		{"valid", func(s *sample) {}, ""},
		{"missing mobile", func(s *sample) { s.MobileNumber = "" }, "mobileNumber is required"},
		{"letters in mobile", func(s *sample) { s.MobileNumber = "98765abc" }, "mobileNumber must contain only digits"},
		{"blank name", func(s *sample) { s.Name = "   " }, "name is required"},
		{"missing latitude", func(s *sample) { s.Latitude = nil }, "latitude is required"},
		{"latitude out of range", func(s *sample) { s.Latitude = ptr(91) }, "latitude must be a latitude between -90 and 90"},
		{"blood type too large", func(s *sample) { s.BloodType = 8 }, "bloodType must be at most 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := Validate(&s)
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestIsValidation_Wrapped(t *testing.T) {
	err := fmt.Errorf("entry: %w", Errorf("bad %s", "input"))
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(errors.New("boom")))
}
