package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/domain"
)

func TestActivityFieldsValidate(t *testing.T) {
	tests := []struct {
		name    string
		fields  domain.ActivityFields
		wantErr bool
	}{
		{"empty", domain.ActivityFields{}, true},
		{"steps only", domain.ActivityFields{Steps: domain.Inc(100)}, false},
		{"zero sleep is present", domain.ActivityFields{Sleep: domain.Set(0)}, false},
		{"negative steps", domain.ActivityFields{Steps: domain.Inc(-1)}, true},
		{"negative sleep", domain.ActivityFields{Sleep: domain.Set(-0.5)}, true},
		{"negative cardio", domain.ActivityFields{CardioPoints: domain.Inc(-3)}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fields.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDailyActivityApply(t *testing.T) {
	var a domain.DailyActivity
	a.Apply(domain.ActivityFields{Steps: domain.Inc(400), Sleep: domain.Set(7)})
	a.Apply(domain.ActivityFields{Steps: domain.Inc(700), CardioPoints: domain.Inc(12)})
	a.Apply(domain.ActivityFields{Sleep: domain.Set(6.5), CardioPoints: domain.Inc(3)})

	assert.EqualValues(t, 1100, a.Steps)
	assert.EqualValues(t, 15, a.CardioPoints)
	require.NotNil(t, a.Sleep)
	assert.InDelta(t, 6.5, *a.Sleep, 1e-9)
}
