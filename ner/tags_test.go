package ner

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		label string
		want  IOTag
	}{
		{"Vaccine", Vaccine},
		{"vaccine", Vaccine},
		{"STRAIN", Strain},
		{"VaccineFunder", VaccineFunder},
		{" vaccinefunder ", VaccineFunder},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseEntityType(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, label := range []string{"", "Chemical", "Vaccine Funder", "vaccines"} {
		_, err := ParseEntityType(label)
		assert.True(t, errors.Is(err, ErrUnknownEntityType), "label %q", label)
	}
}

func TestTagNames(t *testing.T) {
	assert.Equal(t, "strain", Strain.String())
	assert.Equal(t, "IOTag(7)", IOTag(7).String())
	assert.Equal(t, "B-funder", BFunder.String())
	assert.Equal(t, "BIOTag(-1)", BIOTag(-1).String())
	assert.Len(t, BIOTagNames, int(IFunder)+1)
	assert.True(t, IStrain.IsInside())
	assert.False(t, BStrain.IsInside())
	assert.False(t, O.IsInside())
}
