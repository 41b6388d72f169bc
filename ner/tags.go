// Package ner turns character-span entity annotations into per-token labels.
//
// A Segmenter splits multi-word mentions into one Annotation per word, an Aligner maps the
// annotations onto the tokens of the document by exact span equality, producing IO tags, and ToBIO
// derives the Begin/Inside/Outside tags from them.
package ner

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownEntityType is wrapped by alignment errors on type labels that are not recognized,
// when UnknownFail is used.
var ErrUnknownEntityType = errors.New("unknown entity type")

// IOTag is the entity class of a token, without begin/inside distinction.
type IOTag int

const (
	// Outside marks a token that is not part of any entity.
	Outside IOTag = iota
	Vaccine
	Strain
	VaccineFunder
)

var ioTagNames = []string{"O", "vaccine", "strain", "vaccinefunder"}

// String implements fmt.Stringer.
func (t IOTag) String() string {
	if t < 0 || int(t) >= len(ioTagNames) {
		return fmt.Sprintf("IOTag(%d)", int(t))
	}
	return ioTagNames[t]
}

// ParseEntityType resolves an annotation type label, case-insensitively.
// It returns an error wrapping ErrUnknownEntityType for anything but "vaccine", "strain" and
// "vaccinefunder".
func ParseEntityType(label string) (IOTag, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "vaccine":
		return Vaccine, nil
	case "strain":
		return Strain, nil
	case "vaccinefunder":
		return VaccineFunder, nil
	}
	return Outside, errors.Wrapf(ErrUnknownEntityType, "type label %q", label)
}

// BIOTag is the Begin/Inside/Outside tag of a token.
type BIOTag int

const (
	O BIOTag = iota
	BVaccine
	IVaccine
	BStrain
	IStrain
	BFunder
	IFunder
)

// BIOTagNames lists the names of the BIO tags, indexed by tag value.
var BIOTagNames = []string{"O", "B-vaccine", "I-vaccine", "B-strain", "I-strain", "B-funder", "I-funder"}

// String implements fmt.Stringer.
func (t BIOTag) String() string {
	if t < 0 || int(t) >= len(BIOTagNames) {
		return fmt.Sprintf("BIOTag(%d)", int(t))
	}
	return BIOTagNames[t]
}

// IsInside reports whether t continues an entity started by a previous token.
func (t BIOTag) IsInside() bool {
	return t == IVaccine || t == IStrain || t == IFunder
}
