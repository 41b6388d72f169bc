package ner

// begin maps an IO tag to the tag used where its entity starts.
//
// Vaccine maps to itself, which is BVaccine: Strain and VaccineFunder need to be shifted up.
func begin(tag IOTag) BIOTag {
	switch tag {
	case Strain:
		return BStrain
	case VaccineFunder:
		return BFunder
	}
	return BIOTag(tag)
}

// inside maps an IO tag to the tag used where its entity continues.
func inside(tag IOTag) BIOTag {
	switch tag {
	case Vaccine:
		return IVaccine
	case Strain:
		return IStrain
	case VaccineFunder:
		return IFunder
	}
	return O
}

// ToBIO derives BIO tags from IO tags in a single left-to-right pass.
//
// A token with the same entity class as the previous one is tagged Inside, otherwise it begins a
// new entity. Adjacent entities of the same class therefore merge into one, since IO tags can't
// tell them apart.
func ToBIO(io []IOTag) []BIOTag {
	bio := make([]BIOTag, len(io))
	for i, tag := range io {
		switch {
		case tag == Outside:
			bio[i] = O
		case i > 0 && tag == io[i-1]:
			bio[i] = inside(tag)
		default:
			bio[i] = begin(tag)
		}
	}
	return bio
}
