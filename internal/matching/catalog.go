// Package matching scores profile filters against each other and ranks
// candidate users for a search.
package matching

import (
	"sort"
	"strconv"

	"dating-match-server/internal/models"
)

// Kind tells the scorer how to compare a field.
type Kind int

const (
	Scalar Kind = iota
	Set
)

// field describes one comparable attribute. Exactly one accessor is set,
// matching kind.
type field struct {
	kind   Kind
	scalar func(f *models.ProfileFilter) string
	set    func(f *models.ProfileFilter) []string
}

func number(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func setField(get func(f *models.ProfileFilter) []string) field {
	return field{kind: Set, set: get}
}

func scalarField(get func(f *models.ProfileFilter) string) field {
	return field{kind: Scalar, scalar: get}
}

// catalog lists every section and field a search may compare.
var catalog = map[string]map[string]field{
	"basicDetails": {
		"education":       setField(func(f *models.ProfileFilter) []string { return f.BasicDetails.Data().Education }),
		"languagesSpoken": setField(func(f *models.ProfileFilter) []string { return f.BasicDetails.Data().LanguagesSpoken }),
		"keywords":        setField(func(f *models.ProfileFilter) []string { return f.BasicDetails.Data().Keywords }),
		"zipCode":         scalarField(func(f *models.ProfileFilter) string { return f.BasicDetails.Data().ZipCode }),
	},
	"entertainment": {
		"musicGenres": setField(func(f *models.ProfileFilter) []string { return f.Entertainment.Data().MusicGenres }),
		"movieGenres": setField(func(f *models.ProfileFilter) []string { return f.Entertainment.Data().MovieGenres }),
	},
	"household": {
		"residingStatus": setField(func(f *models.ProfileFilter) []string { return f.Household.Data().ResidingStatus }),
		"adultsInHouse":  setField(func(f *models.ProfileFilter) []string { return f.Household.Data().AdultsInHouse }),
		"numAdults":      scalarField(func(f *models.ProfileFilter) string { return number(f.Household.Data().NumAdults) }),
		"children":       setField(func(f *models.ProfileFilter) []string { return f.Household.Data().Children }),
		"numChildren":    scalarField(func(f *models.ProfileFilter) string { return number(f.Household.Data().NumChildren) }),
		"indoorPets":     setField(func(f *models.ProfileFilter) []string { return f.Household.Data().IndoorPets }),
	},
	"humanDesign": {
		"gender":            setField(func(f *models.ProfileFilter) []string { return f.HumanDesign.Data().Gender }),
		"race":              setField(func(f *models.ProfileFilter) []string { return f.HumanDesign.Data().Race }),
		"skinTone":          setField(func(f *models.ProfileFilter) []string { return f.HumanDesign.Data().SkinTone }),
		"age":               scalarField(func(f *models.ProfileFilter) string { return number(f.HumanDesign.Data().Age) }),
		"height":            scalarField(func(f *models.ProfileFilter) string { return number(f.HumanDesign.Data().Height) }),
		"weight":            scalarField(func(f *models.ProfileFilter) string { return number(f.HumanDesign.Data().Weight) }),
		"bodyType":          setField(func(f *models.ProfileFilter) []string { return f.HumanDesign.Data().BodyType }),
		"sexualOrientation": setField(func(f *models.ProfileFilter) []string { return f.HumanDesign.Data().SexualOrientation }),
	},
	"relationshipAndHealth": {
		"relationshipStatus": setField(func(f *models.ProfileFilter) []string { return f.RelationshipAndHealth.Data().RelationshipStatus }),
		"relationshipGoals":  setField(func(f *models.ProfileFilter) []string { return f.RelationshipAndHealth.Data().RelationshipGoals }),
		"alcoholUse":         scalarField(func(f *models.ProfileFilter) string { return f.RelationshipAndHealth.Data().AlcoholUse }),
		"cannabisUse":        scalarField(func(f *models.ProfileFilter) string { return f.RelationshipAndHealth.Data().CannabisUse }),
		"otherDrugUse":       scalarField(func(f *models.ProfileFilter) string { return f.RelationshipAndHealth.Data().OtherDrugUse }),
	},
}

// Sections returns the searchable section names in sorted order.
func Sections() []string {
	out := make([]string, 0, len(catalog))
	for name := range catalog {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Fields returns the field names of a section in sorted order, or nil if the
// section is unknown.
func Fields(section string) []string {
	fields, ok := catalog[section]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(fields))
	for name := range fields {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// KindOf reports the comparison kind of section.name.
func KindOf(section, name string) (Kind, bool) {
	f, ok := catalog[section][name]
	return f.kind, ok
}
