package matching

import (
	"encoding/json"
	"testing"

	"dating-match-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filter(s models.FilterSections) *models.ProfileFilter {
	return models.NewProfileFilter(0, s)
}

func music(genres ...string) *models.ProfileFilter {
	return filter(models.FilterSections{Entertainment: &models.Entertainment{MusicGenres: genres}})
}

func TestScoreSharedMusicGenre(t *testing.T) {
	spec := FieldSpec{"entertainment": {"musicGenres": 1}}

	assert.Equal(t, 1, Score(music("Jazz", "Rock"), music("Jazz", "Pop"), spec))
}

func TestScoreIsCommutative(t *testing.T) {
	a := filter(models.FilterSections{
		Entertainment:         &models.Entertainment{MusicGenres: []string{"Jazz", "Rock", "Soul"}},
		RelationshipAndHealth: &models.RelationshipAndHealth{AlcoholUse: "Alcohol rarely"},
		HumanDesign:           &models.HumanDesign{Age: 30, BodyType: []string{"Athletic"}},
	})
	b := filter(models.FilterSections{
		Entertainment:         &models.Entertainment{MusicGenres: []string{"Soul", "Jazz"}},
		RelationshipAndHealth: &models.RelationshipAndHealth{AlcoholUse: "Alcohol rarely"},
		HumanDesign:           &models.HumanDesign{Age: 30, BodyType: []string{"Average"}},
	})
	spec := FieldSpec{
		"entertainment":         {"musicGenres": 1},
		"relationshipAndHealth": {"alcoholUse": 1},
		"humanDesign":           {"age": 1, "bodyType": 1},
	}

	assert.Equal(t, 4, Score(a, b, spec))
	assert.Equal(t, Score(a, b, spec), Score(b, a, spec))
}

func TestScoreIgnoresFieldsNotRequested(t *testing.T) {
	a := filter(models.FilterSections{
		Entertainment: &models.Entertainment{MusicGenres: []string{"Jazz"}, MovieGenres: []string{"Drama"}},
	})
	b := filter(models.FilterSections{
		Entertainment: &models.Entertainment{MusicGenres: []string{"Jazz"}, MovieGenres: []string{"Drama"}},
	})

	assert.Equal(t, 1, Score(a, b, FieldSpec{"entertainment": {"movieGenres": 1}}))
	assert.Equal(t, 0, Score(a, b, FieldSpec{"household": {"indoorPets": 1}}))
}

func TestScoreMissingDataIsNeutral(t *testing.T) {
	spec := FieldSpec{
		"entertainment": {"musicGenres": 1},
		"humanDesign":   {"age": 1},
	}
	withAge := filter(models.FilterSections{
		Entertainment: &models.Entertainment{MusicGenres: []string{"Jazz"}},
		HumanDesign:   &models.HumanDesign{Age: 28},
	})
	withoutAge := music("Jazz")

	// Age present on one side only equals age absent on both.
	assert.Equal(t, Score(withoutAge, withoutAge, spec), Score(withAge, withoutAge, spec))
	assert.Equal(t, 0, Score(nil, withAge, spec))
	assert.Equal(t, 0, Score(withAge, nil, spec))
	assert.Equal(t, 0, Score(music(), music("Jazz"), spec))
}

func TestScoreIsMonotonic(t *testing.T) {
	spec := FieldSpec{"entertainment": {"musicGenres": 1, "movieGenres": 1}}
	a := filter(models.FilterSections{Entertainment: &models.Entertainment{MusicGenres: []string{"Jazz"}, MovieGenres: []string{"War"}}})
	b := filter(models.FilterSections{Entertainment: &models.Entertainment{MusicGenres: []string{"Jazz"}}})
	before := Score(a, b, spec)

	more := filter(models.FilterSections{Entertainment: &models.Entertainment{MusicGenres: []string{"Jazz"}, MovieGenres: []string{"War"}}})
	assert.GreaterOrEqual(t, Score(a, more, spec), before)

	fewer := FieldSpec{"entertainment": {"movieGenres": 1}}
	assert.LessOrEqual(t, Score(a, more, fewer), Score(a, more, spec))
}

func TestScoreCountsDistinctValuesWithWeights(t *testing.T) {
	a := music("Jazz", "Jazz", "Rock")
	b := music("Jazz", "Rock", "Rock")

	assert.Equal(t, 2, Score(a, b, FieldSpec{"entertainment": {"musicGenres": 1}}))
	assert.Equal(t, 6, Score(a, b, FieldSpec{"entertainment": {"musicGenres": 3}}))
}

func TestScoreNumericScalarsIgnoreZero(t *testing.T) {
	spec := FieldSpec{"household": {"numChildren": 2}}
	zero := filter(models.FilterSections{Household: &models.Household{NumChildren: 0}})
	two := filter(models.FilterSections{Household: &models.Household{NumChildren: 2}})

	assert.Equal(t, 0, Score(zero, zero, spec))
	assert.Equal(t, 2, Score(two, two, spec))
}

func TestParseFieldSpec(t *testing.T) {
	spec, err := ParseFieldSpec(json.RawMessage(`{
		"entertainment": {"musicGenres": true, "movieGenres": false},
		"humanDesign": {"age": 3, "height": 0}
	}`))
	require.NoError(t, err)
	assert.Equal(t, FieldSpec{
		"entertainment": {"musicGenres": 1},
		"humanDesign":   {"age": 3},
	}, spec)
	assert.Equal(t, 2, spec.Len())
}

func TestParseFieldSpecAcceptsMaxWeight(t *testing.T) {
	spec, err := ParseFieldSpec(json.RawMessage(`{"entertainment": {"musicGenres": 100}}`))
	require.NoError(t, err)
	assert.Equal(t, MaxWeight, spec["entertainment"]["musicGenres"])

	a := filter(withMusic("Jazz", "Blues"))
	assert.Equal(t, 2*MaxWeight, Score(a, a, spec))
}

func TestParseFieldSpecRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"absent":          ``,
		"null":            `null`,
		"not an object":   `["entertainment"]`,
		"section scalar":  `{"entertainment": true}`,
		"unknown section": `{"astrology": {"sign": true}}`,
		"unknown field":   `{"entertainment": {"bookGenres": true}}`,
		"negative weight": `{"entertainment": {"musicGenres": -1}}`,
		"string weight":   `{"entertainment": {"musicGenres": "yes"}}`,
		"float weight":    `{"entertainment": {"musicGenres": 1.5}}`,
		"weight over cap": `{"entertainment": {"musicGenres": 101}}`,
		"huge weight":     `{"entertainment": {"musicGenres": 9223372036854775807}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFieldSpec(json.RawMessage(raw))
			require.Error(t, err)
			assert.True(t, models.IsCode(err, models.CodeInvalidInput))
		})
	}
}

func TestCatalogLookups(t *testing.T) {
	assert.Equal(t, []string{"basicDetails", "entertainment", "household", "humanDesign", "relationshipAndHealth"}, Sections())
	assert.Equal(t, []string{"movieGenres", "musicGenres"}, Fields("entertainment"))
	assert.Nil(t, Fields("astrology"))

	kind, ok := KindOf("relationshipAndHealth", "alcoholUse")
	assert.True(t, ok)
	assert.Equal(t, Scalar, kind)

	kind, ok = KindOf("household", "indoorPets")
	assert.True(t, ok)
	assert.Equal(t, Set, kind)
}
