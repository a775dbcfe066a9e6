package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

type BasicDetails struct {
	Education       []string `json:"education,omitempty" validate:"omitempty,dive,oneof='Associate’s degree' 'Autodidactic in Specialized Area' 'Bachelor’s degree' 'Doctoral degree' 'High school' 'Master’s degree' 'Middle school' 'Some college'"`
	LanguagesSpoken []string `json:"languagesSpoken,omitempty" validate:"omitempty,dive,oneof='Egyptian Arabic' English French 'Haitian Creole' Italian Jamaican/Patois/Patwa Japanese Korean 'Mandarin Chinese' Other Russian Spanish Vietnamese"`
	Keywords        []string `json:"keywords,omitempty" validate:"omitempty,dive,max=64"`
	ZipCode         string   `json:"zipCode,omitempty" validate:"omitempty,max=16"`
}

type Entertainment struct {
	MusicGenres []string `json:"musicGenres,omitempty" validate:"omitempty,dive,oneof=Blues Classical EDM Electronic/Dance Folk Funk Gospel Hip-hop/Rap House Jazz Latin Metal Pop Punk R&B Reggae Rock Soul Techno"`
	MovieGenres []string `json:"movieGenres,omitempty" validate:"omitempty,dive,oneof=Action Adventure Animation Biographical Comedy Crime Documentary Drama Family Fantasy Historical Horror 'Martial Arts' Musical Mystery Romance 'Science Fiction' Sports Spy/Espionage Superhero Supernatural/Paranormal Thriller War Western"`
}

type Household struct {
	ResidingStatus []string `json:"residingStatus,omitempty" validate:"omitempty,dive,oneof=Buying Renting Owned Contributing 'Temp stay'"`
	AdultsInHouse  []string `json:"adultsInHouse,omitempty" validate:"omitempty,dive,oneof='Live alone' 'Live with adult(s)' Roommate 'Taking care of Parent(s)'"`
	NumAdults      int      `json:"numAdults,omitempty" validate:"gte=0,lte=50"`
	Children       []string `json:"children,omitempty" validate:"omitempty,dive,oneof='No children' 'Have infant(s)' 'Have pre-teen(s)' 'Have teenager(s)' 'Have grown children'"`
	NumChildren    int      `json:"numChildren,omitempty" validate:"gte=0,lte=50"`
	IndoorPets     []string `json:"indoorPets,omitempty" validate:"omitempty,dive,oneof=None 'Have dog(s)' 'Have cat(s)' 'Have bird(s)' 'Have reptile(s)' 'Have rodent(s)'"`
}

type HumanDesign struct {
	Gender            []string `json:"gender,omitempty" validate:"omitempty,dive,oneof='Natural Male' 'Natural Female' 'Trans Female' 'Trans Male'"`
	Race              []string `json:"race,omitempty" validate:"omitempty,dive,oneof=African/Black Asian Caucasian/White Hispanic/Latino Mixed/Multiracial 'Native American/Indigenous' Other 'Pacific Islander'"`
	SkinTone          []string `json:"skinTone,omitempty" validate:"omitempty,dive,max=64"`
	Age               int      `json:"age,omitempty" validate:"omitempty,gte=18,lte=120"`
	Height            int      `json:"height,omitempty" validate:"gte=0,lte=300"`
	Weight            int      `json:"weight,omitempty" validate:"gte=0,lte=700"`
	BodyType          []string `json:"bodyType,omitempty" validate:"omitempty,dive,oneof=Slim Overweight Curvy Athletic Muscular Average"`
	SexualOrientation []string `json:"sexualOrientation,omitempty" validate:"omitempty,dive,oneof=Straight Gay Lesbian Bisexual Pansexual Asexual Sapiosexual"`
}

type RelationshipAndHealth struct {
	RelationshipStatus []string `json:"relationshipStatus,omitempty" validate:"omitempty,dive,oneof=Single Poly Married Divorced Widowed Separated"`
	RelationshipGoals  []string `json:"relationshipGoals,omitempty" validate:"omitempty,dive,oneof='Casual Dating' Polyamory Marriage Friendship 'Monogamous Relationship' 'Friends with Benefits' 'Long-term Relationship' 'Experimental Relationship' Hook-ups 'Networking Opportunities' 'Open Relationship'"`
	AlcoholUse         string   `json:"alcoholUse,omitempty" validate:"omitempty,oneof='No Alcohol use' 'Alcohol occasionally' 'Alcohol rarely' 'Alcohol at least 3 times weekly'"`
	CannabisUse        string   `json:"cannabisUse,omitempty" validate:"omitempty,oneof='No CBD use' 'CBD products occasionally' 'CBD rarely' 'CBD at least 3 times weekly' 'CBD medically'"`
	OtherDrugUse       string   `json:"otherDrugUse,omitempty" validate:"omitempty,oneof='No Other Drug use' 'Other Drug use occasionally' 'Other Drug use rarely' 'Other Drug use at least 3 times weekly'"`
}

// FilterSections is the request shape for creating or updating a profile.
// A nil section leaves the stored section untouched on update.
type FilterSections struct {
	BasicDetails          *BasicDetails          `json:"basicDetails,omitempty"`
	Entertainment         *Entertainment         `json:"entertainment,omitempty"`
	Household             *Household             `json:"household,omitempty"`
	HumanDesign           *HumanDesign           `json:"humanDesign,omitempty"`
	RelationshipAndHealth *RelationshipAndHealth `json:"relationshipAndHealth,omitempty"`
}

var validate = validator.New()

func (s *FilterSections) Validate() error {
	if err := validate.Struct(s); err != nil {
		return NewInvalidInputError(err.Error())
	}
	return nil
}

// ProfileFilter holds a user's categorical attributes. It is used both as the
// user's own profile and as the criteria when searching for others.
type ProfileFilter struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`

	BasicDetails          datatypes.JSONType[BasicDetails]          `json:"basicDetails"`
	Entertainment         datatypes.JSONType[Entertainment]         `json:"entertainment"`
	Household             datatypes.JSONType[Household]             `json:"household"`
	HumanDesign           datatypes.JSONType[HumanDesign]           `json:"humanDesign"`
	RelationshipAndHealth datatypes.JSONType[RelationshipAndHealth] `json:"relationshipAndHealth"`

	ProfilePicture *string                     `json:"profilePicture,omitempty"`
	AudioBio       *string                     `json:"audioBio,omitempty"`
	GalleryPics    datatypes.JSONSlice[string] `json:"galleryPics,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Apply copies every non-nil section of s onto f.
func (f *ProfileFilter) Apply(s FilterSections) {
	if s.BasicDetails != nil {
		f.BasicDetails = datatypes.NewJSONType(*s.BasicDetails)
	}
	if s.Entertainment != nil {
		f.Entertainment = datatypes.NewJSONType(*s.Entertainment)
	}
	if s.Household != nil {
		f.Household = datatypes.NewJSONType(*s.Household)
	}
	if s.HumanDesign != nil {
		f.HumanDesign = datatypes.NewJSONType(*s.HumanDesign)
	}
	if s.RelationshipAndHealth != nil {
		f.RelationshipAndHealth = datatypes.NewJSONType(*s.RelationshipAndHealth)
	}
}

// NewProfileFilter builds a filter for userID from the given sections.
func NewProfileFilter(userID uint, s FilterSections) *ProfileFilter {
	f := &ProfileFilter{UserID: userID}
	f.Apply(s)
	return f
}
