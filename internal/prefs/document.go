package prefs

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
)

// CurrentVersion is the schema version written alongside every stored document.
const CurrentVersion = 1

var ErrInvalidDocument = errors.New("invalid preferences document")

var validate = validator.New()

// Document is the per-user preferences document. Every field is optional.
// Absent fields stay absent on encode; lists are pointers so that a posted
// empty list reads back as [] rather than disappearing.
type Document struct {
	Version             int                  `json:"version,omitempty" validate:"min=0,max=1"`
	Language            string               `json:"language,omitempty" validate:"omitempty,max=35"`
	LearningPreferences *LearningPreferences `json:"learning_preferences,omitempty"`
	Constraints         *Constraints         `json:"constraints,omitempty"`
	Background          *Background          `json:"background,omitempty"`
	Skills              *[]Skill             `json:"skills,omitempty" validate:"omitempty,dive"`
	Progresses          *[]Progress          `json:"progresses,omitempty" validate:"omitempty,dive"`
}

type LearningPreferences struct {
	PreferredLearningStyle string            `json:"preferred_learning_style,omitempty"`
	TimeAvailability       *TimeAvailability `json:"time_availability,omitempty"`
}

type TimeAvailability struct {
	HoursPerWeek      *int   `json:"hours_per_week,omitempty" validate:"omitempty,min=0,max=168"`
	PreferredSchedule string `json:"preferred_schedule,omitempty"`
}

type Constraints struct {
	TimeConstraints   *int `json:"time_constraints,omitempty" validate:"omitempty,min=0"`
	BudgetConstraints *int `json:"budget_constraints,omitempty" validate:"omitempty,min=0"`
}

type Background struct {
	EducationLevel      string `json:"education_level,omitempty"`
	WorkExperienceYears string `json:"work_experience_years,omitempty"`
	CurrentRole         string `json:"current_role,omitempty"`
	Industry            string `json:"industry,omitempty"`
}

type Skill struct {
	ID          *int   `json:"id,omitempty"`
	Name        string `json:"name" validate:"required"`
	Category    string `json:"category,omitempty"`
	Level       string `json:"level,omitempty"`
	Description string `json:"description,omitempty"`
}

type Progress struct {
	Target       *Target       `json:"target,omitempty"`
	LearningPath *LearningPath `json:"learning_path,omitempty"`
}

type Target struct {
	ID             *int             `json:"id,omitempty"`
	Title          string           `json:"title,omitempty"`
	Type           string           `json:"type,omitempty"`
	Description    string           `json:"description,omitempty"`
	RequiredSkills *[]RequiredSkill `json:"required_skills,omitempty" validate:"omitempty,dive"`
}

type RequiredSkill struct {
	Importance string `json:"importance,omitempty"`
	Skill      Skill  `json:"skill"`
}

type LearningPath struct {
	ID             *int             `json:"id,omitempty"`
	Title          string           `json:"title,omitempty"`
	Description    string           `json:"description,omitempty"`
	Progress       *int             `json:"progress,omitempty" validate:"omitempty,min=0,max=100"`
	CompletionDate string           `json:"completion_date,omitempty"`
	TargetID       *int             `json:"target_id,omitempty"`
	LearnedSkills  *[]SkillProgress `json:"learned_skills,omitempty" validate:"omitempty,dive"`
	ToLearnSkills  *[]SkillProgress `json:"to_learn_skills,omitempty" validate:"omitempty,dive"`
}

type SkillProgress struct {
	ProficiencyLevel string      `json:"proficiency_level,omitempty"`
	Resources        *[]Resource `json:"resources,omitempty"`
	Status           string      `json:"status,omitempty" validate:"omitempty,max=64"`
	UpdateDate       string      `json:"update_date,omitempty"`
	ExpectedOutput   string      `json:"expected_output,omitempty"`
	Skill            Skill       `json:"skill"`
}

type Resource struct {
	Type           string `json:"type,omitempty"`
	Title          string `json:"title,omitempty"`
	URL            string `json:"url,omitempty"`
	Price          string `json:"price,omitempty"`
	EstimatedHours string `json:"estimated_hours,omitempty"`
	Description    string `json:"description,omitempty"`
	Provider       string `json:"provider,omitempty"`
}

// IsEmpty reports whether no field of the document is set.
func (d Document) IsEmpty() bool {
	return d.Language == "" &&
		d.LearningPreferences == nil &&
		d.Constraints == nil &&
		d.Background == nil &&
		len(Items(d.Skills)) == 0 &&
		len(Items(d.Progresses)) == 0
}

// Items dereferences an optional list; nil reads as empty.
func Items[T any](list *[]T) []T {
	if list == nil {
		return nil
	}
	return *list
}

// Validate checks field bounds. The returned error wraps ErrInvalidDocument.
func (d Document) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// Parse strictly decodes a client supplied document: unknown fields are
// rejected and the result is validated.
func Parse(raw []byte) (Document, error) {
	var d Document
	if err := DecodeStrict(raw, &d); err != nil {
		return Document{}, err
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// DecodeStrict decodes raw into v rejecting unknown fields.
func DecodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// DecodeStored reads a document back from storage. Values written by older
// deployments may be a JSON string holding the encoded object; those are
// unwrapped first. Anything that still fails to decode yields an empty
// document with ok=false.
func DecodeStored(raw []byte) (doc Document, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Document{}, true
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return Document{}, false
		}
		raw = bytes.TrimSpace([]byte(inner))
		if len(raw) == 0 {
			return Document{}, true
		}
	}

	if raw[0] != '{' {
		return Document{}, false
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, false
	}
	return doc, true
}

// Encode returns the storage form of the document.
func Encode(d Document) ([]byte, error) {
	return json.Marshal(d)
}
