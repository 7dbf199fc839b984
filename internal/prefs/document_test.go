package prefs

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const learnerDoc = `{
	"learning_preferences": {
		"preferred_learning_style": "visual",
		"time_availability": {"hours_per_week": 6, "preferred_schedule": "weekdays"}
	},
	"constraints": {"time_constraints": 9, "budget_constraints": 10},
	"background": {
		"education_level": "Bachelor's",
		"work_experience_years": "3",
		"current_role": "Software Developer",
		"industry": "Technology"
	},
	"skills": [{"id": 1, "name": "python", "category": "programming", "level": "intermediate"}],
	"progresses": [{
		"target": {"id": 1, "title": "Backend Developer", "type": "Career Path"},
		"learning_path": {
			"id": 1,
			"title": "Python Expert Path",
			"progress": 60,
			"learned_skills": [{"proficiency_level": "intermediate", "status": "done", "skill": {"name": "python"}}],
			"to_learn_skills": [{"proficiency_level": "expert", "status": "todo", "skill": {"name": "system design"}}]
		}
	}]
}`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(learnerDoc))
	require.NoError(t, err)
	require.NotNil(t, doc.LearningPreferences)
	assert.Equal(t, "visual", doc.LearningPreferences.PreferredLearningStyle)
	assert.Equal(t, 6, *doc.LearningPreferences.TimeAvailability.HoursPerWeek)
	assert.Equal(t, "Bachelor's", doc.Background.EducationLevel)
	require.Len(t, Items(doc.Progresses), 1)
	assert.Equal(t, 60, *Items(doc.Progresses)[0].LearningPath.Progress)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", `{"favourite_colour": "blue"}`},
		{"future version", `{"version": 2}`},
		{"progress out of range", `{"progresses": [{"learning_path": {"progress": 140}}]}`},
		{"negative budget", `{"constraints": {"budget_constraints": -1}}`},
		{"skill without name", `{"skills": [{"level": "expert"}]}`},
		{"status too long", `{"progresses": [{"learning_path": {"learned_skills": [{"status": "` + strings.Repeat("x", 65) + `", "skill": {"name": "go"}}]}}]}`},
		{"not an object", `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument))
		})
	}
}

func TestEncodeKeepsPostedShape(t *testing.T) {
	doc, err := Parse([]byte(`{"language":"en"}`))
	require.NoError(t, err)

	out, err := Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"language":"en"}`, string(out))

	zero := 0
	doc = Document{LearningPreferences: &LearningPreferences{TimeAvailability: &TimeAvailability{HoursPerWeek: &zero}}}
	out, err = Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"learning_preferences":{"time_availability":{"hours_per_week":0}}}`, string(out))
}

func TestEncodeKeepsEmptyLists(t *testing.T) {
	for _, body := range []string{
		`{"language":"en","skills":[]}`,
		`{"progresses":[{"learning_path":{"title":"Go","learned_skills":[],"to_learn_skills":[{"skill":{"name":"generics"},"resources":[]}]}}]}`,
		`{"progresses":[{"target":{"title":"SRE","required_skills":[]}}]}`,
	} {
		doc, err := Parse([]byte(body))
		require.NoError(t, err, body)

		out, err := Encode(doc)
		require.NoError(t, err)
		assert.JSONEq(t, body, string(out))
	}
}

func TestFreeFormSkillStatus(t *testing.T) {
	doc, err := Parse([]byte(`{"progresses":[{"learning_path":{"learned_skills":[{"status":"in progress","skill":{"name":"go"}}]}}]}`))
	require.NoError(t, err)
	learned := Items(Items(doc.Progresses)[0].LearningPath.LearnedSkills)
	require.Len(t, learned, 1)
	assert.Equal(t, "in progress", learned[0].Status)
}

func TestIsEmptyWithEmptyLists(t *testing.T) {
	doc, err := Parse([]byte(`{"skills":[],"progresses":[]}`))
	require.NoError(t, err)
	assert.True(t, doc.IsEmpty())
	assert.Equal(t, noProfile, Format(doc))
}

func TestDecodeStored(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		ok       bool
		language string
	}{
		{"object", `{"language":"en"}`, true, "en"},
		{"encoded string", `"{\"language\":\"de\"}"`, true, "de"},
		{"empty", ``, true, ""},
		{"null", `null`, true, ""},
		{"garbage", `not json`, false, ""},
		{"encoded garbage", `"{broken"`, false, ""},
		{"array", `[]`, false, ""},
		{"unknown fields are tolerated", `{"language":"fr","legacy":true}`, true, "fr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, ok := DecodeStored([]byte(tt.raw))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.language, doc.Language)
			if !tt.ok {
				assert.True(t, doc.IsEmpty())
			}
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, noProfile, Format(Document{}))

	doc, err := Parse([]byte(learnerDoc))
	require.NoError(t, err)

	out := Format(doc)
	for _, want := range []string{
		"Learning style: visual",
		"Available time: 6 hours per week",
		"Background: education Bachelor's, role Software Developer, industry Technology, years of experience 3",
		"Skills: python (intermediate)",
		"Goal: Backend Developer",
		"Learning path: Python Expert Path (60% complete)",
		"Learned: python -> intermediate",
		"Still to learn: system design -> expert",
	} {
		assert.Contains(t, out, want)
	}
	assert.False(t, strings.HasSuffix(out, "\n"))
}
