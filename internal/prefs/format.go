package prefs

import (
	"fmt"
	"strings"
)

const noProfile = "No profile information available."

// Format renders the document as plain lines suitable for a system prompt.
func Format(d Document) string {
	if d.IsEmpty() {
		return noProfile
	}

	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	if d.Language != "" {
		line("Preferred language: %s", d.Language)
	}

	if lp := d.LearningPreferences; lp != nil {
		if lp.PreferredLearningStyle != "" {
			line("Learning style: %s", lp.PreferredLearningStyle)
		}
		if ta := lp.TimeAvailability; ta != nil {
			if ta.HoursPerWeek != nil {
				line("Available time: %d hours per week", *ta.HoursPerWeek)
			}
			if ta.PreferredSchedule != "" {
				line("Preferred schedule: %s", ta.PreferredSchedule)
			}
		}
	}

	if c := d.Constraints; c != nil {
		if c.TimeConstraints != nil {
			line("Time constraint: %d", *c.TimeConstraints)
		}
		if c.BudgetConstraints != nil {
			line("Budget constraint: %d", *c.BudgetConstraints)
		}
	}

	if bg := d.Background; bg != nil {
		parts := nonEmpty(
			labeled("education", bg.EducationLevel),
			labeled("role", bg.CurrentRole),
			labeled("industry", bg.Industry),
			labeled("years of experience", bg.WorkExperienceYears),
		)
		if len(parts) > 0 {
			line("Background: %s", strings.Join(parts, ", "))
		}
	}

	if list := Items(d.Skills); len(list) > 0 {
		skills := make([]string, 0, len(list))
		for _, s := range list {
			skills = append(skills, skillString(s))
		}
		line("Skills: %s", strings.Join(skills, ", "))
	}

	for _, p := range Items(d.Progresses) {
		if p.Target != nil && p.Target.Title != "" {
			line("Goal: %s", p.Target.Title)
		}
		lp := p.LearningPath
		if lp == nil {
			continue
		}
		if lp.Title != "" {
			if lp.Progress != nil {
				line("Learning path: %s (%d%% complete)", lp.Title, *lp.Progress)
			} else {
				line("Learning path: %s", lp.Title)
			}
		}
		if names := skillNames(Items(lp.LearnedSkills)); len(names) > 0 {
			line("Learned: %s", strings.Join(names, ", "))
		}
		if names := skillNames(Items(lp.ToLearnSkills)); len(names) > 0 {
			line("Still to learn: %s", strings.Join(names, ", "))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func skillString(s Skill) string {
	if s.Level == "" {
		return s.Name
	}
	return fmt.Sprintf("%s (%s)", s.Name, s.Level)
}

func skillNames(items []SkillProgress) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		name := skillString(it.Skill)
		if it.ProficiencyLevel != "" {
			name = fmt.Sprintf("%s -> %s", it.Skill.Name, it.ProficiencyLevel)
		}
		out = append(out, name)
	}
	return out
}

func labeled(label, v string) string {
	if v == "" {
		return ""
	}
	return label + " " + v
}

func nonEmpty(vals ...string) []string {
	out := vals[:0]
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
