package analysis

import (
	"reflect"
	"testing"
)

func TestParseExperienceArrowJourney(t *testing.T) {
	rec, ok := ParseExperience("User opens app → Logs water intake → Views daily progress")
	if !ok {
		t.Fatalf("expected full extraction")
	}
	want := []string{"User opens app", "Logs water intake", "Views daily progress"}
	if !reflect.DeepEqual(rec.Journey.Items, want) {
		t.Errorf("journey = %v, want %v", rec.Journey.Items, want)
	}
	if rec.Journey.Fallback || rec.Narrative.Fallback {
		t.Errorf("no field should be fallback: %+v", rec)
	}
}

func TestParseExperienceNumberedSteps(t *testing.T) {
	raw := "Step 1: Sign up\nStep 2: Set a goal\n3. Track progress"
	rec, ok := ParseExperience(raw)
	if !ok {
		t.Fatalf("expected full extraction")
	}
	want := []string{"Sign up", "Set a goal", "Track progress"}
	if !reflect.DeepEqual(rec.Journey.Items, want) {
		t.Errorf("journey = %v, want %v", rec.Journey.Items, want)
	}
}

func TestParseExperienceDegrades(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := ParseExperience(tt.raw)
			if ok {
				t.Fatalf("expected degraded extraction")
			}
			if !rec.Journey.Fallback || !rec.Narrative.Fallback {
				t.Errorf("all fields must be flagged: %+v", rec)
			}
			if len(rec.Journey.Items) != 0 {
				t.Errorf("fallback journey must be empty, got %v", rec.Journey.Items)
			}
			if rec.Narrative.Value != FallbackText {
				t.Errorf("narrative = %q, want sentinel", rec.Narrative.Value)
			}
			if !rec.AllFallback() {
				t.Errorf("record should be all-fallback")
			}
		})
	}
}

func TestParseExperienceProseOnly(t *testing.T) {
	rec, ok := ParseExperience("The user mostly just wants to drink water.")
	if ok {
		t.Fatalf("expected partial extraction")
	}
	if !rec.Journey.Fallback {
		t.Errorf("journey should be fallback")
	}
	if rec.Narrative.Fallback {
		t.Errorf("narrative was present, should not be fallback")
	}
}

func TestParseFeasibilityFull(t *testing.T) {
	raw := `Tech Stack: React Native/Go/Postgres
Feasibility Score: 8
MVP Timeline: 6 weeks
Main Technical Risk: offline sync complexity`

	rec, ok := ParseFeasibility(raw)
	if !ok {
		t.Fatalf("expected full extraction, got %+v", rec)
	}
	if rec.Score.Value != 8 {
		t.Errorf("score = %d, want 8", rec.Score.Value)
	}
	if got := rec.TechStack.Items; !reflect.DeepEqual(got, []string{"React Native", "Go", "Postgres"}) {
		t.Errorf("stack = %v", got)
	}
	if rec.TimelineWeeks.Value != 6 {
		t.Errorf("timeline = %d, want 6", rec.TimelineWeeks.Value)
	}
	if rec.MainRisk.Value != "offline sync complexity" {
		t.Errorf("risk = %q", rec.MainRisk.Value)
	}
}

func TestParseFeasibilityValueKeywordsDoNotLeak(t *testing.T) {
	raw := `Tech Stack: React Native/Go/Postgres
Feasibility Score: 8
MVP Timeline: 6 weeks
Main Technical Risk: data migration could add 12 weeks of delay`

	rec, ok := ParseFeasibility(raw)
	if !ok {
		t.Fatalf("expected full extraction, got %+v", rec)
	}
	if rec.TimelineWeeks.Value != 6 || rec.TimelineWeeks.Fallback {
		t.Errorf("timeline = %+v, want 6 from its own line", rec.TimelineWeeks)
	}
	if rec.MainRisk.Fallback || rec.MainRisk.Value != "data migration could add 12 weeks of delay" {
		t.Errorf("risk = %+v, want full risk line", rec.MainRisk)
	}
}

func TestParseFeasibilityScoreClamped(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"Feasibility Score: 0", 1},
		{"Feasibility Score: 1", 1},
		{"Score: 10", 10},
		{"Feasibility Score: 42", 10},
	}
	for _, tt := range tests {
		rec, _ := ParseFeasibility(tt.raw)
		if rec.Score.Value != tt.want {
			t.Errorf("ParseFeasibility(%q) score = %d, want %d", tt.raw, rec.Score.Value, tt.want)
		}
		if rec.Score.Fallback {
			t.Errorf("ParseFeasibility(%q) score should not be fallback", tt.raw)
		}
	}
}

func TestParseFeasibilityDegrades(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty reply", ""},
		{"prose reply", "I think this is a great idea, very doable."},
		{"malformed numbers", "Feasibility Score: high\nMVP Timeline: soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := ParseFeasibility(tt.raw)
			if ok {
				t.Fatalf("expected degraded extraction")
			}
			if !rec.Score.Fallback || rec.Score.Value != DefaultScore {
				t.Errorf("score = %+v, want fallback default %d", rec.Score, DefaultScore)
			}
			if !rec.TimelineWeeks.Fallback || rec.TimelineWeeks.Value != DefaultTimelineWeeks {
				t.Errorf("timeline = %+v, want fallback default %d", rec.TimelineWeeks, DefaultTimelineWeeks)
			}
			if !rec.TechStack.Fallback || len(rec.TechStack.Items) != 0 {
				t.Errorf("stack = %+v, want empty fallback", rec.TechStack)
			}
		})
	}
}

func TestParseFeasibilityPartial(t *testing.T) {
	rec, ok := ParseFeasibility("Feasibility Score: 7")
	if ok {
		t.Fatalf("expected partial extraction")
	}
	if rec.Score.Fallback || rec.Score.Value != 7 {
		t.Errorf("score = %+v", rec.Score)
	}
	if !rec.TechStack.Fallback || !rec.TimelineWeeks.Fallback || !rec.MainRisk.Fallback {
		t.Errorf("missing fields must be flagged: %+v", rec)
	}
	if rec.AllFallback() {
		t.Errorf("partial record must not read as all-fallback")
	}
}

func TestParsePlanningFull(t *testing.T) {
	raw := `MVP Features:
- Log intake
- Daily goal
- Reminders

Key Risks:
- Retention
- Notification fatigue

Next Steps:
- Build mockups
- Set up repo
- User interviews`

	rec, ok := ParsePlanning(raw)
	if !ok {
		t.Fatalf("expected full extraction, got %+v", rec)
	}
	if len(rec.MVPFeatures.Items) != 3 || len(rec.Risks.Items) != 2 || len(rec.NextSteps.Items) != 3 {
		t.Errorf("unexpected list sizes: %+v", rec)
	}
	if rec.Risks.Items[1] != "Notification fatigue" {
		t.Errorf("risks = %v", rec.Risks.Items)
	}
}

func TestParsePlanningBulletsMayMentionSectionWords(t *testing.T) {
	raw := `MVP Features:
- Log intake

Key Risks:
- Privacy risks around health data
- Notification fatigue

Next Steps:
- Plan next steps with users`

	rec, _ := ParsePlanning(raw)
	want := []string{"Privacy risks around health data", "Notification fatigue"}
	if !reflect.DeepEqual(rec.Risks.Items, want) {
		t.Errorf("risks = %v, want %v", rec.Risks.Items, want)
	}
	if !reflect.DeepEqual(rec.NextSteps.Items, []string{"Plan next steps with users"}) {
		t.Errorf("steps = %v", rec.NextSteps.Items)
	}
}

func TestParsePlanningCapsItems(t *testing.T) {
	raw := "MVP Features:\n- a\n- b\n- c\n- d\n- e"
	rec, _ := ParsePlanning(raw)
	if len(rec.MVPFeatures.Items) != 3 {
		t.Errorf("features = %v, want cap of 3", rec.MVPFeatures.Items)
	}
}

func TestParsePlanningDegrades(t *testing.T) {
	rec, ok := ParsePlanning("no structure at all")
	if ok {
		t.Fatalf("expected degraded extraction")
	}
	if !rec.AllFallback() {
		t.Errorf("record should be all-fallback: %+v", rec)
	}
}
