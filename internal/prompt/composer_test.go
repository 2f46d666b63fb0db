package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/execsum/internal/model"
)

func candidateA() model.Candidate {
	return model.Candidate{
		Name: "A",
		Scores: []model.Score{
			{Label: "Leads Inspirationally", Value: "2"},
			{Label: "Manages and Solves Problems", Value: "1"},
			{Label: "Plans and Thinks Strategically", Value: "1"},
			{Label: "Manages Change", Value: "2"},
		},
	}
}

func defaultComposer(t *testing.T) *Composer {
	t.Helper()
	tmpl, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return NewComposer(tmpl)
}

func TestDefault_FrontMatter(t *testing.T) {
	tmpl, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if tmpl.Name != "executive-summary" {
		t.Errorf("Name = %q, want executive-summary", tmpl.Name)
	}
	if tmpl.Version == "" || tmpl.Version == "unversioned" {
		t.Errorf("Version = %q, want a version", tmpl.Version)
	}
}

func TestCompose_CandidateBlock(t *testing.T) {
	out, err := defaultComposer(t).Compose(candidateA())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	want := "Here is the data for the candidate you need to analyze:\n\n```\n" +
		"Candidate Name: A\n" +
		"Competencies:\n" +
		"- Leads Inspirationally: 2\n" +
		"- Manages and Solves Problems: 1\n" +
		"- Plans and Thinks Strategically: 1\n" +
		"- Manages Change: 2\n" +
		"```"
	if !strings.HasSuffix(out, want) {
		t.Errorf("prompt does not end with the candidate block; tail:\n%s", out[max(0, len(out)-400):])
	}
}

func TestCompose_IncludesInstructionTemplate(t *testing.T) {
	out, err := defaultComposer(t).Compose(candidateA())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	for _, phrase := range []string{
		"ROLE\nYou are an expert Talent Assessment Analyst",
		"Scores 4 & 5: These are considered Strengths.",
		"Score 3: This is considered a Potential Strength that can be further leveraged.",
		"Scores 1 & 2: These are considered Development Areas.",
		"not exceed 400 words",
		`"As part of the assessment center, you displayed strengths in.."`,
		`"Developmentally, scope exists for you to further develop in…"`,
		"If no competency scores are above 2",
		"If all competency scores are 3",
		"If no competency scores are below 4",
	} {
		if !strings.Contains(out, phrase) {
			t.Errorf("prompt missing %q", phrase)
		}
	}
	if strings.Contains(out, "name: executive-summary") {
		t.Error("front matter leaked into the prompt")
	}
}

func TestCompose_Deterministic(t *testing.T) {
	c := defaultComposer(t)
	first, err := c.Compose(candidateA())
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Compose(candidateA())
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("composing the same candidate twice produced different text")
	}
}

func TestCompose_PassesScoresThrough(t *testing.T) {
	c := model.Candidate{Name: "{{.Candidate}}", Scores: []model.Score{{Label: "Manages Change", Value: "seven"}}}
	out, err := defaultComposer(t).Compose(c)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if !strings.Contains(out, "Candidate Name: {{.Candidate}}\nCompetencies:\n- Manages Change: seven\n```") {
		t.Error("candidate data was not included verbatim")
	}
}

func TestParse_MissingSection(t *testing.T) {
	raw := "ROLE\nx\nINPUT FORMAT\nOUTPUT FORMAT\n{{.Candidate}}\n"
	_, err := Parse("test", raw)
	var cfgErr *model.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *model.ConfigError", err)
	}
	if !strings.Contains(err.Error(), "RULES OF INTERPRETATION") || !strings.Contains(err.Error(), "SPECIAL CASES") {
		t.Errorf("error should name the missing sections: %v", err)
	}
}

func minimalTemplate(slot string) string {
	return strings.Join([]string{
		"ROLE", "r", "RULES OF INTERPRETATION & CONTENT", "x", "SPECIAL CASES (CRITICAL)", "y",
		"INPUT FORMAT", "z", "OUTPUT FORMAT", "w", slot,
	}, "\n")
}

func TestParse_MissingCandidateSlot(t *testing.T) {
	if _, err := Parse("test", minimalTemplate("no slot here")); err == nil {
		t.Fatal("expected error when the template never renders the candidate block")
	}
}

func TestParse_BadTemplateSyntax(t *testing.T) {
	if _, err := Parse("test", minimalTemplate("{{.Candidate")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParse_UnknownField(t *testing.T) {
	if _, err := Parse("test", minimalTemplate("{{.Candidate}} {{.Other}}")); err == nil {
		t.Fatal("expected error for unknown template field")
	}
}

func TestParse_FrontMatter(t *testing.T) {
	raw := "---\nname: short\nversion: \"7\"\n---\n" + minimalTemplate("{{.Candidate}}")
	tmpl, err := Parse("test", raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tmpl.Name != "short" || tmpl.Version != "7" {
		t.Errorf("front matter = %q/%q", tmpl.Name, tmpl.Version)
	}

	if _, err := Parse("test", "---\nname: x\n"+minimalTemplate("{{.Candidate}}")); err == nil {
		t.Error("expected error for unterminated front matter")
	}
}

func TestLoad(t *testing.T) {
	tmpl, err := Load("")
	if err != nil || tmpl.Source != "embedded" {
		t.Fatalf("Load(\"\") = %v, %v", tmpl, err)
	}

	path := filepath.Join(t.TempDir(), "prompt.md")
	if err := os.WriteFile(path, []byte(minimalTemplate("{{.Candidate}}")), 0644); err != nil {
		t.Fatal(err)
	}
	tmpl, err = Load(path)
	if err != nil {
		t.Fatalf("Load(file): %v", err)
	}
	if tmpl.Version != "unversioned" {
		t.Errorf("Version = %q, want unversioned", tmpl.Version)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("expected error for missing file")
	}
}
