package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/execsum/internal/model"
)

//go:embed templates/executive_summary.md
var defaultTemplateRaw string

// RequiredSections are headings every instruction template must contain.
var RequiredSections = []string{
	"ROLE",
	"RULES OF INTERPRETATION",
	"SPECIAL CASES",
	"INPUT FORMAT",
	"OUTPUT FORMAT",
}

const frontMatterDelim = "---"

// sentinelName is rendered during validation to prove the candidate slot exists.
const sentinelName = "__execsum_validation__"

// Template is a parsed, validated instruction template.
type Template struct {
	Name    string
	Version string
	Source  string
	tmpl    *template.Template
}

type frontMatter struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// Default returns the embedded executive summary template.
func Default() (*Template, error) {
	return Parse("embedded", defaultTemplateRaw)
}

// LoadFile reads and validates a template file.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ConfigError{Err: fmt.Errorf("read prompt template: %w", err)}
	}
	return Parse(path, string(data))
}

// Load returns the template at path, or the embedded one when path is empty.
func Load(path string) (*Template, error) {
	if path == "" {
		return Default()
	}
	return LoadFile(path)
}

// Parse splits optional YAML front matter from raw, checks the required
// sections and verifies that the candidate slot renders. Errors are
// *model.ConfigError.
func Parse(source, raw string) (*Template, error) {
	fm, body, err := splitFrontMatter(raw)
	if err != nil {
		return nil, &model.ConfigError{Err: fmt.Errorf("prompt template %s: %w", source, err)}
	}
	body = strings.TrimSuffix(body, "\n")

	if missing := missingSections(body); len(missing) > 0 {
		return nil, &model.ConfigError{Err: fmt.Errorf("prompt template %s: missing sections %s", source, strings.Join(missing, ", "))}
	}

	tmpl, err := template.New(fm.Name).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, &model.ConfigError{Err: fmt.Errorf("prompt template %s: %w", source, err)}
	}

	t := &Template{Name: fm.Name, Version: fm.Version, Source: source, tmpl: tmpl}
	if err := t.validateSlot(); err != nil {
		return nil, &model.ConfigError{Err: fmt.Errorf("prompt template %s: %w", source, err)}
	}
	return t, nil
}

func (t *Template) validateSlot() error {
	probe := model.Candidate{Name: sentinelName, Scores: []model.Score{{Label: "Probe", Value: "0"}}}
	out, err := t.render(probe)
	if err != nil {
		return err
	}
	if !strings.Contains(out, Block(probe)) {
		return errors.New("template does not render the {{.Candidate}} data block")
	}
	return nil
}

func (t *Template) render(c model.Candidate) (string, error) {
	var b strings.Builder
	if err := t.tmpl.Execute(&b, struct{ Candidate string }{Candidate: Block(c)}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return b.String(), nil
}

func splitFrontMatter(raw string) (frontMatter, string, error) {
	fm := frontMatter{Name: "custom", Version: "unversioned"}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(raw, frontMatterDelim+"\n") {
		return fm, raw, nil
	}
	rest := raw[len(frontMatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelim+"\n")
	if end < 0 {
		return fm, "", errors.New("unterminated front matter")
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, "", fmt.Errorf("parse front matter: %w", err)
	}
	return fm, rest[end+len(frontMatterDelim)+2:], nil
}

func missingSections(body string) []string {
	var missing []string
	for _, section := range RequiredSections {
		found := false
		for _, line := range strings.Split(body, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), section) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, section)
		}
	}
	return missing
}
