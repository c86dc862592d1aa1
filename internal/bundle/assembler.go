package bundle

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "venture-builder/internal/common/errors"
	"venture-builder/internal/content"
	"venture-builder/internal/site"
)

// Assembler turns generated content into a Bundle.
type Assembler struct {
	synth *site.Synthesizer
}

func NewAssembler(synth *site.Synthesizer) *Assembler {
	if synth == nil {
		synth = site.New()
	}
	return &Assembler{synth: synth}
}

// Assemble always emits project_data.json and README.md; build packages also get the
// synthesized site, its stylesheet and robots.txt.
func (a *Assembler) Assemble(c *content.Content, projectName string) (*Bundle, error) {
	if c == nil {
		return nil, apperrors.NewMalformedContentError([]string{"(root): no content"})
	}

	snapshot, err := prettySnapshot(c)
	if err != nil {
		return nil, apperrors.NewMalformedContentError([]string{fmt.Sprintf("(root): snapshot: %v", err)})
	}

	b := New(projectName)
	b.Add(FileProjectData, snapshot)

	switch c.Kind {
	case content.KindBuildPackage:
		b.Add(FileReadme, site.BuildReadme(c.Build, projectName))
		page := a.synth.Synthesize(c.Build, projectName)
		b.Add(FileIndex, page.HTML)
		b.Add(FileStyles, page.CSS)
		b.Add(FileRobots, site.RobotsTXT())
	case content.KindAdvisoryReport:
		b.Add(FileReadme, site.ReportReadme(c.Report, projectName))
	default:
		return nil, apperrors.NewMalformedContentError([]string{fmt.Sprintf("(root): unknown content kind %q", c.Kind)})
	}

	return b, nil
}

func prettySnapshot(c *content.Content) (string, error) {
	raw := c.Raw
	if len(raw) == 0 {
		var err error
		switch {
		case c.Build != nil:
			raw, err = json.Marshal(c.Build)
		case c.Report != nil:
			raw, err = json.Marshal(c.Report)
		default:
			raw = []byte("{}")
		}
		if err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
