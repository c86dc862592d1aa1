// Package site renders a static landing page from a build package.
package site

import (
	"bytes"
	"io"
	"strings"
	"time"

	"venture-builder/internal/content"
)

const (
	DefaultPrimaryCTA   = "Get Started"
	DefaultSecondaryCTA = "Learn More"
	DefaultProjectName  = "Untitled Venture"
)

// Site is a synthesized static page and its stylesheet.
type Site struct {
	HTML string
	CSS  string
}

// Synthesizer is pure apart from the clock, which only feeds the footer year.
type Synthesizer struct {
	Now func() time.Time
}

func New() *Synthesizer {
	return &Synthesizer{Now: time.Now}
}

type pageData struct {
	ProjectName      string
	ValueProposition string
	MissionStatement string
	PrimaryCTA       string
	SecondaryCTA     string
	PrimaryHref      string
	SecondaryHref    string
	Features         []content.FeatureBenefit
	Tiers            []content.PricingTier
	Year             int
}

// Synthesize renders index.html and styles.css. A nil package renders an empty page.
func (s *Synthesizer) Synthesize(pkg *content.BuildPackage, projectName string) Site {
	if pkg == nil {
		pkg = &content.BuildPackage{}
	}
	name := DisplayName(projectName)

	data := pageData{
		ProjectName:      name,
		ValueProposition: firstNonEmpty(pkg.Copy.ValueProposition, name),
		MissionStatement: pkg.Copy.MissionStatement,
		PrimaryCTA:       ctaText(pkg.Copy.CallsToAction, 0, DefaultPrimaryCTA),
		SecondaryCTA:     ctaText(pkg.Copy.CallsToAction, 1, DefaultSecondaryCTA),
		Features:         pkg.Copy.FeatureBenefits,
		Tiers:            pkg.Copy.PricingTiers,
		Year:             s.now().Year(),
	}
	data.PrimaryHref, data.SecondaryHref = ctaTargets(len(data.Tiers) > 0, len(data.Features) > 0)

	return Site{
		HTML: mustRender(pageTemplate.Execute, data),
		CSS:  mustRender(styleTemplate.Execute, ResolvePalette(pkg.BrandAssets.ColorPalette)),
	}
}

// ctaTargets picks in-page anchors for the two call-to-action buttons, pointing only at
// sections that are rendered.
func ctaTargets(hasPricing, hasFeatures bool) (primary, secondary string) {
	primary, secondary = "#", "#"
	if hasFeatures {
		primary, secondary = "#features", "#features"
	}
	if hasPricing {
		primary = "#pricing"
	}
	return primary, secondary
}

func (s *Synthesizer) now() time.Time {
	if s == nil || s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// RobotsTXT allows every crawler everywhere.
func RobotsTXT() string {
	return "User-agent: *\nAllow: /\n"
}

// DisplayName trims the project name and substitutes a placeholder when it is blank.
func DisplayName(projectName string) string {
	if name := strings.TrimSpace(projectName); name != "" {
		return name
	}
	return DefaultProjectName
}

func ctaText(ctas []content.CallToAction, i int, fallback string) string {
	if i < len(ctas) && strings.TrimSpace(ctas[i].Text) != "" {
		return ctas[i].Text
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// mustRender executes a template parsed at init time over plain data. Execution cannot fail
// for these inputs, so an error is a programming bug.
func mustRender(execute func(io.Writer, any) error, data any) string {
	var buf bytes.Buffer
	if err := execute(&buf, data); err != nil {
		panic("site: template execution failed: " + err.Error())
	}
	return buf.String()
}
