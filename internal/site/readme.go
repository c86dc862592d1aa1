package site

import (
	"fmt"
	"strings"

	"venture-builder/internal/content"
)

// BuildReadme summarizes a build package as Markdown. Empty sections are omitted.
func BuildReadme(pkg *content.BuildPackage, projectName string) string {
	if pkg == nil {
		pkg = &content.BuildPackage{}
	}
	name := DisplayName(projectName)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", name)
	if pkg.Copy.ValueProposition != "" {
		fmt.Fprintf(&b, "> %s\n\n", pkg.Copy.ValueProposition)
	}
	if pkg.Copy.MissionStatement != "" {
		fmt.Fprintf(&b, "## Mission\n\n%s\n\n", pkg.Copy.MissionStatement)
	}

	if len(pkg.Copy.FeatureBenefits) > 0 {
		b.WriteString("## Features\n\n")
		for _, f := range pkg.Copy.FeatureBenefits {
			fmt.Fprintf(&b, "- **%s**: %s\n", f.FeatureName, f.BenefitCopy)
		}
		b.WriteString("\n")
	}

	if len(pkg.Copy.PricingTiers) > 0 {
		b.WriteString("## Pricing\n\n")
		for _, t := range pkg.Copy.PricingTiers {
			fmt.Fprintf(&b, "### %s (%s)\n\n", t.TierName, t.Price)
			for _, f := range t.Features {
				fmt.Fprintf(&b, "- %s\n", f)
			}
			b.WriteString("\n")
		}
	}

	if len(pkg.Copy.CallsToAction) > 0 {
		b.WriteString("## Calls to action\n\n")
		for _, c := range pkg.Copy.CallsToAction {
			if c.Location != "" {
				fmt.Fprintf(&b, "- %s (%s)\n", c.Text, c.Location)
			} else {
				fmt.Fprintf(&b, "- %s\n", c.Text)
			}
		}
		b.WriteString("\n")
	}

	assets := pkg.BrandAssets
	if len(assets.ColorPalette) > 0 || len(assets.FontPairings) > 0 || len(assets.ImageBriefs) > 0 {
		b.WriteString("## Brand\n\n")
		if len(assets.ColorPalette) > 0 {
			b.WriteString("| Role | Color |\n| --- | --- |\n")
			for _, c := range assets.ColorPalette {
				fmt.Fprintf(&b, "| %s | `%s` |\n", c.Role, c.Hex)
			}
			b.WriteString("\n")
		}
		if len(assets.FontPairings) > 0 {
			b.WriteString("**Fonts**\n\n")
			for _, f := range assets.FontPairings {
				fmt.Fprintf(&b, "- %s\n", f)
			}
			b.WriteString("\n")
		}
		if len(assets.ImageBriefs) > 0 {
			b.WriteString("**Imagery**\n\n")
			for _, img := range assets.ImageBriefs {
				fmt.Fprintf(&b, "- %s: %s\n", img.Section, img.Brief)
			}
			b.WriteString("\n")
		}
	}

	if pkg.CoreProjectFile != nil && pkg.CoreProjectFile.RemixLink != "" {
		fmt.Fprintf(&b, "## Starter project\n\n%s\n\n", pkg.CoreProjectFile.RemixLink)
	}

	b.WriteString("## Files\n\n")
	b.WriteString("- `index.html` landing page\n")
	b.WriteString("- `styles.css` theme\n")
	b.WriteString("- `robots.txt`\n")
	b.WriteString("- `project_data.json` full generated content\n")

	return b.String()
}

// ReportReadme renders an advisory report as Markdown.
func ReportReadme(report *content.AdvisoryReport, projectName string) string {
	if report == nil {
		report = &content.AdvisoryReport{}
	}
	title := report.ReportTitle
	if title == "" {
		title = DisplayName(projectName) + " Advisory Report"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if report.ExecutiveSummary != "" {
		fmt.Fprintf(&b, "## Executive summary\n\n%s\n\n", report.ExecutiveSummary)
	}
	if report.MarketAnalysis != "" {
		fmt.Fprintf(&b, "## Market analysis\n\n%s\n\n", report.MarketAnalysis)
	}

	if s := report.SWOT; s != nil {
		b.WriteString("## SWOT\n\n")
		writeList(&b, "Strengths", s.Strengths)
		writeList(&b, "Weaknesses", s.Weaknesses)
		writeList(&b, "Opportunities", s.Opportunities)
		writeList(&b, "Threats", s.Threats)
	}

	if len(report.Risks) > 0 {
		b.WriteString("## Risks\n\n| Risk | Mitigation |\n| --- | --- |\n")
		for _, r := range report.Risks {
			fmt.Fprintf(&b, "| %s | %s |\n", r.Risk, r.Mitigation)
		}
		b.WriteString("\n")
	}

	if len(report.Recommendations) > 0 {
		b.WriteString("## Recommendations\n\n")
		for i, r := range report.Recommendations {
			fmt.Fprintf(&b, "%d. %s\n", i+1, r)
		}
		b.WriteString("\n")
	}

	if len(report.NextSteps) > 0 {
		b.WriteString("## Next steps\n\n")
		for _, s := range report.NextSteps {
			fmt.Fprintf(&b, "- [ ] %s\n", s)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}
