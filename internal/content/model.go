// Package content holds the typed result of a generation request: either a build package
// (marketing copy, brand assets and a starter project file) or an advisory report.
package content

import "encoding/json"

// Kind identifies which variant a Content value carries.
type Kind string

const (
	KindBuildPackage   Kind = "build_package"
	KindAdvisoryReport Kind = "advisory_report"
)

type CallToAction struct {
	Location string `json:"location"`
	Text     string `json:"text"`
}

type PricingTier struct {
	TierName string   `json:"tierName"`
	Price    string   `json:"price"`
	Features []string `json:"features,omitempty"`
}

type FeatureBenefit struct {
	FeatureName string `json:"featureName"`
	BenefitCopy string `json:"benefitCopy"`
}

type Copy struct {
	ValueProposition string           `json:"valueProposition"`
	MissionStatement string           `json:"missionStatement"`
	CallsToAction    []CallToAction   `json:"callsToAction,omitempty"`
	PricingTiers     []PricingTier    `json:"pricingTiers,omitempty"`
	FeatureBenefits  []FeatureBenefit `json:"featureBenefits,omitempty"`
}

// ColorEntry pairs a free-text role ("Primary Brand", "Background") with an opaque hex string.
type ColorEntry struct {
	Role string `json:"role"`
	Hex  string `json:"hex"`
}

type ImageBrief struct {
	Section string `json:"section"`
	Brief   string `json:"brief"`
}

type BrandAssets struct {
	ColorPalette []ColorEntry `json:"colorPalette,omitempty"`
	FontPairings []string     `json:"fontPairings,omitempty"`
	ImageBriefs  []ImageBrief `json:"imageBriefs,omitempty"`
}

// CoreProjectFile is a starter project descriptor. Content is passed through untouched.
type CoreProjectFile struct {
	RemixLink string                 `json:"remixLink,omitempty"`
	Content   map[string]interface{} `json:"content,omitempty"`
}

type BuildPackage struct {
	Copy            Copy             `json:"copy"`
	BrandAssets     BrandAssets      `json:"brandAssets"`
	CoreProjectFile *CoreProjectFile `json:"coreProjectFile,omitempty"`
}

type SWOT struct {
	Strengths     []string `json:"strengths,omitempty"`
	Weaknesses    []string `json:"weaknesses,omitempty"`
	Opportunities []string `json:"opportunities,omitempty"`
	Threats       []string `json:"threats,omitempty"`
}

type RiskItem struct {
	Risk       string `json:"risk"`
	Mitigation string `json:"mitigation"`
}

type AdvisoryReport struct {
	ReportTitle      string     `json:"reportTitle,omitempty"`
	ExecutiveSummary string     `json:"executiveSummary"`
	MarketAnalysis   string     `json:"marketAnalysis,omitempty"`
	SWOT             *SWOT      `json:"swot,omitempty"`
	Risks            []RiskItem `json:"risks,omitempty"`
	Recommendations  []string   `json:"recommendations,omitempty"`
	NextSteps        []string   `json:"nextSteps,omitempty"`
}

// Content is the tagged union of the two generation results. Raw is the exact document the
// generator returned and is what gets snapshotted into exports.
type Content struct {
	Kind   Kind
	Build  *BuildPackage
	Report *AdvisoryReport
	Raw    json.RawMessage
}

// IsBuildPackage reports whether site files can be synthesized from this content.
func (c *Content) IsBuildPackage() bool {
	return c != nil && c.Kind == KindBuildPackage && c.Build != nil
}

// FromBuildPackage wraps a typed build package, producing its raw snapshot by marshalling.
func FromBuildPackage(pkg *BuildPackage) (*Content, error) {
	raw, err := json.Marshal(pkg)
	if err != nil {
		return nil, err
	}
	return &Content{Kind: KindBuildPackage, Build: pkg, Raw: raw}, nil
}

// FromReport wraps a typed advisory report.
func FromReport(report *AdvisoryReport) (*Content, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, err
	}
	return &Content{Kind: KindAdvisoryReport, Report: report, Raw: raw}, nil
}
