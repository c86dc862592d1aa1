package content

import "venture-builder/internal/common/validation"

func stringList() *validation.Property {
	return &validation.Property{Type: "string"}
}

func objectList(required []string, props map[string]validation.Property) validation.Property {
	return validation.Property{
		Type: "array",
		Items: &validation.Property{
			Type:       "object",
			Required:   required,
			Properties: props,
		},
	}
}

// BuildPackageSchema requires the text fields templates interpolate, so a missing value is
// caught here instead of surfacing in a rendered page.
func BuildPackageSchema() validation.JSONSchema {
	str := validation.Property{Type: "string"}
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"copy", "brandAssets"},
		Properties: map[string]validation.Property{
			"copy": {
				Type:     "object",
				Required: []string{"valueProposition", "missionStatement"},
				Properties: map[string]validation.Property{
					"valueProposition": str,
					"missionStatement": str,
					"callsToAction": objectList([]string{"text"}, map[string]validation.Property{
						"location": str,
						"text":     str,
					}),
					"pricingTiers": objectList([]string{"tierName", "price"}, map[string]validation.Property{
						"tierName": str,
						"price":    str,
						"features": {Type: "array", Items: stringList()},
					}),
					"featureBenefits": objectList([]string{"featureName", "benefitCopy"}, map[string]validation.Property{
						"featureName": str,
						"benefitCopy": str,
					}),
				},
			},
			"brandAssets": {
				Type: "object",
				Properties: map[string]validation.Property{
					"colorPalette": objectList([]string{"role", "hex"}, map[string]validation.Property{
						"role": str,
						"hex":  str,
					}),
					"fontPairings": {Type: "array", Items: stringList()},
					"imageBriefs": objectList([]string{"section", "brief"}, map[string]validation.Property{
						"section": str,
						"brief":   str,
					}),
				},
			},
			"coreProjectFile": {
				Type: []string{"object", "null"},
				Properties: map[string]validation.Property{
					"remixLink": str,
					"content":   {Type: "object"},
				},
			},
		},
	}
}

func AdvisoryReportSchema() validation.JSONSchema {
	str := validation.Property{Type: "string"}
	strings := validation.Property{Type: "array", Items: stringList()}
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"executiveSummary"},
		Properties: map[string]validation.Property{
			"reportTitle":      str,
			"executiveSummary": {Type: "string", MinLength: validation.IntPtr(1)},
			"marketAnalysis":   str,
			"swot": {
				Type: "object",
				Properties: map[string]validation.Property{
					"strengths":     strings,
					"weaknesses":    strings,
					"opportunities": strings,
					"threats":       strings,
				},
			},
			"risks": objectList([]string{"risk"}, map[string]validation.Property{
				"risk":       str,
				"mitigation": str,
			}),
			"recommendations": strings,
			"nextSteps":       strings,
		},
	}
}
