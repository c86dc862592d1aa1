package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	apperrors "venture-builder/internal/common/errors"
	"venture-builder/internal/common/validation"
)

// DetectKind decides the variant from the top-level keys of a decoded document.
func DetectKind(doc map[string]json.RawMessage) (Kind, bool) {
	if _, ok := doc["copy"]; ok {
		return KindBuildPackage, true
	}
	if _, ok := doc["brandAssets"]; ok {
		return KindBuildPackage, true
	}
	if _, ok := doc["executiveSummary"]; ok {
		return KindAdvisoryReport, true
	}
	return "", false
}

// Parse validates a generator response and decodes it into the matching variant.
// Every rejection is a MALFORMED_CONTENT StandardError listing the violations.
func Parse(raw []byte) (*Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, apperrors.NewMalformedContentError([]string{"(root): document is empty"})
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, apperrors.NewMalformedContentError([]string{fmt.Sprintf("(root): not a JSON object: %v", err)})
	}

	kind, ok := DetectKind(doc)
	if !ok {
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, apperrors.NewMalformedContentError([]string{
			fmt.Sprintf("(root): unrecognized content shape (keys: %v)", keys),
		})
	}

	schema := BuildPackageSchema()
	if kind == KindAdvisoryReport {
		schema = AdvisoryReportSchema()
	}

	result, err := validation.ValidateDocument(trimmed, schema)
	if err != nil {
		return nil, apperrors.NewMalformedContentError([]string{err.Error()})
	}
	if !result.Valid {
		return nil, apperrors.NewMalformedContentError(result.GetErrorMessages())
	}

	c := &Content{Kind: kind, Raw: json.RawMessage(trimmed)}
	switch kind {
	case KindBuildPackage:
		c.Build = &BuildPackage{}
		err = json.Unmarshal(trimmed, c.Build)
	case KindAdvisoryReport:
		c.Report = &AdvisoryReport{}
		err = json.Unmarshal(trimmed, c.Report)
	}
	if err != nil {
		return nil, apperrors.NewMalformedContentError([]string{err.Error()})
	}

	return c, nil
}

// ParseString is Parse for generator text output, which arrives as a string.
// A fenced ```json block is unwrapped first.
func ParseString(text string) (*Content, error) {
	return Parse(stripCodeFence([]byte(text)))
}

func stripCodeFence(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	} else {
		return b
	}
	b = bytes.TrimSpace(b)
	return bytes.TrimSuffix(b, []byte("```"))
}
