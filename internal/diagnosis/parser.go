package diagnosis

import (
	"regexp"
	"strconv"
	"strings"

	"oralscan-backend/internal/models"
)

var (
	confidencePattern = regexp.MustCompile(`CONFIDENCE_LEVEL:\s*(\d+)%`)
	riskPattern       = regexp.MustCompile(`(?i)RISK_LEVEL:\s*(LOW|MEDIUM|HIGH)`)
	analysisPattern   = regexp.MustCompile(`(?s)ANALYSIS:(.*)`)
)

// ParseResponse treats the model output as untrusted text. Each sentinel is
// searched independently and the first match wins:
//
//	CONFIDENCE_LEVEL: <digits>%   -> Confidence, default 0 (range not checked)
//	RISK_LEVEL: LOW|MEDIUM|HIGH   -> Risk (any case, upper-cased), default UNKNOWN
//	ANALYSIS: <rest of text>      -> Analysis (trimmed), default the whole input
//
// RawAnalysis always carries the input unchanged.
func ParseResponse(text string) models.AnalysisResult {
	result := models.AnalysisResult{
		Confidence:  0,
		Risk:        models.RiskUnknown,
		Analysis:    text,
		RawAnalysis: text,
	}

	if m := confidencePattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			result.Confidence = n
		}
	}
	if m := riskPattern.FindStringSubmatch(text); m != nil {
		result.Risk = strings.ToUpper(m[1])
	}
	if m := analysisPattern.FindStringSubmatch(text); m != nil {
		result.Analysis = strings.TrimSpace(m[1])
	}
	return result
}
