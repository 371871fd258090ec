package services

import (
	"context"
	_ "embed"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/platform/openrouter"
	"github.com/yungbote/sprout-backend/internal/types"
)

//go:embed development_reference.md
var developmentReference string

const extractionSystemPrompt = `You are an assistant that extracts structured developmental insights from a parent daily log.
Return STRICT JSON only. Do not include markdown code fences.
Use this JSON shape exactly:
{
  "structuredLog": { "keyTakeaways": string[], "sentiment": string },
  "profileCandidates": {
    "milestones": [{ "value": string, "reason": string, "confidence": number }],
    "activeSchemas": [{ "value": string, "reason": string, "confidence": number }],
    "interests": [{ "value": string, "reason": string, "confidence": number }]
  }
}
Confidence must be between 0 and 1.
Only include profile candidates that are explicitly supported by the log text.`

// ExtractionService turns raw daily log text into structured insights and
// candidate profile updates. It never fails: any upstream or parse problem
// degrades to a fallback result so log creation continues regardless.
type ExtractionService interface {
	Extract(ctx context.Context, childID, rawText string, profile *types.ChildProfile) types.DailyLogExtractionResult
}

type extractionService struct {
	log         *logger.Logger
	completions openrouter.Client
	timeout     time.Duration
}

func NewExtractionService(baseLog *logger.Logger, completions openrouter.Client, timeout time.Duration) ExtractionService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &extractionService{
		log:         baseLog.With("service", "ExtractionService"),
		completions: completions,
		timeout:     timeout,
	}
}

func (s *extractionService) Extract(ctx context.Context, childID, rawText string, profile *types.ChildProfile) types.DailyLogExtractionResult {
	fallback := fallbackExtractionResult(s.completions.Model())
	if !s.completions.Configured() {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.completions.GenerateText(ctx, extractionSystemPrompt, buildExtractionUserPrompt(childID, rawText, profile))
	if err != nil {
		s.log.Warn("daily log extraction request failed", "child_id", childID, "error", err)
		return fallback
	}

	result, ok := parseExtractionContent(content, s.completions.Model())
	if !ok {
		s.log.Warn("daily log extraction returned unusable content", "child_id", childID)
		return fallback
	}
	return result
}

func buildExtractionUserPrompt(childID, rawText string, profile *types.ChildProfile) string {
	profileJSON := "{}"
	if profile != nil {
		if raw, err := json.MarshalIndent(profile, "", "  "); err == nil {
			profileJSON = string(raw)
		}
	}

	return strings.Join([]string{
		"Child ID: " + childID,
		"Current Child Profile JSON:",
		profileJSON,
		"",
		"Reference report:",
		developmentReference,
		"",
		"Daily log raw text:",
		rawText,
	}, "\n")
}

func fallbackExtractionResult(model string) types.DailyLogExtractionResult {
	return types.DailyLogExtractionResult{
		StructuredLog: types.DailyLogStructuredInsights{
			KeyTakeaways: []string{},
			Sentiment:    "neutral",
		},
		ProfileCandidates: types.EmptyCandidates(),
		Model:             model,
		Source:            types.ExtractionSourceFallback,
	}
}

var codeFenceRe = regexp.MustCompile("(?is)```(?:json)?\\s*(.*?)\\s*```")

// unwrapJSONObject digs a JSON object out of model output that may be wrapped
// in prose or a fenced code block.
func unwrapJSONObject(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	if m := codeFenceRe.FindStringSubmatch(trimmed); len(m) == 2 && m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	first := strings.Index(trimmed, "{")
	last := strings.LastIndex(trimmed, "}")
	if first >= 0 && last > first {
		return trimmed[first : last+1]
	}
	return trimmed
}

type candidateWire struct {
	Value      *string  `json:"value"`
	Reason     *string  `json:"reason"`
	Confidence *float64 `json:"confidence"`
}

type extractionWire struct {
	StructuredLog *struct {
		KeyTakeaways []string `json:"keyTakeaways"`
		Sentiment    *string  `json:"sentiment"`
	} `json:"structuredLog"`
	ProfileCandidates *struct {
		Milestones    []candidateWire `json:"milestones"`
		ActiveSchemas []candidateWire `json:"activeSchemas"`
		Interests     []candidateWire `json:"interests"`
	} `json:"profileCandidates"`
}

func parseExtractionContent(content, model string) (types.DailyLogExtractionResult, bool) {
	var wire extractionWire
	if err := json.Unmarshal([]byte(unwrapJSONObject(content)), &wire); err != nil {
		return types.DailyLogExtractionResult{}, false
	}
	if wire.StructuredLog == nil || wire.ProfileCandidates == nil {
		return types.DailyLogExtractionResult{}, false
	}

	milestones, ok := validateCandidates(wire.ProfileCandidates.Milestones)
	if !ok {
		return types.DailyLogExtractionResult{}, false
	}
	schemas, ok := validateCandidates(wire.ProfileCandidates.ActiveSchemas)
	if !ok {
		return types.DailyLogExtractionResult{}, false
	}
	interests, ok := validateCandidates(wire.ProfileCandidates.Interests)
	if !ok {
		return types.DailyLogExtractionResult{}, false
	}

	takeaways := wire.StructuredLog.KeyTakeaways
	if takeaways == nil {
		takeaways = []string{}
	}
	sentiment := "neutral"
	if wire.StructuredLog.Sentiment != nil && strings.TrimSpace(*wire.StructuredLog.Sentiment) != "" {
		sentiment = *wire.StructuredLog.Sentiment
	}

	return types.DailyLogExtractionResult{
		StructuredLog: types.DailyLogStructuredInsights{
			KeyTakeaways: takeaways,
			Sentiment:    sentiment,
		},
		ProfileCandidates: types.ProfileUpdateCandidates{
			Milestones:    milestones,
			ActiveSchemas: schemas,
			Interests:     interests,
		},
		Model:  model,
		Source: types.ExtractionSourceOpenRouter,
	}, true
}

func validateCandidates(wire []candidateWire) ([]types.ProfileCandidateItem, bool) {
	out := make([]types.ProfileCandidateItem, 0, len(wire))
	for _, c := range wire {
		if c.Value == nil {
			return nil, false
		}
		// Blank values would render as empty review rows; drop them here.
		if strings.TrimSpace(*c.Value) == "" {
			continue
		}
		item := types.ProfileCandidateItem{
			Value:      *c.Value,
			Confidence: 0.5,
		}
		if c.Reason != nil {
			item.Reason = *c.Reason
		}
		if c.Confidence != nil {
			item.Confidence = clampConfidence(*c.Confidence)
		}
		out = append(out, item)
	}
	return out, true
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
