package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/yungbote/sprout-backend/internal/types"
)

type fakeCompletions struct {
	configured bool
	content    string
	err        error
	calls      int
}

func (f *fakeCompletions) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func (f *fakeCompletions) Model() string    { return "test-model" }
func (f *fakeCompletions) Configured() bool { return f.configured }

func newTestExtraction(t *testing.T, completions *fakeCompletions) ExtractionService {
	t.Helper()
	return NewExtractionService(testLogger(t), completions, 0)
}

const validExtractionJSON = `{
	"structuredLog": {"keyTakeaways": ["Tried crawling"], "sentiment": "positive"},
	"profileCandidates": {
		"milestones": [{"value": "Crawling", "reason": "observed", "confidence": 0.9}],
		"activeSchemas": [],
		"interests": [{"value": "Water play"}]
	}
}`

func TestExtractWithoutCredentialReturnsFallback(t *testing.T) {
	completions := &fakeCompletions{configured: false, content: validExtractionJSON}
	svc := newTestExtraction(t, completions)

	got := svc.Extract(context.Background(), "Yumi", "long detailed log text", nil)

	if got.Source != types.ExtractionSourceFallback {
		t.Fatalf("source want=%s got=%s", types.ExtractionSourceFallback, got.Source)
	}
	if got.StructuredLog.Sentiment != "neutral" {
		t.Fatalf("sentiment want=neutral got=%s", got.StructuredLog.Sentiment)
	}
	if len(got.ProfileCandidates.Milestones) != 0 || len(got.ProfileCandidates.ActiveSchemas) != 0 || len(got.ProfileCandidates.Interests) != 0 {
		t.Fatalf("candidates want empty got=%+v", got.ProfileCandidates)
	}
	if completions.calls != 0 {
		t.Fatalf("completion service should not be called without credential")
	}
}

func TestExtractMalformedResponseReturnsFallback(t *testing.T) {
	for _, content := range []string{
		"Sorry, I cannot help with that.",
		"{not json at all",
		`{"structuredLog": {"sentiment": "ok"}}`,
		`{"structuredLog": {"sentiment": "ok"}, "profileCandidates": {"milestones": [{"reason": "no value"}]}}`,
	} {
		completions := &fakeCompletions{configured: true, content: content}
		svc := newTestExtraction(t, completions)

		got := svc.Extract(context.Background(), "Yumi", "log text", nil)
		if got.Source != types.ExtractionSourceFallback {
			t.Fatalf("content %q: source want=fallback got=%s", content, got.Source)
		}
	}
}

func TestExtractUpstreamErrorReturnsFallback(t *testing.T) {
	completions := &fakeCompletions{configured: true, err: fmt.Errorf("connection refused")}
	svc := newTestExtraction(t, completions)

	got := svc.Extract(context.Background(), "Yumi", "log text", nil)
	if got.Source != types.ExtractionSourceFallback {
		t.Fatalf("source want=fallback got=%s", got.Source)
	}
}

func TestExtractParsesPlainJSON(t *testing.T) {
	completions := &fakeCompletions{configured: true, content: validExtractionJSON}
	svc := newTestExtraction(t, completions)

	got := svc.Extract(context.Background(), "Yumi", "log text", &types.ChildProfile{Name: "Yumi"})

	if got.Source != types.ExtractionSourceOpenRouter {
		t.Fatalf("source want=openrouter got=%s", got.Source)
	}
	if got.Model != "test-model" {
		t.Fatalf("model want=test-model got=%s", got.Model)
	}
	if len(got.StructuredLog.KeyTakeaways) != 1 || got.StructuredLog.KeyTakeaways[0] != "Tried crawling" {
		t.Fatalf("keyTakeaways got=%v", got.StructuredLog.KeyTakeaways)
	}
	if len(got.ProfileCandidates.Milestones) != 1 || got.ProfileCandidates.Milestones[0].Value != "Crawling" {
		t.Fatalf("milestones got=%+v", got.ProfileCandidates.Milestones)
	}
	// Missing reason and confidence take their defaults.
	interest := got.ProfileCandidates.Interests[0]
	if interest.Reason != "" || interest.Confidence != 0.5 {
		t.Fatalf("interest defaults got=%+v", interest)
	}
}

func TestExtractUnwrapsCodeFence(t *testing.T) {
	completions := &fakeCompletions{
		configured: true,
		content:    "Here is the result:\n```json\n" + validExtractionJSON + "\n```\nLet me know if you need more.",
	}
	svc := newTestExtraction(t, completions)

	got := svc.Extract(context.Background(), "Yumi", "log text", nil)
	if got.Source != types.ExtractionSourceOpenRouter {
		t.Fatalf("source want=openrouter got=%s", got.Source)
	}
}

func TestExtractBraceSubstringFallbackParsing(t *testing.T) {
	completions := &fakeCompletions{
		configured: true,
		content:    "Result follows " + validExtractionJSON + " end of answer",
	}
	svc := newTestExtraction(t, completions)

	got := svc.Extract(context.Background(), "Yumi", "log text", nil)
	if got.Source != types.ExtractionSourceOpenRouter {
		t.Fatalf("source want=openrouter got=%s", got.Source)
	}
}

func TestExtractClampsConfidence(t *testing.T) {
	completions := &fakeCompletions{
		configured: true,
		content: `{
			"structuredLog": {"keyTakeaways": [], "sentiment": ""},
			"profileCandidates": {
				"milestones": [{"value": "Walking", "confidence": 1.7}],
				"activeSchemas": [{"value": "Rotation", "confidence": -0.3}],
				"interests": []
			}
		}`,
	}
	svc := newTestExtraction(t, completions)

	got := svc.Extract(context.Background(), "Yumi", "log text", nil)
	if got.ProfileCandidates.Milestones[0].Confidence != 1 {
		t.Fatalf("confidence want=1 got=%v", got.ProfileCandidates.Milestones[0].Confidence)
	}
	if got.ProfileCandidates.ActiveSchemas[0].Confidence != 0 {
		t.Fatalf("confidence want=0 got=%v", got.ProfileCandidates.ActiveSchemas[0].Confidence)
	}
	if got.StructuredLog.Sentiment != "neutral" {
		t.Fatalf("blank sentiment should default to neutral, got=%q", got.StructuredLog.Sentiment)
	}
}

func TestExtractDropsBlankCandidateValues(t *testing.T) {
	completions := &fakeCompletions{
		configured: true,
		content: `{
			"structuredLog": {"keyTakeaways": ["Busy day"], "sentiment": "positive"},
			"profileCandidates": {
				"milestones": [{"value": "", "confidence": 0.9}, {"value": "Walking"}],
				"activeSchemas": [{"value": "   "}],
				"interests": []
			}
		}`,
	}
	svc := newTestExtraction(t, completions)

	got := svc.Extract(context.Background(), "Yumi", "log text", nil)
	if got.Source != types.ExtractionSourceOpenRouter {
		t.Fatalf("source want=openrouter got=%s", got.Source)
	}
	if len(got.ProfileCandidates.Milestones) != 1 || got.ProfileCandidates.Milestones[0].Value != "Walking" {
		t.Fatalf("milestones got=%+v", got.ProfileCandidates.Milestones)
	}
	if len(got.ProfileCandidates.ActiveSchemas) != 0 {
		t.Fatalf("whitespace-only candidate should be dropped, got=%+v", got.ProfileCandidates.ActiveSchemas)
	}
}

func TestUnwrapJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"already object", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"fenced no lang", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose wrapped", `the answer is {"a":1} thanks`, `{"a":1}`},
		{"no object", "nothing here", "nothing here"},
	}
	for _, tc := range cases {
		if got := unwrapJSONObject(tc.in); got != tc.want {
			t.Fatalf("%s: want=%q got=%q", tc.name, tc.want, got)
		}
	}
}
