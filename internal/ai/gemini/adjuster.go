package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/fit-screener/internal/ai"
	"github.com/spigell/fit-screener/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed system.md
var systemPrompt string

//go:embed prompt.md
var promptTemplate string

//go:embed schema.json
var responseSchema string

var responseSchemaLoader = gojsonschema.NewStringLoader(responseSchema)

const (
	defaultMaxLogLength     = 200
	maxUserInstructionRunes = 500
	noneValue               = "none"
	notProvided             = "(not provided)"
)

// Adjuster asks Gemini for a qualitative review of a candidate.
type Adjuster struct {
	generator    contentGenerator
	logger       *zap.Logger
	maxLogLen    int
	instructions string
}

// NewAdjuster wraps a generator. maxLogLength bounds prompt and response
// previews in debug logs.
func NewAdjuster(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Adjuster {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Adjuster{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// SetInstructions sets advisory reviewer instructions from the operator.
func (a *Adjuster) SetInstructions(instructions string) {
	a.instructions = instructions
}

func (a *Adjuster) Model() string {
	return a.generator.Model()
}

// Assess sends the candidate to Gemini. A response that fails schema
// validation is an error. An unusable adjustment is not: the assessment is
// returned with HasAdjustment unset.
func (a *Adjuster) Assess(ctx context.Context, req *ai.Request) (*ai.Assessment, error) {
	if req == nil {
		return nil, fmt.Errorf("review request is required")
	}

	message := buildPrompt(req, a.instructions)

	a.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(message)),
		zap.String("prompt_preview", utils.TruncateForLog(message, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemPrompt, message)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	assessment, adjErr := parseResponse(raw)
	if assessment == nil {
		return nil, adjErr
	}
	if adjErr != nil {
		a.logger.Warn("ignoring malformed adjustment", zap.Error(adjErr))
	}

	assessment.Model = a.Model()
	assessment.Raw = raw
	return assessment, nil
}

func buildPrompt(req *ai.Request, instructions string) string {
	replacer := strings.NewReplacer(
		"{{USER_INSTRUCTIONS}}", sanitizeInstructions(instructions),
		"{{JOB_DESCRIPTION}}", orNotProvided(req.JobDescription),
		"{{SCORES}}", formatScores(req),
		"{{RESUME}}", orNotProvided(req.Resume),
		"{{LINKEDIN}}", orNotProvided(req.LinkedIn),
		"{{GITHUB}}", orNotProvided(req.GitHubSummary),
	)
	return replacer.Replace(promptTemplate)
}

func formatScores(req *ai.Request) string {
	var b strings.Builder
	for _, sub := range req.Breakdown.SubScores {
		fmt.Fprintf(&b, "- %s: %.2f (weight %.2f)\n", sub.Category, sub.Value, sub.Weight)
	}
	fmt.Fprintf(&b, "- base score: %.2f", req.Breakdown.Base)
	return b.String()
}

func orNotProvided(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return notProvided
	}
	return s
}

// sanitizeInstructions renders operator instructions as an indented list,
// neutralising section markers and bounding the length.
func sanitizeInstructions(raw string) string {
	raw = strings.NewReplacer("[", "(", "]", ")", "\r\n", "\n", "\r", "\n").Replace(raw)

	var lines []string
	budget := maxUserInstructionRunes
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || budget <= 0 {
			continue
		}
		if runes := []rune(line); len(runes) > budget {
			line = string(runes[:budget])
		}
		budget -= utf8.RuneCountInString(line)
		lines = append(lines, "  - "+line)
	}

	if len(lines) == 0 {
		return "  - " + noneValue
	}
	return strings.Join(lines, "\n")
}

type reviewResponse struct {
	Summary    string `mapstructure:"summary"`
	Adjustment any    `mapstructure:"llm_adjustment"`
	Reasoning  string `mapstructure:"adjustment_reasoning"`
	Breakdown  struct {
		StrongEvidence []string `mapstructure:"strong_evidence"`
		WeakEvidence   []string `mapstructure:"weak_evidence"`
		MissingSkills  []string `mapstructure:"missing_skills"`
		RedFlags       []string `mapstructure:"red_flags"`
	} `mapstructure:"breakdown"`
	InterviewQuestions []string `mapstructure:"interview_questions"`
}

// parseResponse returns a nil assessment on structural failure. A non-nil
// assessment with a non-nil error means only the adjustment was unusable.
func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	result, err := gojsonschema.Validate(responseSchemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("gemini response does not match schema: %s", strings.Join(problems, "; "))
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	var resp reviewResponse
	if err := mapstructure.Decode(data, &resp); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}

	assessment := &ai.Assessment{
		Summary:            strings.TrimSpace(resp.Summary),
		Reasoning:          strings.TrimSpace(resp.Reasoning),
		StrongEvidence:     resp.Breakdown.StrongEvidence,
		WeakEvidence:       resp.Breakdown.WeakEvidence,
		MissingSkills:      resp.Breakdown.MissingSkills,
		RedFlags:           resp.Breakdown.RedFlags,
		InterviewQuestions: resp.InterviewQuestions,
	}

	adjustment, err := coerceAdjustment(resp.Adjustment)
	if err != nil {
		return assessment, err
	}
	assessment.Adjustment = adjustment
	assessment.HasAdjustment = true

	return assessment, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

// coerceAdjustment accepts numbers and numeric strings and rounds them to
// the nearest integer. Range checking is left to the blender.
func coerceAdjustment(v any) (int, error) {
	f := coerceFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &ai.MalformedAdjustmentError{Value: v}
	}
	// Keep absurd values representable; the blender clamps them.
	f = math.Max(-1e6, math.Min(1e6, f))
	return int(math.Round(f)), nil
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimPrefix(strings.TrimSpace(val), "+")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
