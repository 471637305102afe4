package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/smart-evolve/grading-service/internal/models"
)

const gradingTemperature = 0.3

const defaultScoringRules = "No specific rules provided. Assume all questions are mandatory and in order."

// GradingInput is everything the grading model sees.
type GradingInput struct {
	QuestionText string
	KeyText      string
	StudentText  string
	ScoringRules string
	Mode         models.EvaluationMode
	DiagramCount int
}

// GradingOutcome is the parsed model response.
type GradingOutcome struct {
	Report    string // student-facing Markdown
	Analytics models.Analytics
	Raw       string
}

// Grader runs the final evaluation call against the model.
type Grader struct {
	gen    Generator
	logger *slog.Logger
}

func NewGrader(gen Generator, logger *slog.Logger) *Grader {
	return &Grader{gen: gen, logger: logger}
}

// Grade sends the grading prompt and parses the response. An API failure is
// an error; a malformed response is not (the parser degrades, see parse.go).
func (g *Grader) Grade(ctx context.Context, input GradingInput) (*GradingOutcome, error) {
	prompt := BuildGradingPrompt(input)

	raw, err := g.gen.Generate(ctx, []Part{TextPart(prompt)}, gradingTemperature)
	if err != nil {
		return nil, fmt.Errorf("grading call failed: %w", err)
	}

	report, analytics, parseErr := ParseResponse(raw)
	if parseErr != nil {
		g.logger.Warn("could not decode analytics JSON from grading response, analytics unavailable",
			"error", parseErr)
	}

	return &GradingOutcome{Report: report, Analytics: analytics, Raw: raw}, nil
}

// philosophyFor returns the grading philosophy block injected into the
// prompt for each mode.
func philosophyFor(mode models.EvaluationMode) string {
	switch mode {
	case models.ModeLenient:
		return `- **Philosophy:** Be generous. Award partial credit for any reasonable attempt.
- **Keywords:** If the student's answer shows they understand the core concept, award most of the marks, even if they miss specific keywords.
- **Errors:** Be very tolerant of OCR errors, spelling mistakes, and different phrasing.
- **Partials:** Grant credit for partially correct answers.`
	case models.ModeStrict:
		return `- **Philosophy:** Be precise. Adhere closely to the answer key for full credit.
- **Keywords:** Award marks based on the presence of specific keywords from the answer key.
- **Errors:** Full marks require all details. Incomplete or incorrect answers should receive reduced credit.
- **Partials:** Award credit only for parts of the answer that are fully correct and complete.`
	default:
		return `- **Philosophy:** Be balanced and fair. This is a standard university-level grading.
- **Keywords:** The student must include the main keywords, but allow for some phrasing flexibility.
- **Errors:** Tolerate minor spelling or OCR errors, but deduct for clear conceptual mistakes.
- **Partials:** Grant partial credit where deserved, but do not be overly generous.`
	}
}

// BuildGradingPrompt assembles the single-shot grading prompt. The response
// contract (JSON block first, Markdown report after) is what ParseResponse
// expects.
func BuildGradingPrompt(input GradingInput) string {
	rules := strings.TrimSpace(input.ScoringRules)
	if rules == "" {
		rules = defaultScoringRules
	}

	mode := input.Mode
	if !models.ValidMode(mode) {
		mode = models.ModeModerate
	}

	var b strings.Builder

	b.WriteString("You are an expert teaching assistant. Your task is to grade a student's answer sheet.\n\n")

	b.WriteString("Here is the Question Paper:\n---\n")
	b.WriteString(input.QuestionText)
	b.WriteString("\n---\n\n")

	b.WriteString("Here is the official Answer Key:\n---\n")
	b.WriteString(input.KeyText)
	b.WriteString("\n---\n\n")

	b.WriteString("Here is the Student's Handwritten Answer Sheet:\n---\n")
	b.WriteString(input.StudentText)
	b.WriteString("\n---\n\n")

	b.WriteString("Here is an analysis from a separate diagram detection tool:\n")
	fmt.Fprintf(&b, "- Potential diagrams found: %d\n---\n\n", input.DiagramCount)

	b.WriteString("Here are the critical Scoring Rules & Question Structure:\n- ")
	b.WriteString(rules)
	b.WriteString("\n---\n\n")

	fmt.Fprintf(&b, "**CRITICAL GRADING PHILOSOPHY (MODE: %s)**\n", mode)
	b.WriteString("You MUST follow this philosophy while grading:\n")
	b.WriteString(philosophyFor(mode))
	b.WriteString("\n---\n\n")

	b.WriteString(`**TASK:**
Provide two things:
1.  A structured JSON object with detailed analytics.
2.  A comprehensive, student-facing evaluation report in Markdown.

**JSON Analytics Format (Task 1):**
Create a JSON object inside a ` + "```json" + ` code block with this exact structure:
{
    "total_score": {"awarded": <int>, "max": <int>, "percentage": <float>},
    "section_wise": [
        {"section": "<Section Name>", "awarded": <int>, "max": <int>, "percentage": <float>}
    ],
    "question_wise": [
        {"question": "<Q#>", "awarded": <int>, "max": <int>, "percentage": <float>}
    ],
    "diagram_performance": {"required_estimate": <int>, "found_estimate": <int>},
    "detailed_breakdown": [
        {"question": "<Q#>", "part": "<part>", "description": "<Key answer concept>", "feedback": "<Specific feedback on student's answer>", "marks_awarded": <int>, "max_marks": <int>}
    ]
}
`)
	fmt.Fprintf(&b, `- "required_estimate" is your best guess of required diagrams from the key.
- "found_estimate" is your best guess of how many the student drew (using the %d as a hint).
- "detailed_breakdown" MUST contain one entry for each sub-part of each question the student attempted. "description" should be a 2-5 word summary of the answer key concept.

`, input.DiagramCount)

	fmt.Fprintf(&b, `**Markdown Report (Task 2):**
After the JSON block, write the full, student-facing *feedback summary* in Markdown.
- Provide a brief summary of the performance *based on the %s philosophy*.
- Mention diagram performance, using the %d count as a reference.
- Conclude with a "Strengths" section (bullet points).
- Conclude with an "Areas for Improvement" section (bullet points).
- **DO NOT** include the overall score or the detailed table in this markdown report.

Begin your response with the JSON block.
`, mode, input.DiagramCount)

	return b.String()
}
