package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/smart-evolve/grading-service/internal/models"
)

// Matches the first ```json fenced block. (?s) lets the object span lines;
// the lazy quantifier stops at the first closing fence.
var jsonBlockPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// ParseResponse splits the raw grading response into the Markdown report and
// the structured analytics.
//
// Degradation rules, in order:
//   - no JSON block: the whole response is the report, analytics stay zero;
//   - JSON block present but undecodable: the whole raw response becomes the
//     report (so nothing the model wrote is lost) and the error is returned
//     for logging;
//   - otherwise: analytics decode and the report is the text around the block.
//
// The returned error is advisory; callers always get a usable report.
func ParseResponse(raw string) (string, models.Analytics, error) {
	var analytics models.Analytics

	match := jsonBlockPattern.FindStringSubmatch(raw)
	if match == nil {
		return strings.TrimSpace(raw), analytics, nil
	}

	if err := json.Unmarshal([]byte(match[1]), &analytics); err != nil {
		return strings.TrimSpace(raw), models.Analytics{}, fmt.Errorf("failed to decode analytics block: %w", err)
	}

	report := strings.TrimSpace(strings.Replace(raw, match[0], "", 1))
	return report, analytics, nil
}
