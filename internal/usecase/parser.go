package usecase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
	"github.com/fairyhunter13/ai-interviewer/pkg/textx"
)

// ErrMalformedEvaluation reports that the evaluator's free-text response did
// not follow the labeled section format.
var ErrMalformedEvaluation = errors.New("malformed evaluation response")

// evaluationLabels in strict left-to-right order. The evaluator instructs the
// model to emit exactly these sections; anything else is a parse failure.
var evaluationLabels = [4]string{"Feedback:", "Rating:", "Strengths:", "Improvements:"}

// ParseEvaluation extracts the structured evaluation from raw model output.
// The text between each label and the next is that field's value, trimmed of
// whitespace. The rating is the digits of the substring before any "/",
// parsed as an integer; values outside [1,10] count as a parse failure so a
// returned Evaluation never carries an out-of-range rating.
func ParseEvaluation(raw string) (domain.Evaluation, error) {
	var idx [4]int
	pos := 0
	for i, label := range evaluationLabels {
		j := strings.Index(raw[pos:], label)
		if j < 0 {
			return domain.Evaluation{}, fmt.Errorf("%w: missing %q", ErrMalformedEvaluation, label)
		}
		idx[i] = pos + j
		pos = idx[i] + len(label)
	}
	section := func(i int) string {
		start := idx[i] + len(evaluationLabels[i])
		if i == len(idx)-1 {
			return strings.TrimSpace(raw[start:])
		}
		return strings.TrimSpace(raw[start:idx[i+1]])
	}
	rating, err := parseRating(section(1))
	if err != nil {
		return domain.Evaluation{}, err
	}
	return domain.Evaluation{
		Feedback:     section(0),
		Rating:       rating,
		Strengths:    section(2),
		Improvements: section(3),
	}, nil
}

func parseRating(s string) (int, error) {
	before, _, _ := strings.Cut(s, "/")
	var digits strings.Builder
	for _, r := range before {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, fmt.Errorf("%w: rating %q not numeric", ErrMalformedEvaluation, s)
	}
	if n < 1 || n > 10 {
		return 0, fmt.Errorf("%w: rating %d out of range", ErrMalformedEvaluation, n)
	}
	return n, nil
}

// rawPrefixLen bounds how much raw model output is echoed back on parse
// failure for diagnosis.
const rawPrefixLen = 200

// FallbackEvaluation returns the fixed safe evaluation used when the model
// response could not be parsed. It embeds a truncated prefix of the raw text.
func FallbackEvaluation(raw string) domain.Evaluation {
	return domain.Evaluation{
		Feedback:     "Could not parse detailed AI feedback. Raw response: " + textx.Truncate(raw, rawPrefixLen),
		Rating:       5,
		Strengths:    "Response provided",
		Improvements: "Please provide more detailed answers",
	}
}
