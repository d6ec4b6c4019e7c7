package usecase

import (
	_ "embed"
	"fmt"
	"math/rand"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fairyhunter13/ai-interviewer/internal/domain"
)

//go:embed fallback_questions.yaml
var fallbackQuestionsYAML []byte

type fallbackEntry struct {
	Question string `yaml:"question"`
	Hint     string `yaml:"hint"`
}

// fallbackPools holds the pre-written question pools keyed by session
// category, plus a "generic" pool for unknown categories. Loaded once at
// package init; the file is embedded so the fallback path needs no I/O.
var fallbackPools map[string][]fallbackEntry

func init() {
	if err := yaml.Unmarshal(fallbackQuestionsYAML, &fallbackPools); err != nil {
		panic(fmt.Sprintf("fallback_questions.yaml: %v", err))
	}
	if len(fallbackPools["generic"]) == 0 {
		panic("fallback_questions.yaml: generic pool missing")
	}
}

// pickFallbackQuestion selects a question+hint uniformly at random from the
// category's pool, interpolating the job role. Unknown categories use the
// generic pool.
func pickFallbackQuestion(category domain.SessionCategory, jobRole string) (text, hint string) {
	pool, ok := fallbackPools[string(category)]
	if !ok || len(pool) == 0 {
		pool = fallbackPools["generic"]
	}
	e := pool[rand.Intn(len(pool))]
	return interpolateRole(e.Question, jobRole), interpolateRole(e.Hint, jobRole)
}

func interpolateRole(tmpl, role string) string {
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, role)
}
