package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadabilityScoreSimpleText(t *testing.T) {
	simple := "The cat sat on the mat. The dog ran to the park."
	complex := "Notwithstanding considerable methodological heterogeneity, " +
		"the aforementioned epidemiological investigations demonstrated " +
		"statistically significant associations."

	simpleScore := ReadabilityScore(simple)
	complexScore := ReadabilityScore(complex)

	assert.Greater(t, simpleScore, complexScore)
	assert.GreaterOrEqual(t, simpleScore, 0.0)
	assert.LessOrEqual(t, simpleScore, 100.0)
}

func TestReadabilityScoreShortText(t *testing.T) {
	assert.Equal(t, neutralReadability, ReadabilityScore(""))
	assert.Equal(t, neutralReadability, ReadabilityScore("two words"))
}

func TestReadabilityScoreClamped(t *testing.T) {
	score := ReadabilityScore("Incomprehensibilities notwithstanding, " +
		"anthropomorphization characteristically misrepresents phenomenological interdependencies.")
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)
}
