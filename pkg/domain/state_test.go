package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/mathsolver/pkg/domain"
)

func TestTransitions_TerminalStagesHaveNoExit(t *testing.T) {
	for _, tr := range domain.Transitions() {
		assert.False(t, tr.From.Terminal(), "%s -> %s leaves a terminal stage", tr.From, tr.To)
	}
}

func TestTransitions_EveryStageReachable(t *testing.T) {
	reached := map[domain.Stage]bool{domain.StageReceived: true}
	for _, tr := range domain.Transitions() {
		assert.True(t, reached[tr.From], "%s used before it is reached", tr.From)
		reached[tr.To] = true
	}
	for _, s := range []domain.Stage{
		domain.StageAnalyzing, domain.StageFallback, domain.StageComputing,
		domain.StageExplaining, domain.StageCompleted, domain.StageError,
	} {
		assert.True(t, reached[s], "%s unreachable", s)
	}
}
