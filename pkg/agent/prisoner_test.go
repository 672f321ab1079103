package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeklund/prisonlight/pkg/core"
	"github.com/jeklund/prisonlight/pkg/strategy"
)

func TestPrisonerStartsWithEmptyKnowledge(t *testing.T) {
	strat, err := strategy.New(strategy.DayCounter)
	require.NoError(t, err)

	p := NewPrisoner(core.AgentID(7), 10, strat)
	assert.Equal(t, core.AgentID(7), p.ID())
	assert.Equal(t, uint32(0), p.CountKnown())
	assert.False(t, p.Knows(core.AgentID(7)))
}

func TestPrisonerDecideMarksSelf(t *testing.T) {
	strat, err := strategy.New(strategy.DayCounter)
	require.NoError(t, err)

	p := NewPrisoner(core.AgentID(0), 10, strat)
	p.Decide(3, false)

	assert.True(t, p.Knows(core.AgentID(0)))
	assert.Equal(t, uint32(1), p.CountKnown())
}
