package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numberhop/numberhop/pkg/domain"
)

func TestHandlePlanWalk(t *testing.T) {
	s := NewServer("test")

	resp, err := s.handlePlanWalk(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"expression": "5+8-2",
	})
	require.NoError(t, err)

	assert.Equal(t, []int{5, 8, -2}, resp.Steps)
	assert.Equal(t, 8, resp.FinalPosition)
	require.Len(t, resp.Moves, 3)
	// The second hop hits the top edge: 5+8 lands on 10, not 13.
	assert.Equal(t, domain.Move{From: 5, To: 10, AppliedValue: 5, SequenceID: 1}, resp.Moves[1])
}

func TestHandlePlanWalkRejectsEmptyExpression(t *testing.T) {
	s := NewServer("test")

	_, err := s.handlePlanWalk(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"expression": "hop",
	})
	require.Error(t, err)

	_, err = s.handlePlanWalk(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{})
	require.Error(t, err)
}

func TestHandleParseExpression(t *testing.T) {
	s := NewServer("test")

	resp, err := s.handleParseExpression(context.Background(), mcp.CallToolRequest{}, map[string]interface{}{
		"expression": "12-3",
	})
	require.NoError(t, err)
	assert.Equal(t, []int{12, -3}, resp.Steps)
}
