// Package mcp exposes the walk engine to language-model tooling over
// the Model Context Protocol. The tools are pure: they plan walks
// without running timers, so a model can reason about hops instantly.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"

	"github.com/numberhop/numberhop/internal/expr"
	"github.com/numberhop/numberhop/internal/sequencer"
	"github.com/numberhop/numberhop/pkg/domain"
)

// PlanResponse describes a planned walk: the parsed steps and every
// hop the board would commit, with clamping applied.
type PlanResponse struct {
	Expression    string        `json:"expression" jsonschema_description:"The expression that was planned"`
	Steps         []int         `json:"steps" jsonschema_description:"Signed steps parsed from the expression"`
	Moves         []domain.Move `json:"moves" jsonschema_description:"Hops the walk would commit, board limits applied"`
	FinalPosition int           `json:"final_position" jsonschema_description:"Where the walk lands"`
}

// ParseResponse carries the raw steps of an expression.
type ParseResponse struct {
	Expression string `json:"expression" jsonschema_description:"The expression that was parsed"`
	Steps      []int  `json:"steps" jsonschema_description:"Signed steps parsed from the expression"`
}

// Server exposes the planner as an MCP server.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(version string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer("numberhop-mcp", version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: sseServer,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: plan_walk
	planTool := mcp.NewTool("plan_walk",
		mcp.WithDescription("Plan a number line walk for an arithmetic expression. Returns every hop with board limits applied and the landing position."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Arithmetic expression, e.g. \"12-3\"")),
		mcp.WithOutputSchema[PlanResponse](),
	)
	s.mcpServer.AddTool(planTool, mcp.NewStructuredToolHandler(s.handlePlanWalk))

	// TOOL: parse_expression
	parseTool := mcp.NewTool("parse_expression",
		mcp.WithDescription("Parse an arithmetic expression into signed steps without planning the walk."),
		mcp.WithString("expression", mcp.Required(), mcp.Description("Arithmetic expression, e.g. \"5--3\"")),
		mcp.WithOutputSchema[ParseResponse](),
	)
	s.mcpServer.AddTool(parseTool, mcp.NewStructuredToolHandler(s.handleParseExpression))
}

// toolArgs is the argument shape both tools share.
type toolArgs struct {
	Expression string `mapstructure:"expression"`
}

func (s *Server) handlePlanWalk(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (PlanResponse, error) {
	var in toolArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return PlanResponse{}, fmt.Errorf("bad arguments: %w", err)
	}
	steps := expr.Parse(in.Expression)
	if len(steps) == 0 {
		return PlanResponse{}, fmt.Errorf("expression %q holds no steps", in.Expression)
	}

	return PlanResponse{
		Expression:    in.Expression,
		Steps:         steps,
		Moves:         sequencer.Plan(steps),
		FinalPosition: sequencer.Final(steps),
	}, nil
}

func (s *Server) handleParseExpression(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ParseResponse, error) {
	var in toolArgs
	if err := mapstructure.Decode(args, &in); err != nil {
		return ParseResponse{}, fmt.Errorf("bad arguments: %w", err)
	}
	steps := expr.Parse(in.Expression)
	if len(steps) == 0 {
		return ParseResponse{}, fmt.Errorf("expression %q holds no steps", in.Expression)
	}

	return ParseResponse{Expression: in.Expression, Steps: steps}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: numberhop://board
	s.mcpServer.AddResource(mcp.NewResource("numberhop://board", "Board Rules",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		timings := sequencer.DefaultTimings()
		board := map[string]any{
			"min_position":  domain.MinPosition,
			"max_position":  domain.MaxPosition,
			"phases":        []domain.Phase{domain.PhaseIdle, domain.PhaseMoving, domain.PhasePaused},
			"transition_ms": timings.Transition.Milliseconds(),
			"hold_ms":       timings.Hold.Milliseconds(),
			"pause_ms":      timings.Pause.Milliseconds(),
		}
		jsonBytes, _ := json.Marshal(board)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "numberhop://board",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
