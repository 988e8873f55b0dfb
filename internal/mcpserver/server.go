// Package mcpserver exposes the Orchestrator's generate pipeline as an MCP
// tool so editor/agent clients (Claude Code, Cursor) can call it directly.
// Grounded on the teacher's internal/mcp/server.go (mcp.NewServer +
// mcp.AddTool typed-handler registration, stdio transport Serve loop).
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/phazer-schmid/phasergun/pkg/phasergun"
	"github.com/phazer-schmid/phasergun/pkg/version"
)

// Server bridges an MCP client to a phasergun.Service.
type Server struct {
	mcp    *mcp.Server
	svc    *phasergun.Service
	logger *slog.Logger
}

// GenerateInput is the generate tool's input schema.
type GenerateInput struct {
	ProjectRoot        string `json:"projectRoot" jsonschema:"absolute path to the project root containing Procedures/ and Context/"`
	PrimaryContextPath string `json:"primaryContextPath,omitempty" jsonschema:"path to the file whose fingerprint gates the whole project cache"`
	Prompt             string `json:"prompt" jsonschema:"the task prompt, optionally containing [Procedure|...], [Master Record|...], or [Context|...] references"`
}

// GenerateOutput is the generate tool's output schema.
type GenerateOutput struct {
	Status           string            `json:"status"`
	GeneratedContent string            `json:"generatedContent"`
	References       []int             `json:"references"`
	ConfidenceLevel  string            `json:"confidenceLevel"`
	ConfidenceReason string            `json:"confidenceReason"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// New builds a Server bound to svc.
func New(svc *phasergun.Service) *Server {
	s := &Server{svc: svc, logger: svc.Logger}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "phasergun",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "generate",
		Description: "Answer a prompt grounded in a project's Procedures/ and Context/ directories, citing every excerpt used.",
	}, s.generateHandler)
	s.logger.Debug("registered MCP tool", slog.String("name", "generate"))
}

func (s *Server) generateHandler(ctx context.Context, _ *mcp.CallToolRequest, input GenerateInput) (*mcp.CallToolResult, GenerateOutput, error) {
	out, err := s.svc.Generate(ctx, input.ProjectRoot, input.PrimaryContextPath, input.Prompt)
	if err != nil {
		return nil, GenerateOutput{}, err
	}

	return nil, GenerateOutput{
		Status:           out.Status,
		GeneratedContent: out.GeneratedContent,
		References:       out.References,
		ConfidenceLevel:  string(out.Confidence.Level),
		ConfidenceReason: out.Confidence.Rationale,
		Metadata:         out.Metadata,
	}, nil
}

// Serve runs the MCP server over stdio until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server", slog.String("transport", "stdio"))
	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
	} else {
		s.logger.Info("MCP server stopped gracefully")
	}
	return err
}
