// Package mcp provides the stdio MCP server exposing the legal-evolution
// query and aggregate tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/go-ports/lexmemory/internal/buildinfo"
	"github.com/go-ports/lexmemory/internal/models"
	"github.com/go-ports/lexmemory/internal/service"
)

// previewLen caps the content excerpt returned per match.
const previewLen = 200

const queryDescription = `Query the Argentine legal-evolution corpus in natural language (Spanish works best). Returns a synthesized answer, the matching evolution cases and crisis periods ranked by keyword overlap, derived insights (dominant legal area, success rate, temporal span), cited sources and a confidence estimate.`

const velocityDescription = `Summarize legal-evolution velocity metrics: number of metrics, periods analyzed, metric types and the average reform frequency. Optionally restricted to one legal area.`

const transplantsDescription = `Summarize legal transplants (institutions adopted from foreign jurisdictions): success levels, the share of highly successful transplants and required adaptation. Optionally restricted to one origin country.`

const crisisDescription = `Summarize how crisis periods accelerated legal change: average and maximum acceleration factor and severity distribution. Optionally restricted to crisis types containing the given text.`

// NewServer creates and registers all legal tools on a new MCP server.
// It is intentionally separate from Serve so that tests and other callers can
// obtain a fully configured server without committing to the stdio transport.
func NewServer(svc *service.Service) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("lexmem", buildinfo.Version)
	registerTools(s, svc)
	return s
}

// Serve starts the stdio MCP server over the corpus in dataDir, blocking
// until stdin closes.
func Serve(ctx context.Context, dataDir string) error {
	svc, err := service.New(ctx, dataDir)
	if err != nil {
		return fmt.Errorf("mcp: init service: %w", err)
	}
	defer svc.Close()

	return mcpserver.ServeStdio(NewServer(svc))
}

// registerTools wires all four MCP tools into the server.
func registerTools(s *mcpserver.MCPServer, svc *service.Service) {
	s.AddTool(mcp.NewTool("legal_query",
		mcp.WithDescription(queryDescription),
		mcp.WithString("query",
			mcp.Description("Question or search terms."),
			mcp.Required(),
		),
		mcp.WithString("type",
			mcp.Description("Restrict to one record type. Both are searched if omitted."),
			mcp.Enum("case", "crisis"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max matches (default: retrieval_top_k from config)."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleQuery(ctx, svc, req)
	})

	s.AddTool(mcp.NewTool("legal_velocity",
		mcp.WithDescription(velocityDescription),
		mcp.WithString("legal_area",
			mcp.Description("Legal area, e.g. civil. Exact match."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := svc.AnalyzeVelocity(ctx, req.GetString("legal_area", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(out)
	})

	s.AddTool(mcp.NewTool("legal_transplants",
		mcp.WithDescription(transplantsDescription),
		mcp.WithString("origin_country",
			mcp.Description("Origin country. Exact match."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := svc.TrackTransplants(ctx, req.GetString("origin_country", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(out)
	})

	s.AddTool(mcp.NewTool("legal_crisis_impact",
		mcp.WithDescription(crisisDescription),
		mcp.WithString("crisis_type",
			mcp.Description("Substring of the crisis type (case-sensitive)."),
		),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := svc.CrisisImpact(ctx, req.GetString("crisis_type", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(out)
	})
}

// ---------------------------------------------------------------------------
// Tool handlers
// ---------------------------------------------------------------------------

func handleQuery(ctx context.Context, svc *service.Service, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter, err := models.ParseRecordType(req.GetString("type", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := svc.QueryTopK(ctx, req.GetString("query", ""), filter, req.GetInt("limit", 0))
	if err != nil {
		var qerr *models.QueryError
		if errors.As(err, &qerr) {
			return jsonResult(qerr.Failure())
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(map[string]any{
		"id":             res.ID,
		"query":          res.Query,
		"response":       res.Response,
		"analysis":       res.Analysis,
		"insights":       res.Insights,
		"matches":        matchSummaries(res.Matches),
		"relevant_cases": res.RelevantCaseIDs,
		"confidence":     roundTwo(res.Confidence),
		"sources":        res.Sources,
		"timestamp":      res.Timestamp,
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func matchSummaries(matches []models.ScoredMatch) []map[string]any {
	out := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		out = append(out, map[string]any{
			"id":       m.ID,
			"type":     m.Type,
			"score":    roundTwo(m.Score),
			"metadata": m.Metadata,
			"preview":  truncate(m.Content, previewLen),
		})
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return s
}

// roundTwo rounds f to 2 decimal places.
func roundTwo(f float64) float64 {
	return math.Round(f*100) / 100
}
