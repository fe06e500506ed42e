// ABOUTME: MCP resource implementations for the wellness tracker.
// ABOUTME: Provides wellness://today, wellness://weight and wellness://report resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	uriToday  = "wellness://today"
	uriWeight = "wellness://weight"
	uriReport = "wellness://report"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriToday,
		Name:        "Today",
		Description: "Today's meals and activities with intake, burn and net calories",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriWeight,
		Name:        "Weight Goal",
		Description: "Current weight, goal progress and this week's weigh-ins",
		MIMEType:    "application/json",
	}, s.handleWeightResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         uriReport,
		Name:        "Weekly Report",
		Description: "Seven days of intake vs burn, averages and macro split",
		MIMEType:    "application/json",
	}, s.handleReportResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// Resource handlers

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	out, err := s.today(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load today: %w", err)
	}
	return jsonResource(uriToday, out)
}

func (s *Server) handleWeightResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	_, out, err := s.handleGetWeight(ctx, nil, emptyInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to load weight: %w", err)
	}
	return jsonResource(uriWeight, out)
}

func (s *Server) handleReportResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	out, err := s.report(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return jsonResource(uriReport, out)
}
