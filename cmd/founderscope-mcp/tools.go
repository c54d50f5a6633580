package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/founderscope/models"
)

func handleListCompanies(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		body, err := c.get(ctx, "/api/v1/companies")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp models.CompanyListResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return apiError(body, "listing companies failed"), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d companies:\n\n", resp.Total)
		for _, n := range resp.Names {
			sb.WriteString(n + "\n")
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleGetCompany(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}

		body, err := c.get(ctx, "/api/v1/companies/"+url.PathEscape(name))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var resp models.CompanyResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success || resp.Company == nil {
			return errorResult(resp.Error, "company lookup failed"), nil
		}
		return mcp.NewToolResultText(formatCompany(resp.Company)), nil
	}
}

func handleScrapeCompany(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var rec models.CompanyRecord
		var err error
		if rec.OrganizationName, err = request.RequireString("organization_name"); err != nil {
			return mcp.NewToolResultError("organization_name is required"), nil
		}
		if rec.Founders, err = request.RequireString("founders"); err != nil {
			return mcp.NewToolResultError("founders is required"), nil
		}
		if rec.LinkedIn, err = request.RequireString("linkedin"); err != nil {
			return mcp.NewToolResultError("linkedin is required"), nil
		}
		rec.Description = request.GetString("description", "")
		rec.Industries = request.GetString("industries", "")
		rec.Website = request.GetString("website", "")
		rec.LastFundingType = request.GetString("last_funding_type", "")
		rec.HeadquartersLocation = request.GetString("headquarters_location", "")

		payload := models.ScrapeRequest{
			Record:   rec,
			Strategy: request.GetString("strategy", ""),
			Timeout:  int(request.GetFloat("timeout", 0)),
		}

		body, err := c.post(ctx, "/api/v1/scrape", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scrape request failed: %v", err)), nil
		}

		var resp models.ScrapeResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success || resp.Company == nil {
			return errorResult(resp.Error, "scrape failed"), nil
		}

		header := fmt.Sprintf("Resolved %d of %d founders in %.1fs\n\n",
			resp.Resolved, len(resp.Company.Founders), float64(resp.Timing.TotalMs)/1000)
		return mcp.NewToolResultText(header + formatCompany(resp.Company)), nil
	}
}

// formatCompany renders a one-line summary followed by the record as
// indented JSON.
func formatCompany(c *models.Company) string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		data = []byte(err.Error())
	}
	return fmt.Sprintf("%s (%s, %d founders)\n\n%s", c.Name, c.LastStage, len(c.Founders), data)
}

func errorResult(e *models.ErrorDetail, fallback string) *mcp.CallToolResult {
	if e == nil {
		return mcp.NewToolResultError(fallback)
	}
	return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", e.Code, e.Message))
}

func apiError(body []byte, fallback string) *mcp.CallToolResult {
	var resp models.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return mcp.NewToolResultError(fallback)
	}
	return errorResult(resp.Error, fallback)
}
