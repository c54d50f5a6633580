package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("FOUNDERSCOPE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("FOUNDERSCOPE_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "FOUNDERSCOPE_API_KEY is required")
		os.Exit(1)
	}

	s := newServer(newClient(apiURL, apiKey))
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func newServer(c *client) *server.MCPServer {
	s := server.NewMCPServer(
		"founderscope",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("list_companies",
		mcp.WithDescription("List the names of every company in the founder store."),
	), handleListCompanies(c))

	s.AddTool(mcp.NewTool("get_company",
		mcp.WithDescription("Return the stored record of one company: description, industries, stage and the scraped profile of each founder (connections, location, education, experience)."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Exact organization name as listed by list_companies"),
		),
	), handleGetCompany(c))

	s.AddTool(mcp.NewTool("scrape_company",
		mcp.WithDescription("Look up every listed founder of a company on the signed-in session and store the result. Slow: expect a minute or more per founder. Requires the server to run with --live."),
		mcp.WithString("organization_name",
			mcp.Required(),
			mcp.Description("Company name; the store key"),
		),
		mcp.WithString("founders",
			mcp.Required(),
			mcp.Description("Comma-separated founder names"),
		),
		mcp.WithString("linkedin",
			mcp.Required(),
			mcp.Description("Company profile URL"),
		),
		mcp.WithString("description", mcp.Description("Company description")),
		mcp.WithString("industries", mcp.Description("Comma-separated industries")),
		mcp.WithString("website", mcp.Description("Company website")),
		mcp.WithString("last_funding_type", mcp.Description("Last funding stage")),
		mcp.WithString("headquarters_location", mcp.Description("Headquarters location")),
		mcp.WithString("strategy",
			mcp.Description("Navigation strategy: 'roster' searches the company's people page, 'global' uses site-wide search"),
			mcp.Enum("roster", "global"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Maximum seconds for the whole company (default: 300, max: 1800)"),
		),
	), handleScrapeCompany(c))

	return s
}
