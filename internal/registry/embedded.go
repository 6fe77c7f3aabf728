package registry

// embeddedCatalog is the hardcoded fallback used when the remote registry is
// unavailable. It mirrors the well-known reference servers so diagnostics and
// package validation keep working offline.
func embeddedCatalog() Document {
	return Document{
		Version:     "embedded-2026.02",
		LastUpdated: "2026-02-01T00:00:00Z",
		Entries: []Entry{
			{
				ID:                "filesystem",
				Name:              "Filesystem",
				PackageIdentifier: "@modelcontextprotocol/server-filesystem",
				Status:            "verified",
			},
			{
				ID:                "memory",
				Name:              "Memory",
				PackageIdentifier: "@modelcontextprotocol/server-memory",
				Status:            "verified",
			},
			{
				ID:                "sequential-thinking",
				Name:              "Sequential Thinking",
				PackageIdentifier: "@modelcontextprotocol/server-sequential-thinking",
				Status:            "verified",
			},
			{
				ID:                "everything",
				Name:              "Everything",
				PackageIdentifier: "@modelcontextprotocol/server-everything",
				Status:            "verified",
			},
			{
				ID:                "playwright",
				Name:              "Playwright",
				PackageIdentifier: "@playwright/mcp",
				Status:            "verified",
			},
			{
				ID:                "notion",
				Name:              "Notion",
				PackageIdentifier: "@notionhq/notion-mcp-server",
				Status:            "verified",
			},
			{
				ID:                "firecrawl",
				Name:              "Firecrawl",
				PackageIdentifier: "firecrawl-mcp",
				Status:            "verified",
			},
			{
				ID:                "tavily",
				Name:              "Tavily",
				PackageIdentifier: "tavily-mcp",
				Status:            "verified",
			},
			{
				ID:                "fetch",
				Name:              "Fetch",
				PackageIdentifier: "mcp-server-fetch",
				Status:            "verified",
			},
			{
				ID:                "git",
				Name:              "Git",
				PackageIdentifier: "mcp-server-git",
				Status:            "verified",
			},
			{
				ID:                "time",
				Name:              "Time",
				PackageIdentifier: "mcp-server-time",
				Status:            "verified",
			},
		},
		Deprecated: []DeprecatedEntry{
			{
				ID:                "github",
				Name:              "GitHub",
				PackageIdentifier: "@modelcontextprotocol/server-github",
				Reason:            "archived upstream; no longer receives security fixes",
				Alternative:       "the GitHub-hosted remote MCP server",
			},
			{
				ID:                "gitlab",
				Name:              "GitLab",
				PackageIdentifier: "@modelcontextprotocol/server-gitlab",
				Reason:            "archived upstream",
				Alternative:       "",
			},
			{
				ID:                "postgres",
				Name:              "PostgreSQL",
				PackageIdentifier: "@modelcontextprotocol/server-postgres",
				Reason:            "archived upstream; read-only queries only",
				Alternative:       "a community-maintained postgres MCP server",
			},
			{
				ID:                "puppeteer",
				Name:              "Puppeteer",
				PackageIdentifier: "@modelcontextprotocol/server-puppeteer",
				Reason:            "archived upstream",
				Alternative:       "@playwright/mcp",
			},
		},
	}
}
