// Package mcp serves the article and feed fetchers as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mmcdole/gofeed"

	"github.com/sandevgo/gemibot/internal/core"
	"github.com/sandevgo/gemibot/pkg/log"
)

const (
	defaultFeedLimit = 5
	maxFeedLimit     = 50
)

type Fetcher interface {
	FetchArticle(ctx context.Context, url string) (string, bool)
	FetchFeed(ctx context.Context, url string) (*gofeed.Feed, bool)
}

type Server struct {
	mcp     *server.MCPServer
	fetcher Fetcher
}

func NewServer(fetcher Fetcher) *Server {
	s := &Server{
		mcp:     server.NewMCPServer(core.AppName, core.AppVersion, server.WithToolCapabilities(false)),
		fetcher: fetcher,
	}

	s.mcp.AddTool(mcp.NewTool("fetch_article",
		mcp.WithDescription("Download a news article, retrying through public proxies, and return the text of its body."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Article URL")),
	), s.fetchArticle)

	s.mcp.AddTool(mcp.NewTool("fetch_feed",
		mcp.WithDescription("Download an RSS or Atom feed and list its newest entries."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Feed URL")),
		mcp.WithNumber("limit", mcp.Description("How many entries to list (default 5, at most 50)")),
	), s.fetchFeed)

	return s
}

// Serve speaks MCP over in/out until ctx is done or the input closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	log.FromCtx(ctx).Info().Msg("serving mcp over stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) fetchArticle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text, ok := s.fetcher.FetchArticle(ctx, url)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("article at %s is unavailable", url)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) fetchFeed(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := req.GetInt("limit", defaultFeedLimit)
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	limit = min(limit, maxFeedLimit)

	feed, ok := s.fetcher.FetchFeed(ctx, url)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("feed at %s is unavailable", url)), nil
	}
	return mcp.NewToolResultText(formatFeed(feed, limit)), nil
}

func formatFeed(feed *gofeed.Feed, limit int) string {
	var sb strings.Builder
	if feed.Title != "" {
		sb.WriteString(feed.Title)
		sb.WriteString("\n\n")
	}
	for i, item := range feed.Items {
		if i == limit {
			break
		}
		fmt.Fprintf(&sb, "%d. %s\n   %s\n", i+1, strings.TrimSpace(item.Title), item.Link)
		if item.PublishedParsed != nil {
			fmt.Fprintf(&sb, "   %s\n", item.PublishedParsed.UTC().Format("2006-01-02 15:04"))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
