// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only Quiet tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quiet/internal/apperr"
	"github.com/starford/quiet/internal/output"
	"github.com/starford/quiet/internal/postservice"
)

// PostFormatURI is the resource URI of the content file format description.
const PostFormatURI = "quiet://post-format"

// Server wraps the MCP server with Quiet tools.
type Server struct {
	mcp *server.MCPServer
	svc *postservice.Service
}

// New creates a new MCP server with all Quiet tools registered.
func New(svc *postservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Quiet",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List published posts, newest first, one page at a time."),
		mcp.WithNumber("page", mcp.Description("1-based page number (default 1)")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Read a post by its URI, either /yyyy/MM/dd/{key}.html or /{categories}/{key}.html. "+
			"Returns the metadata and the rendered HTML."),
		mcp.WithString("uri", mcp.Required(), mcp.Description("Post URI, e.g. /2023/01/05/hello.html")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("list_category",
		mcp.WithDescription("List the posts filed directly in a category and its immediate subcategories."),
		mcp.WithString("category", mcp.Description("Category path such as tech/go (empty for the root)")),
	), s.listCategory)

	s.mcp.AddTool(mcp.NewTool("list_children",
		mcp.WithDescription("Show the category tree below a category, with post counts."),
		mcp.WithString("category", mcp.Description("Category path such as tech (empty for the whole tree)")),
	), s.listChildren)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the content file format: header keys, date formats and URL rules."),
	), s.getPostFormat)

	s.mcp.AddResource(
		mcp.NewResource(PostFormatURI, "Post Format",
			mcp.WithResourceDescription("Header and URL conventions of Quiet content files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := s.svc.ListPage(ctx, req.GetInt("page", 1))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(view)
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uri, err := req.RequireString("uri")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.GetByURI(ctx, uri)
	if err != nil {
		return toolError(fmt.Errorf("%s: %w", uri, err)), nil
	}
	return jsonResult(post)
}

func (s *Server) listCategory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats := postservice.SplitCategory(req.GetString("category", ""))
	view, err := s.svc.Category(ctx, cats)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(view)
}

func (s *Server) listChildren(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cats := postservice.SplitCategory(req.GetString("category", ""))
	node := s.svc.Tree(ctx)
	for _, name := range cats {
		found := false
		for _, child := range node.Children {
			if child.Name == name {
				node, found = child, true
				break
			}
		}
		if !found {
			return toolError(fmt.Errorf("category %q: %w", req.GetString("category", ""), apperr.ErrNotFound)), nil
		}
	}
	return mcp.NewToolResultText(output.CategoryTree(node)), nil
}

func (s *Server) getPostFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormat), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PostFormatURI,
			MIMEType: "text/markdown",
			Text:     PostFormat,
		},
	}, nil
}

func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidArgument) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError("internal error: " + err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("mcpserver: encode result: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}
