package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/contexto/internal/explore"
	"github.com/mvp-joe/contexto/internal/output"
)

// ExpandRequest is the argument set of the expand tool.
type ExpandRequest struct {
	Path string `json:"path"`
}

// InspectRequest is the argument set of the inspect tool.
type InspectRequest struct {
	Path string `json:"path"`
}

// ReadRequest is the argument set of the read tool.
type ReadRequest struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

// SearchRequest is the argument set of the search tool.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// AddTools registers map, expand, inspect, read, and search with s.
func AddTools(s *server.MCPServer, explorer *explore.Explorer) {
	s.AddTool(mcp.NewTool(
		"map",
		mcp.WithDescription("Project overview: top-level directories with counts of files, classes, functions, and methods. Start here."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), createMapHandler(explorer))

	s.AddTool(mcp.NewTool(
		"expand",
		mcp.WithDescription("List the children of a directory, file, or class. Directories show subdirectories and files; files show classes and functions with signatures; classes show methods."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Node id, e.g. '.', 'src/utils', 'src/main.py', or 'src/main.py:Calculator'")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), createExpandHandler(explorer))

	s.AddTool(mcp.NewTool(
		"inspect",
		mcp.WithDescription("Show the signature, docstring, location, outgoing calls, and callers of a class, function, or method."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Entity id, e.g. 'src/main.py:main' or 'src/utils/helpers.py:Calculator.add'")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), createInspectHandler(explorer))

	s.AddTool(mcp.NewTool(
		"read",
		mcp.WithDescription("Read source lines from a project file. An entity id reads just that entity unless a range is given."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File path relative to the project root, or an entity id")),
		mcp.WithNumber("start_line",
			mcp.Description("First line to read, 1-based (default: start of file)")),
		mcp.WithNumber("end_line",
			mcp.Description("Last line to read, inclusive (default: end of file)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), createReadHandler(explorer))

	s.AddTool(mcp.NewTool(
		"search",
		mcp.WithDescription("Keyword search over class, function, and method names, signatures, and docstrings."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Free-text query, e.g. 'parse config file'")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (default: 10)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	), createSearchHandler(explorer))
}

func createMapHandler(explorer *explore.Explorer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := explorer.Map(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("map failed: %v", err)), nil
		}
		return mcp.NewToolResultText(output.FormatMap(result)), nil
	}
}

func createExpandHandler(explorer *explore.Explorer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ExpandRequest
		if err := BindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		result, err := explorer.Expand(ctx, args.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(output.FormatExpand(result)), nil
	}
}

func createInspectHandler(explorer *explore.Explorer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args InspectRequest
		if err := BindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		result, err := explorer.Inspect(ctx, args.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(output.FormatInspect(result)), nil
	}
}

func createReadHandler(explorer *explore.Explorer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ReadRequest
		if err := BindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		result, err := explorer.Read(ctx, args.Path, args.StartLine, args.EndLine)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(output.FormatRead(result)), nil
	}
}

func createSearchHandler(explorer *explore.Explorer) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SearchRequest
		if err := BindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.Query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		results, err := explorer.Search(ctx, args.Query, args.Limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return mcp.NewToolResultText(output.FormatSearchResults(args.Query, results)), nil
	}
}
