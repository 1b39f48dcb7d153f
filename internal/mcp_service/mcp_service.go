package mcp_service

import (
	"context"
	"fmt"
	"strings"

	"github.com/AnishMulay/blockfs/internal/log_service"
	"github.com/AnishMulay/blockfs/internal/server"
	"github.com/AnishMulay/blockfs/internal/shell"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const (
	ServerName    = "blockfs"
	ServerVersion = "1.0.0"
)

type param struct {
	name string
	desc string
}

// toolSpec binds an MCP tool to a command server operation. Params are
// passed as arg1 and arg2 in order; all are required.
type toolSpec struct {
	name   string
	desc   string
	op     string
	fixed  []string
	params []param
}

var nameParam = param{"name", "Name of an entry in the current directory"}

var tools = []toolSpec{
	{name: "fs_init", desc: "Format the filesystem, discarding all contents", op: server.OpInit},
	{name: "fs_print", desc: "List the current directory and everything below it", op: server.OpPrint},
	{name: "fs_pwd", desc: "Show the path of the current directory", op: server.OpPwd},
	{name: "fs_stat", desc: "Show block usage and entry counts", op: server.OpStat},
	{name: "fs_check", desc: "Verify that the bitmap matches the directory tree", op: server.OpCheck},
	{name: "fs_chdir", desc: "Change the current directory; '..' moves to the parent", op: server.OpChdir, params: []param{nameParam}},
	{name: "fs_mkdir", desc: "Create a directory in the current directory", op: server.OpMkdir, params: []param{nameParam}},
	{name: "fs_rmdir", desc: "Remove a directory and everything below it", op: server.OpRmdir, params: []param{nameParam}},
	{name: "fs_rmdir_all", desc: "Remove every entry of the current directory", op: server.OpRmdir, fixed: []string{server.RemoveAllName}},
	{name: "fs_mvdir", desc: "Rename a directory", op: server.OpMvdir, params: []param{nameParam, {"new_name", "New name"}}},
	{name: "fs_mkfil", desc: "Create a file of the given size in bytes", op: server.OpMkfil, params: []param{nameParam, {"size", "Size in bytes (decimal)"}}},
	{name: "fs_rmfil", desc: "Remove a file and release its blocks", op: server.OpRmfil, params: []param{nameParam}},
	{name: "fs_mvfil", desc: "Rename a file", op: server.OpMvfil, params: []param{nameParam, {"new_name", "New name"}}},
	{name: "fs_szfil", desc: "Resize a file, allocating or releasing blocks", op: server.OpSzfil, params: []param{nameParam, {"size", "New size in bytes (decimal)"}}},
}

func NewMCPServer(cs *server.CommandServer, ls log_service.LogService) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		ServerName,
		ServerVersion,
		mcpserver.WithToolCapabilities(false),
	)
	AddTools(s, cs, ls)
	return s
}

func AddTools(s *mcpserver.MCPServer, cs *server.CommandServer, ls log_service.LogService) {
	for _, tool := range tools {
		opts := []mcp.ToolOption{mcp.WithDescription(tool.desc)}
		for _, p := range tool.params {
			opts = append(opts, mcp.WithString(p.name, mcp.Required(), mcp.Description(p.desc)))
		}
		s.AddTool(mcp.NewTool(tool.name, opts...), handler(tool, cs))
	}
	ls.Info(log_service.LogEvent{
		Message:  "Registered MCP tools",
		Metadata: map[string]any{"count": len(tools)},
	})
}

// handler builds the handler for tool. Operation failures come back
// as tool errors, not protocol errors.
func handler(tool toolSpec, cs *server.CommandServer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := append([]string(nil), tool.fixed...)
		for _, p := range tool.params {
			v, err := request.RequireString(p.name)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			args = append(args, v)
		}
		for len(args) < 2 {
			args = append(args, "")
		}

		resp := cs.Execute(ctx, tool.op, args[0], args[1])
		if !resp.OK() {
			return mcp.NewToolResultError(fmt.Sprintf("%s failed: %s: %v", tool.op, resp.Code, resp.Err)), nil
		}
		return mcp.NewToolResultText(render(resp)), nil
	}
}

func render(resp *server.Response) string {
	var b strings.Builder
	switch {
	case resp.Listings != nil:
		shell.WriteListings(&b, resp.Listings)
	case resp.Stats != nil:
		shell.WriteStats(&b, resp.Stats)
	case resp.Text != "":
		b.WriteString(resp.Text)
	default:
		b.WriteString("ok")
	}
	return b.String()
}

// ToolNames lists the registered tool names.
func ToolNames() []string {
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.name
	}
	return names
}
