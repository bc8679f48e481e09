// Package mcpserver exposes the skill catalog as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kamusis/skill-cortex/internal/catalog"
	"github.com/kamusis/skill-cortex/internal/logger"
	"github.com/kamusis/skill-cortex/internal/search"
	"github.com/kamusis/skill-cortex/internal/skills"
)

// Name is the server name reported to MCP clients.
const Name = "skill-cortex"

// Error codes returned in tool payloads.
const (
	CodeInvalidMode    = "invalid_mode"
	CodeMissingUpdates = "missing_updates"
	CodeInvalidUpdates = "invalid_updates"
	CodeMissingSkillID = catalog.CodeMissingSkillID
	CodePathNotFound   = "path_not_found"
	CodeSkillNotFound  = catalog.CodeSkillNotFound
	CodeReadFailed     = "read_failed"
	CodeIndexFailed    = "index_failed"
)

// Handlers implements the tools on top of a catalog.
type Handlers struct {
	cat *catalog.Catalog
}

// NewHandlers returns tool handlers bound to cat.
func NewHandlers(cat *catalog.Catalog) *Handlers {
	return &Handlers{cat: cat}
}

// New builds an MCP server with every tool registered.
func New(cat *catalog.Catalog, version string) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	h := NewHandlers(cat)

	s.AddTool(mcp.NewTool("list_skill_tree",
		mcp.WithDescription("List the categories and skills at a node of the skill category tree."),
		mcp.WithString("path", mcp.Description("Slash-separated category path, e.g. \"data/kafka\". Empty for the root.")),
	), h.ListSkillTree)

	s.AddTool(mcp.NewTool("search_skills",
		mcp.WithDescription("Search skills by a phrase over id, title, description and category, optionally filtered by tags."),
		mcp.WithString("query", mcp.Description("Case-insensitive phrase that must occur as written.")),
		mcp.WithArray("tags", mcp.Description("Tags every result must carry."), mcp.Items(map[string]any{"type": "string"})),
	), h.SearchSkills)

	s.AddTool(mcp.NewTool("get_skill_details",
		mcp.WithDescription("Return the full SKILL.md content of a skill."),
		mcp.WithString("skill_id", mcp.Required(), mcp.Description("Skill id as returned by the other tools.")),
	), h.GetSkillDetails)

	s.AddTool(mcp.NewTool("update_tags",
		mcp.WithDescription("List skills with tag issues (mode=list) or rewrite the tags of skills (mode=apply)."),
		mcp.WithString("mode", mcp.Enum("list", "apply"), mcp.Description("list (default) or apply")),
		mcp.WithArray("updates",
			mcp.Description("For mode=apply: objects with skill_id and tags."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"skill_id": map[string]any{"type": "string"},
					"tags":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
				"required": []string{"skill_id", "tags"},
			}),
		),
	), h.UpdateTags)

	return s
}

// ServeStdio serves s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// ListSkillTree handles list_skill_tree.
func (h *Handlers) ListSkillTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureLoaded(ctx); res != nil {
		return res, nil
	}
	path := stringArg(request, "path")
	parts := skills.ParsePath(path)
	node, err := h.cat.List(path)
	if errors.Is(err, catalog.ErrPathNotFound) {
		return jsonResult(map[string]any{"ok": false, "error": CodePathNotFound, "path": parts})
	}
	if err != nil {
		return failure(CodeIndexFailed, err)
	}
	return jsonResult(map[string]any{
		"ok":         true,
		"path":       parts,
		"categories": node.ChildNames(),
		"skills":     search.SummarizeAll(node.Skills),
	})
}

// SearchSkills handles search_skills.
func (h *Handlers) SearchSkills(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureLoaded(ctx); res != nil {
		return res, nil
	}
	found, err := h.cat.Search(search.Query{
		Text: stringArg(request, "query"),
		Tags: stringSliceArg(request, "tags"),
	})
	if err != nil {
		return failure(CodeIndexFailed, err)
	}
	return jsonResult(map[string]any{
		"ok":      true,
		"count":   len(found),
		"results": search.SummarizeAll(found),
	})
}

// GetSkillDetails handles get_skill_details.
func (h *Handlers) GetSkillDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if res := h.ensureLoaded(ctx); res != nil {
		return res, nil
	}
	id := strings.TrimSpace(stringArg(request, "skill_id"))
	if id == "" {
		return jsonResult(map[string]any{"ok": false, "error": CodeMissingSkillID})
	}
	content, err := h.cat.Content(id)
	switch {
	case errors.Is(err, catalog.ErrSkillNotFound):
		return jsonResult(map[string]any{"ok": false, "error": CodeSkillNotFound, "skill_id": id})
	case err != nil:
		return jsonResult(map[string]any{"ok": false, "error": CodeReadFailed, "skill_id": id, "detail": err.Error()})
	}
	return jsonResult(map[string]any{"ok": true, "skill_id": id, "content": content})
}

// UpdateTags handles update_tags.
func (h *Handlers) UpdateTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logger.WithField(ctx, "tool", "update_tags")
	if res := h.ensureLoaded(ctx); res != nil {
		return res, nil
	}
	mode := strings.ToLower(strings.TrimSpace(stringArg(request, "mode")))
	if mode == "" {
		mode = "list"
	}

	switch mode {
	case "list":
		snap, err := h.cat.Snapshot()
		if err != nil {
			return failure(CodeIndexFailed, err)
		}
		bad := search.WithIssues(snap.Records)
		return jsonResult(map[string]any{"ok": true, "count": len(bad), "skills": search.SummarizeAll(bad)})
	case "apply":
	default:
		return jsonResult(map[string]any{"ok": false, "error": CodeInvalidMode, "mode": stringArg(request, "mode")})
	}

	updates, err := updatesArg(request)
	if err != nil {
		return jsonResult(map[string]any{"ok": false, "error": CodeInvalidUpdates, "detail": err.Error()})
	}
	if len(updates) == 0 {
		return jsonResult(map[string]any{"ok": false, "error": CodeMissingUpdates})
	}

	outcomes, err := h.cat.ApplyTags(ctx, updates)
	if outcomes == nil {
		return failure(CodeIndexFailed, err)
	}
	if err != nil {
		logger.G(ctx).WithError(err).Warn("index cache not saved after tag update")
	}
	return jsonResult(map[string]any{"ok": true, "results": outcomes})
}

func (h *Handlers) ensureLoaded(ctx context.Context) *mcp.CallToolResult {
	if err := h.cat.EnsureLoaded(ctx); err != nil {
		logger.G(ctx).WithError(err).Error("cannot load index")
		res, _ := failure(CodeIndexFailed, err)
		return res
	}
	return nil
}

func stringArg(request mcp.CallToolRequest, key string) string {
	v, _ := request.GetArguments()[key].(string)
	return v
}

func stringSliceArg(request mcp.CallToolRequest, key string) []string {
	raw, ok := request.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func updatesArg(request mcp.CallToolRequest) ([]catalog.TagUpdate, error) {
	raw, ok := request.GetArguments()["updates"]
	if !ok || raw == nil {
		return nil, nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var updates []catalog.TagUpdate
	if err := json.Unmarshal(b, &updates); err != nil {
		return nil, fmt.Errorf("updates must be a list of {skill_id, tags}: %w", err)
	}
	return updates, nil
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("cannot encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

func failure(code string, err error) (*mcp.CallToolResult, error) {
	payload := map[string]any{"ok": false, "error": code}
	if err != nil {
		payload["detail"] = err.Error()
	}
	return jsonResult(payload)
}
