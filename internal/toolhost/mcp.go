package toolhost

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer exposes dispatcher's ten tools as a real MCP server — the
// "MCP Surface" half of C5's name taken literally, rather than treating it
// as just an internal registry.
func NewMCPServer(dispatcher *Dispatcher) *server.MCPServer {
	s := server.NewMCPServer("adventure-gm-tools", "1.0.0")

	register := func(tool mcp.Tool) {
		s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			result := dispatcher.Call(tool.Name, req.GetArguments())
			if result.IsError {
				return mcp.NewToolResultError(result.ForLLM), nil
			}
			return mcp.NewToolResultText(result.ForLLM), nil
		})
	}

	register(mcp.NewTool("set_theme",
		mcp.WithDescription("Change the active visual theme and fetch a matching background image."),
		mcp.WithString("mood", mcp.Required(), mcp.Description("calm|tense|ominous|triumphant|mysterious")),
		mcp.WithString("genre", mcp.Required(), mcp.Description("high-fantasy|low-fantasy|sci-fi|steampunk|horror|modern|historical")),
		mcp.WithString("region", mcp.Required(), mcp.Description("forest|village|city|castle|ruins|mountain|desert|ocean|underground")),
		mcp.WithString("image_prompt", mcp.Description("optional override prompt for image generation")),
		mcp.WithBoolean("force_generate", mcp.Description("force a fresh image instead of reusing a cached one")),
	))

	register(mcp.NewTool("set_xp_style",
		mcp.WithDescription("Persist the player's experience-point presentation preference."),
		mcp.WithString("xp_style", mcp.Required(), mcp.Description("frequent|milestone|combat-plus")),
	))

	register(mcp.NewTool("set_character",
		mcp.WithDescription("Bind the adventure to a player character, creating it if new."),
		mcp.WithString("name", mcp.Required()),
		mcp.WithBoolean("is_new"),
	))

	register(mcp.NewTool("set_world",
		mcp.WithDescription("Bind the adventure to a world, creating it if new."),
		mcp.WithString("name", mcp.Required()),
		mcp.WithBoolean("is_new"),
	))

	register(mcp.NewTool("list_characters",
		mcp.WithDescription("Enumerate available player character slugs with display names."),
	))

	register(mcp.NewTool("list_worlds",
		mcp.WithDescription("Enumerate available world slugs with display names."),
	))

	register(mcp.NewTool("create_panel",
		mcp.WithDescription("Create a new UI side panel."),
		mcp.WithString("id", mcp.Required()),
		mcp.WithString("title", mcp.Required()),
		mcp.WithString("content", mcp.Required()),
		mcp.WithString("position", mcp.Description("sidebar|header|overlay")),
		mcp.WithBoolean("persistent"),
	))

	register(mcp.NewTool("update_panel",
		mcp.WithDescription("Update an existing UI side panel's content."),
		mcp.WithString("id", mcp.Required()),
		mcp.WithString("content", mcp.Required()),
	))

	register(mcp.NewTool("dismiss_panel",
		mcp.WithDescription("Remove a UI side panel."),
		mcp.WithString("id", mcp.Required()),
	))

	register(mcp.NewTool("list_panels",
		mcp.WithDescription("Enumerate currently active UI side panels."),
	))

	return s
}
