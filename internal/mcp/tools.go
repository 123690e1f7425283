package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"lifedeck/internal/ai"
	"lifedeck/internal/game"
	"lifedeck/internal/net"
)

// activeSession is the singleton game session (one per stdio process).
var activeSession *Session

// cardsFile is the catalog path set by main; empty means the embedded set.
var cardsFile string

// SetCardsFile overrides the card catalog used for new games.
func SetCardsFile(path string) {
	cardsFile = path
}

// RegisterTools adds all game tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startGameTool(), handleStartGame)
	s.AddTool(takeActionTool(), handleTakeAction)
	s.AddTool(getGameStateTool(), handleGetGameState)
	s.AddTool(suggestMoveTool(), handleSuggestMove)
	s.AddTool(getStatisticsTool(), handleGetStatistics)
}

// --- Tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new life game. Returns the initial state and the first pending decision. "+
			"You play a whole life: choose a dream, draw cards, take on challenges, buy insurance, survive to the end."),
		mcp.WithString("difficulty", mcp.Description("easy, normal, or hard; scales the trouble cards in the deck (default normal)")),
		mcp.WithNumber("seed", mcp.Description("Shuffle seed for reproducible games; 0 or omitted for random")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Choose an action from the pending action list. Use this when the pending decision type is 'choose_action'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index of the action to take from the actions list")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_game_state",
		mcp.WithDescription("Get the current game state, accumulated events, and pending decision without submitting a response. Read-only."),
	)
}

func suggestMoveTool() mcp.Tool {
	return mcp.NewTool("suggest_move",
		mcp.WithDescription("Ask the strategy advisor which pending action it would take and why. Read-only; does not submit the move."),
		mcp.WithString("strategy", mcp.Description("Advisor strategy: conservative, aggressive, balanced, or adaptive (default: keep current)")),
	)
}

func getStatisticsTool() mcp.Tool {
	return mcp.NewTool("get_statistics",
		mcp.WithDescription("Get the advisor's recorded decision statistics: decisions, outcomes, success rate, and per-strategy usage."),
	)
}

// --- Tool handlers ---

func handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession != nil {
		return mcp.NewToolResultError("A game is already running. Only one game at a time is supported."), nil
	}

	difficulty := request.GetString("difficulty", game.DifficultyNormal)
	seed := int64(request.GetInt("seed", 0))

	sess, err := NewSession(cardsFile, difficulty, seed)
	if err != nil {
		return mcp.NewToolResultErrorf("Failed to start game: %v", err), nil
	}
	activeSession = sess

	resp := sess.waitForPending()
	if resp.GameOver {
		activeSession = nil
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}

	sess := activeSession
	pending := sess.currentPending
	if pending == nil || pending.Type != DecisionChooseAction {
		return mcp.NewToolResultError("No pending decision."), nil
	}

	index := request.GetInt("index", -1)
	if index < 0 || index >= len(pending.Actions) {
		return mcp.NewToolResultErrorf("Invalid index %d. Must be 0-%d.", index, len(pending.Actions)-1), nil
	}

	sess.ctrl.responseCh <- index

	resp := sess.waitForPending()
	if resp.GameOver {
		activeSession = nil
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}

func handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}

	sess := activeSession

	sess.mu.Lock()
	gameOver := sess.gameOver
	result := sess.result
	sess.mu.Unlock()

	resp := &ToolResponse{
		Events:   sess.drainEvents(),
		GameOver: gameOver,
		Result:   result,
	}
	if resp.Events == nil {
		resp.Events = []net.EventView{}
	}

	if gameOver {
		if sess.currentPending != nil {
			resp.State = sess.currentPending.State
		}
	} else {
		// The runner is parked on the pending decision, so the game is
		// quiescent and a fresh view is safe.
		resp.State = net.BuildStateView(sess.game)
		if p := sess.currentPending; p != nil && p.Type == DecisionChooseAction {
			resp.Pending = &PendingView{Type: p.Type, Actions: p.Actions}
		}
	}

	return mcp.NewToolResultText(respondJSON(resp)), nil
}

// suggestion is the JSON shape returned by suggest_move.
type suggestion struct {
	Index    int    `json:"index"`
	Action   string `json:"action"`
	Reason   string `json:"reason"`
	Strategy string `json:"strategy"`
}

func handleSuggestMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}

	sess := activeSession
	pending := sess.currentPending
	if pending == nil || pending.Type != DecisionChooseAction {
		return mcp.NewToolResultError("No pending decision to advise on."), nil
	}

	if name := request.GetString("strategy", ""); name != "" {
		st, err := ai.ParseStrategyType(name)
		if err != nil {
			return mcp.NewToolResultErrorf("Unknown strategy %q. Use conservative, aggressive, balanced, or adaptive.", name), nil
		}
		strat, err := ai.New(st)
		if err != nil {
			return mcp.NewToolResultErrorf("Failed to build strategy: %v", err), nil
		}
		sess.svc.SetStrategy(strat)
	}

	actions := sess.pendingActions()
	action, reason, err := sess.svc.SuggestAction(sess.game, actions)
	if err != nil {
		return mcp.NewToolResultErrorf("No suggestion available: %v", err), nil
	}

	index := 0
	for i := range actions {
		if actions[i] == action {
			index = i
			break
		}
	}

	return mcp.NewToolResultText(respondJSON(suggestion{
		Index:    index,
		Action:   action.String(),
		Reason:   reason,
		Strategy: sess.svc.Strategy().Name(),
	})), nil
}

func handleGetStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if activeSession == nil {
		return mcp.NewToolResultError("No game is running. Use start_game first."), nil
	}

	return mcp.NewToolResultText(respondJSON(activeSession.svc.Statistics())), nil
}
