package web

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"lifedeck/internal/catalog"
	"lifedeck/internal/game"
	"lifedeck/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "lifedeck.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load default card set: %v", err)
	}
	return NewServer(store, cat, "", nil), store
}

func testState(turn int) *game.GameState {
	return &game.GameState{
		Version:  1,
		Phase:    game.PhaseDraw,
		Turn:     turn,
		Vitality: 12,
		Stage:    game.StageYouth,
		Config:   game.GameConfig{Difficulty: game.DifficultyNormal}.Normalized(),
		Manager: game.ManagerState{
			Hand:        []game.CardState{{ID: "c1", Name: "Morning Run", Type: game.TypeLife, Power: 1}},
			MaxHandSize: 7,
		},
	}
}

func getJSON(t *testing.T, srv *httptest.Server, path string, v any) {
	t.Helper()

	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d, want 200", path, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("GET %s content type = %q", path, ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
}

func TestCardsEndpoint(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t)
	srv := httptest.NewServer(s)
	defer srv.Close()

	var cards []catalog.CardInfo
	getJSON(t, srv, "/api/cards", &cards)
	if len(cards) == 0 {
		t.Fatal("card list is empty")
	}
	byName := make(map[string]catalog.CardInfo, len(cards))
	for _, c := range cards {
		byName[c.Name] = c
	}
	if c, ok := byName["Morning Run"]; !ok || c.Type != "life" || c.Section != "player" {
		t.Fatalf("Morning Run = %+v", c)
	}
	if c, ok := byName["Whole Life Plan"]; !ok || c.Section != "market" || c.Duration != "whole_life" {
		t.Fatalf("Whole Life Plan = %+v", c)
	}
}

func TestSavesEndpointLifecycle(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)
	srv := httptest.NewServer(s)
	defer srv.Close()

	var saves []storage.Save
	getJSON(t, srv, "/api/saves", &saves)
	if len(saves) != 0 {
		t.Fatalf("initial saves = %d, want 0", len(saves))
	}

	save, err := store.SaveGame(context.Background(), "checkpoint", testState(4))
	if err != nil {
		t.Fatalf("save game: %v", err)
	}
	getJSON(t, srv, "/api/saves", &saves)
	if len(saves) != 1 || saves[0].Name != "checkpoint" || saves[0].Turn != 4 {
		t.Fatalf("saves = %+v", saves)
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/saves/"+save.ID, nil)
	if err != nil {
		t.Fatalf("build delete request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete save: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	getJSON(t, srv, "/api/saves", &saves)
	if len(saves) != 0 {
		t.Fatalf("saves after delete = %d, want 0", len(saves))
	}

	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete save again: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t)
	srv := httptest.NewServer(s)
	defer srv.Close()

	if _, err := store.RecordSimResult(context.Background(), storage.SimResult{
		Strategy: "aggressive",
		Games:    25,
		Clears:   9,
		Overs:    16,
	}); err != nil {
		t.Fatalf("record sim result: %v", err)
	}

	var results []storage.SimResult
	getJSON(t, srv, "/api/stats", &results)
	if len(results) != 1 || results[0].Strategy != "aggressive" || results[0].Games != 25 {
		t.Fatalf("results = %+v", results)
	}
}

func TestEndpointsWithoutStore(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewServer(nil, nil, "", nil))
	defer srv.Close()

	for _, path := range []string{"/api/saves", "/api/stats"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("GET %s status = %d, want 503", path, resp.StatusCode)
		}
	}
}

// fakeGameServer listens on a loopback port and answers one connection the
// way a TCP game server would: read the join line, push a notify, wait for
// the action response, then finish with game_over.
func fakeGameServer(t *testing.T) (addr string, joinCh <-chan string, actionCh <-chan int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	joins := make(chan string, 1)
	actions := make(chan int, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		reader := bufio.NewReader(conn)

		line, err := reader.ReadBytes('\n')
		if err != nil {
			t.Errorf("read join: %v", err)
			return
		}
		var join struct {
			Type       string `json:"type"`
			Difficulty string `json:"difficulty"`
		}
		if err := json.Unmarshal(line, &join); err != nil || join.Type != "join" {
			t.Errorf("join line = %q (%v)", line, err)
			return
		}
		joins <- join.Difficulty

		conn.Write([]byte(`{"type":"notify","event":{"turn":1,"phase":"Draw","type":"card_drawn","details":"Drew Morning Run"}}` + "\n"))

		line, err = reader.ReadBytes('\n')
		if err != nil {
			t.Errorf("read action: %v", err)
			return
		}
		var action struct {
			Type  string `json:"type"`
			Index int    `json:"index"`
		}
		if err := json.Unmarshal(line, &action); err != nil || action.Type != "action" {
			t.Errorf("action line = %q (%v)", line, err)
			return
		}
		actions <- action.Index

		conn.Write([]byte(`{"type":"game_over","result":"test complete"}` + "\n"))
	}()
	return ln.Addr().String(), joins, actions
}

func TestWebSocketBridge(t *testing.T) {
	t.Parallel()

	gameAddr, joinCh, actionCh := fakeGameServer(t)
	srv := httptest.NewServer(NewServer(nil, nil, "", nil))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.CloseNow()

	connect := fmt.Sprintf(`{"type":"connect","addr":%q,"difficulty":"hard","seed":7}`, gameAddr)
	if err := conn.Write(ctx, websocket.MessageText, []byte(connect)); err != nil {
		t.Fatalf("write connect: %v", err)
	}

	select {
	case difficulty := <-joinCh:
		if difficulty != "hard" {
			t.Fatalf("joined difficulty = %q, want hard", difficulty)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for join")
	}

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read notify: %v", err)
	}
	var notify struct {
		Type  string `json:"type"`
		Event struct {
			Details string `json:"details"`
		} `json:"event"`
	}
	if err := json.Unmarshal(data, &notify); err != nil {
		t.Fatalf("decode notify: %v", err)
	}
	if notify.Type != "notify" || notify.Event.Details != "Drew Morning Run" {
		t.Fatalf("notify = %+v", notify)
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"type":"action","index":2}`)); err != nil {
		t.Fatalf("write action: %v", err)
	}
	select {
	case idx := <-actionCh:
		if idx != 2 {
			t.Fatalf("forwarded index = %d, want 2", idx)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for action")
	}

	_, data, err = conn.Read(ctx)
	if err != nil {
		t.Fatalf("read game_over: %v", err)
	}
	var over struct {
		Type   string `json:"type"`
		Result string `json:"result"`
	}
	if err := json.Unmarshal(data, &over); err != nil {
		t.Fatalf("decode game_over: %v", err)
	}
	if over.Type != "game_over" || over.Result != "test complete" {
		t.Fatalf("game_over = %+v", over)
	}
}
