package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mdkaba/campusmind/internal/metrics"
	"github.com/mdkaba/campusmind/internal/server"
)

// stubServer serves the HTTP API surface the remote commands consume and
// records which paths were hit.
func stubServer(t *testing.T) (*httptest.Server, map[string]int) {
	t.Helper()
	hits := make(map[string]int)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", func(w http.ResponseWriter, r *http.Request) {
		hits["chat"]++
		var req server.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(server.ChatResponse{
			Response:       "remote reply",
			ConversationID: "abc",
			AgentName:      "GeneralAgent",
		})
	})
	mux.HandleFunc("GET /api/v1/conversations", func(w http.ResponseWriter, r *http.Request) {
		hits["conversations"]++
		json.NewEncoder(w).Encode(map[string]any{
			"conversations": []server.ConversationSummary{
				{ID: "abc", Title: "Admissions questions", CreatedAt: "2026-01-01T00:00:00Z"},
			},
		})
	})
	mux.HandleFunc("GET /api/v1/conversations/abc/messages", func(w http.ResponseWriter, r *http.Request) {
		hits["messages"]++
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []server.MessageView{{Role: "user", Content: "hi"}},
		})
	})
	mux.HandleFunc("GET /api/v1/stats", func(w http.ResponseWriter, r *http.Request) {
		hits["stats"]++
		json.NewEncoder(w).Encode(metrics.Snapshot{
			UptimeSeconds:   42,
			AgentSelections: map[string]int64{"GeneralAgent": 3},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hits
}

func withRemote(t *testing.T, url string) {
	t.Helper()
	prev := serverURL
	serverURL = url
	t.Cleanup(func() { serverURL = prev })
}

func TestAskUsesRemoteServer(t *testing.T) {
	srv, hits := stubServer(t)
	withRemote(t, srv.URL)

	if err := runAsk(askCmd, []string{"What is Go?"}); err != nil {
		t.Fatalf("runAsk: %v", err)
	}
	if hits["chat"] != 1 {
		t.Errorf("chat endpoint hit %d times, want 1", hits["chat"])
	}
}

func TestConversationsUseRemoteServer(t *testing.T) {
	srv, hits := stubServer(t)
	withRemote(t, srv.URL)

	if err := runConversations(conversationsCmd, nil); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := runConversations(conversationsCmd, []string{"abc"}); err != nil {
		t.Fatalf("transcript: %v", err)
	}
	if hits["conversations"] != 1 || hits["messages"] != 1 {
		t.Errorf("endpoint hits = %v", hits)
	}
}

func TestStatsUseRemoteServer(t *testing.T) {
	srv, hits := stubServer(t)
	withRemote(t, srv.URL)

	if err := runStats(statsCmd, nil); err != nil {
		t.Fatalf("runStats: %v", err)
	}
	if hits["stats"] != 1 {
		t.Errorf("stats endpoint hit %d times, want 1", hits["stats"])
	}
}

func TestRemoteCommandSkipsLocalWiring(t *testing.T) {
	if remoteCommand(statsCmd) != true {
		t.Error("stats must always be remote")
	}
	if remoteCommand(askCmd) {
		t.Error("ask is local without --server")
	}
	withRemote(t, "http://localhost:9999")
	if !remoteCommand(askCmd) || !remoteCommand(conversationsCmd) {
		t.Error("ask and conversations must go remote with --server set")
	}
	if remoteCommand(serveCmd) {
		t.Error("serve never goes remote")
	}
}
