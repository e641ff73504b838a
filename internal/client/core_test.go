package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"kama_chat_client/internal/client"
	"kama_chat_client/internal/config"
	"kama_chat_client/internal/dao/memory"
	"kama_chat_client/internal/dao/tokenstore"
	"kama_chat_client/internal/gateway/api"
	"kama_chat_client/internal/gateway/socket"
	"kama_chat_client/internal/handler"
	"kama_chat_client/internal/https_server"
	"kama_chat_client/internal/model"
	"kama_chat_client/internal/service"
	"kama_chat_client/internal/service/chat"
	"kama_chat_client/pkg/errorx"
	"kama_chat_client/pkg/util/jwt"
)

// startBackend 启动内存版后端
func startBackend(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwt.Init("core-e2e", 1)

	hub := chat.NewHub()
	go hub.Start()
	svcs := service.NewServices(memory.NewRepositories(), hub)
	server := httptest.NewServer(https_server.Init(handler.NewHandlers(svcs, hub)))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return server.URL
}

func newCore(t *testing.T, baseURL string, slot tokenstore.Slot) *client.Core {
	t.Helper()
	httpClient, err := api.NewClient(api.ClientConfig{BaseURL: baseURL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("new api client: %v", err)
	}
	core := client.NewWithDeps(client.Deps{
		API:    httpClient,
		Dialer: socket.NewWebSocketDialer(baseURL, 2*time.Second),
		Slot:   slot,
		Config: config.ClientConfig{AckTimeout: 2 * time.Second},
	})
	t.Cleanup(core.Close)
	return core
}

func signup(t *testing.T, core *client.Core, name string) *model.Session {
	t.Helper()
	sess, err := core.Authenticate(context.Background(), model.AuthSignup, model.Credentials{
		FullName: name,
		Email:    name + "@example.com",
		Password: "secret1",
		Bio:      "hi",
	})
	if err != nil {
		t.Fatalf("signup %s: %v", name, err)
	}
	if core.Session.Connection() == nil {
		t.Fatalf("%s has no push channel", name)
	}
	return sess
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConversationEndToEnd(t *testing.T) {
	ctx := context.Background()
	base := startBackend(t)

	alice := newCore(t, base, tokenstore.NewMemorySlot(""))
	bob := newCore(t, base, tokenstore.NewMemorySlot(""))
	aliceSess := signup(t, alice, "alice")
	bobSess := signup(t, bob, "bob")

	eventually(t, "alice sees bob online", func() bool { return alice.Presence.IsReachable(bobSess.UserID) })
	eventually(t, "bob sees alice online", func() bool { return bob.Presence.IsReachable(aliceSess.UserID) })

	if _, err := alice.Conversations.LoadPeers(ctx); err != nil {
		t.Fatalf("alice load peers: %v", err)
	}
	if _, err := bob.Conversations.LoadPeers(ctx); err != nil {
		t.Fatalf("bob load peers: %v", err)
	}
	bobPeer, ok := alice.Conversations.Peer(bobSess.UserID)
	if !ok {
		t.Fatalf("bob missing from alice's peers: %+v", alice.Conversations.Peers())
	}

	// 发送前必须先选中会话
	if _, err := alice.Conversations.Send(ctx, bobSess.UserID, model.Draft{Text: "hi"}); !errorx.IsPrecondition(err) {
		t.Fatalf("send without conversation err = %v", err)
	}

	if err := alice.Conversations.SelectConversation(ctx, &bobPeer); err != nil {
		t.Fatalf("alice select bob: %v", err)
	}
	sent, err := alice.Conversations.Send(ctx, bobSess.UserID, model.Draft{Text: "  hi bob  "})
	if err != nil {
		t.Fatalf("alice send: %v", err)
	}
	if sent.Text != "hi bob" {
		t.Fatalf("sent text = %q", sent.Text)
	}
	if msgs := alice.Conversations.Messages(); len(msgs) != 1 || msgs[0].ID != sent.ID {
		t.Fatalf("alice messages = %+v", msgs)
	}

	// bob 没打开与 alice 的会话，只增加未读数
	eventually(t, "bob unseen from alice", func() bool { return bob.Conversations.Unseen(aliceSess.UserID) == 1 })
	if len(bob.Conversations.Messages()) != 0 {
		t.Fatalf("bob has messages without an active conversation")
	}

	alicePeer, _ := bob.Conversations.Peer(aliceSess.UserID)
	if err := bob.Conversations.SelectConversation(ctx, &alicePeer); err != nil {
		t.Fatalf("bob select alice: %v", err)
	}
	if n := bob.Conversations.Unseen(aliceSess.UserID); n != 0 {
		t.Fatalf("bob unseen after select = %d", n)
	}
	if msgs := bob.Conversations.Messages(); len(msgs) != 1 || msgs[0].ID != sent.ID {
		t.Fatalf("bob history = %+v", msgs)
	}

	// 会话打开时推送直接追加，并回执已读
	second, err := alice.Conversations.Send(ctx, bobSess.UserID, model.Draft{Text: "second"})
	if err != nil {
		t.Fatalf("alice second send: %v", err)
	}
	eventually(t, "bob receives second message", func() bool {
		msgs := bob.Conversations.Messages()
		return len(msgs) == 2 && msgs[1].ID == second.ID && msgs[1].Seen
	})
	bob.Subscriptions.Wait()
	if _, err := bob.Conversations.LoadPeers(ctx); err != nil {
		t.Fatalf("bob reload peers: %v", err)
	}
	if n := bob.Conversations.Unseen(aliceSess.UserID); n != 0 {
		t.Fatalf("server still counts %d unseen after ack", n)
	}
}

func TestRestoreAndLogout(t *testing.T) {
	ctx := context.Background()
	base := startBackend(t)

	slot := tokenstore.NewMemorySlot("")
	first := newCore(t, base, slot)
	sess := signup(t, first, "carol")
	first.Close()

	token, _ := slot.Load(ctx)
	if token == "" {
		t.Fatal("token not persisted")
	}

	// 进程重启：同一个 slot，新 Core
	restarted := newCore(t, base, slot)
	restored := restarted.Start(ctx)
	if restored == nil || restored.UserID != sess.UserID || restored.FullName != "carol" {
		t.Fatalf("restored = %+v", restored)
	}
	eventually(t, "restored channel sees self online", func() bool { return restarted.Presence.IsReachable(sess.UserID) })

	restarted.Logout(ctx)
	if restarted.Session.Current() != nil {
		t.Fatal("session survives logout")
	}
	if token, _ := slot.Load(ctx); token != "" {
		t.Fatalf("token survives logout: %q", token)
	}
	if len(restarted.Presence.Online()) != 0 {
		t.Fatalf("online list survives logout: %v", restarted.Presence.Online())
	}
}

func TestRestoreWithRejectedToken(t *testing.T) {
	ctx := context.Background()
	base := startBackend(t)

	slot := tokenstore.NewMemorySlot("not-a-jwt")
	core := newCore(t, base, slot)
	if sess := core.Start(ctx); sess != nil {
		t.Fatalf("restored with bad token: %+v", sess)
	}
	if token, _ := slot.Load(ctx); token != "" {
		t.Fatalf("rejected token kept: %q", token)
	}
}
