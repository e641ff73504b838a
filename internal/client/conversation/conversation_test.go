package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
)

// fakeAPI 可控的消息接口
// gate 非空时 History 会阻塞到对应 channel 可读
type fakeAPI struct {
	mu      sync.Mutex
	peers   []model.Peer
	unseen  map[string]int
	history map[string][]model.Message
	gate    map[string]chan struct{}
	sendErr error
	sent    []model.Draft
	nextID  int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		history: make(map[string][]model.Message),
		gate:    make(map[string]chan struct{}),
		unseen:  map[string]int{},
	}
}

func (f *fakeAPI) ListPeers(ctx context.Context) ([]model.Peer, map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.unseen))
	for k, v := range f.unseen {
		out[k] = v
	}
	return append([]model.Peer(nil), f.peers...), out, nil
}

func (f *fakeAPI) History(ctx context.Context, peerID string) ([]model.Message, error) {
	f.mu.Lock()
	gate := f.gate[peerID]
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, errorx.Wrap(ctx.Err(), errorx.CodeNetwork, "canceled")
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Message(nil), f.history[peerID]...), nil
}

func (f *fakeAPI) Send(ctx context.Context, peerID string, draft model.Draft) (model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return model.Message{}, f.sendErr
	}
	f.sent = append(f.sent, draft)
	f.nextID++
	return model.Message{
		ID:         fmt.Sprintf("srv-%d", f.nextID),
		SenderID:   "me",
		ReceiverID: peerID,
		Text:       draft.Text,
		Image:      draft.Image,
		CreatedAt:  time.Now(),
	}, nil
}

func (f *fakeAPI) MarkSeen(ctx context.Context, messageID string) error { return nil }

func (f *fakeAPI) block(peerID string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gate[peerID] = ch
	return ch
}

func msg(id, from, to string) model.Message {
	return model.Message{ID: id, SenderID: from, ReceiverID: to, Text: id}
}

var (
	alice = model.Peer{ID: "alice", FullName: "Alice Liddell"}
	bob   = model.Peer{ID: "bob", FullName: "Bob Stone"}
	carol = model.Peer{ID: "carol", FullName: "Carol"}
)

func TestLoadPeersInstallsSnapshot(t *testing.T) {
	api := newFakeAPI()
	api.peers = []model.Peer{alice, bob}
	api.unseen = map[string]int{"alice": 2, "bob": 0}
	s := New(api)

	peers, err := s.LoadPeers(context.Background())
	if err != nil || len(peers) != 2 {
		t.Fatalf("LoadPeers = %v, %v", peers, err)
	}
	if s.Unseen("alice") != 2 || s.Unseen("bob") != 0 {
		t.Fatalf("unseen = %v", s.UnseenCounts())
	}

	// 第二次刷新整体替换
	api.peers = []model.Peer{carol}
	api.unseen = map[string]int{"carol": 1}
	if _, err := s.LoadPeers(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.Peers(); len(got) != 1 || got[0].ID != "carol" {
		t.Fatalf("peers not replaced: %v", got)
	}
	if s.Unseen("alice") != 0 || s.Unseen("carol") != 1 {
		t.Fatalf("counters not replaced: %v", s.UnseenCounts())
	}
}

func TestSelectionZeroesCounter(t *testing.T) {
	api := newFakeAPI()
	api.peers = []model.Peer{alice, bob}
	api.unseen = map[string]int{"alice": 4, "bob": 2}
	api.history["alice"] = []model.Message{msg("a1", "alice", "me")}
	s := New(api)
	ctx := context.Background()
	if _, err := s.LoadPeers(ctx); err != nil {
		t.Fatal(err)
	}

	for _, p := range []model.Peer{alice, bob, alice, alice, bob} {
		p := p
		if err := s.SelectConversation(ctx, &p); err != nil {
			t.Fatalf("SelectConversation(%s): %v", p.ID, err)
		}
		if n := s.Unseen(p.ID); n != 0 {
			t.Fatalf("Unseen(%s) = %d after selection", p.ID, n)
		}
		if s.Active().ID != p.ID {
			t.Fatalf("Active = %v", s.Active())
		}
	}

	// 刷新联系人时当前会话的未读数仍为 0
	api.unseen = map[string]int{"bob": 9, "alice": 1}
	if _, err := s.LoadPeers(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Unseen("bob") != 0 || s.Unseen("alice") != 1 {
		t.Fatalf("unseen after refresh = %v", s.UnseenCounts())
	}
}

func TestSelectNoneClearsActive(t *testing.T) {
	api := newFakeAPI()
	api.history["alice"] = []model.Message{msg("a1", "alice", "me")}
	s := New(api)
	ctx := context.Background()
	if err := s.SelectConversation(ctx, &alice); err != nil {
		t.Fatal(err)
	}
	if len(s.Messages()) != 1 {
		t.Fatalf("history not loaded: %v", s.Messages())
	}
	if err := s.SelectConversation(ctx, nil); err != nil {
		t.Fatal(err)
	}
	if s.Active() != nil || len(s.Messages()) != 0 {
		t.Fatalf("active=%v messages=%v", s.Active(), s.Messages())
	}
}

func TestStaleHistoryDiscarded(t *testing.T) {
	api := newFakeAPI()
	api.history["alice"] = []model.Message{msg("a1", "alice", "me"), msg("a2", "me", "alice")}
	api.history["bob"] = []model.Message{msg("b1", "bob", "me")}
	release := api.block("alice")
	s := New(api)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- s.SelectConversation(ctx, &alice) }()

	// 等 alice 成为当前会话后再切到 bob
	waitFor(t, func() bool { a := s.Active(); return a != nil && a.ID == "alice" })
	if err := s.SelectConversation(ctx, &bob); err != nil {
		t.Fatalf("select bob: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("stale select should not surface an error, got %v", err)
	}

	got := s.Messages()
	if len(got) != 1 || got[0].ID != "b1" {
		t.Fatalf("log = %v, want bob's history only", got)
	}

	// 直接调用 LoadHistory 也返回 stale
	if _, err := s.LoadHistory(ctx, "alice"); !errors.Is(err, errorx.ErrStaleResponse) {
		t.Fatalf("LoadHistory(alice) err = %v", err)
	}
	if got := s.Messages(); len(got) != 1 || got[0].ID != "b1" {
		t.Fatalf("log mutated by stale response: %v", got)
	}
}

func TestHistoryKeepsLiveMessagesArrivedMeanwhile(t *testing.T) {
	api := newFakeAPI()
	api.history["alice"] = []model.Message{msg("a1", "alice", "me")}
	release := api.block("alice")
	s := New(api)

	done := make(chan error, 1)
	go func() { done <- s.SelectConversation(context.Background(), &alice) }()
	waitFor(t, func() bool { a := s.Active(); return a != nil })

	s.Deliver(msg("a2", "alice", "me"))
	close(release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	got := s.Messages()
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a2" {
		t.Fatalf("log = %v", got)
	}
}

func TestSendPreconditions(t *testing.T) {
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()

	if _, err := s.Send(ctx, "alice", model.Draft{Text: "hi"}); !errorx.IsPrecondition(err) {
		t.Fatalf("no active: err = %v", err)
	}
	if err := s.SelectConversation(ctx, &alice); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Send(ctx, "bob", model.Draft{Text: "hi"}); !errorx.IsPrecondition(err) {
		t.Fatalf("mismatch: err = %v", err)
	}
	if _, err := s.Send(ctx, "alice", model.Draft{Text: "   "}); !errorx.IsValidation(err) {
		t.Fatalf("empty draft: err = %v", err)
	}
	if len(api.sent) != 0 {
		t.Fatalf("rejected sends reached the network: %v", api.sent)
	}
}

func TestSendAppendsServerMessage(t *testing.T) {
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()
	if err := s.SelectConversation(ctx, &alice); err != nil {
		t.Fatal(err)
	}

	m, err := s.Send(ctx, "alice", model.Draft{Text: "  hello  "})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if m.ID != "srv-1" || m.Text != "hello" {
		t.Fatalf("Send returned %+v", m)
	}
	got := s.Messages()
	if len(got) != 1 || got[0].ID != "srv-1" {
		t.Fatalf("log = %v", got)
	}

	if _, err := s.Send(ctx, "alice", model.Draft{Image: "data:image/png;base64,AAAA"}); err != nil {
		t.Fatalf("image-only send: %v", err)
	}
	if media := s.SharedMedia(); len(media) != 1 {
		t.Fatalf("SharedMedia = %v", media)
	}
}

func TestSendFailureLeavesLogUnchanged(t *testing.T) {
	api := newFakeAPI()
	api.history["alice"] = []model.Message{msg("a1", "alice", "me")}
	s := New(api)
	ctx := context.Background()
	if err := s.SelectConversation(ctx, &alice); err != nil {
		t.Fatal(err)
	}
	before := len(s.Messages())

	api.sendErr = errorx.New(errorx.CodeNetwork, "connection refused")
	_, err := s.Send(ctx, "alice", model.Draft{Text: "hi"})
	if !errorx.IsNetwork(err) {
		t.Fatalf("err = %v", err)
	}
	if after := len(s.Messages()); after != before {
		t.Fatalf("log length %d -> %d after failed send", before, after)
	}
}

func TestDeliverRouting(t *testing.T) {
	api := newFakeAPI()
	s := New(api)
	ctx := context.Background()
	if err := s.SelectConversation(ctx, &alice); err != nil {
		t.Fatal(err)
	}

	if !s.Deliver(msg("m1", "alice", "me")) {
		t.Fatal("message from active peer not appended")
	}
	got := s.Messages()
	if len(got) != 1 || !got[0].Seen {
		t.Fatalf("log = %+v", got)
	}
	if s.Unseen("alice") != 0 {
		t.Fatalf("Unseen(alice) = %d", s.Unseen("alice"))
	}

	for i := 1; i <= 3; i++ {
		if s.Deliver(msg(fmt.Sprintf("q%d", i), "bob", "me")) {
			t.Fatal("message from other peer appended")
		}
		if n := s.Unseen("bob"); n != i {
			t.Fatalf("Unseen(bob) = %d, want %d", n, i)
		}
	}
	if len(s.Messages()) != 1 {
		t.Fatalf("log changed by other peer: %v", s.Messages())
	}
}

func TestFilterPeers(t *testing.T) {
	api := newFakeAPI()
	api.peers = []model.Peer{alice, bob, carol}
	s := New(api)
	if _, err := s.LoadPeers(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.FilterPeers("  LI "); len(got) != 1 || got[0].ID != "alice" {
		t.Fatalf("FilterPeers = %v", got)
	}
	if got := s.FilterPeers(""); len(got) != 3 {
		t.Fatalf("FilterPeers(\"\") = %v", got)
	}
	// 过滤结果不影响内部列表
	if len(s.Peers()) != 3 {
		t.Fatalf("Peers() = %v", s.Peers())
	}
}

func TestResetAndListener(t *testing.T) {
	api := newFakeAPI()
	api.peers = []model.Peer{alice}
	s := New(api)
	var kinds []ChangeKind
	s.SetListener(func(c Change) { kinds = append(kinds, c.Kind) })

	ctx := context.Background()
	if _, err := s.LoadPeers(ctx); err != nil {
		t.Fatal(err)
	}
	s.Deliver(msg("x", "bob", "me"))
	s.Reset()

	if len(s.Peers()) != 0 || len(s.UnseenCounts()) != 0 || s.Active() != nil {
		t.Fatal("Reset left state behind")
	}
	want := []ChangeKind{ChangePeers, ChangeUnseen, ChangeReset}
	if fmt.Sprint(kinds) != fmt.Sprint(want) {
		t.Fatalf("changes = %v, want %v", kinds, want)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}
