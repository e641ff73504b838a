package message

import (
	"sync"
	"testing"
	"time"

	"kama_chat_client/internal/dao/memory"
	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/constants"
	"kama_chat_client/pkg/errorx"
)

type pushed struct {
	userID string
	event  string
	data   any
}

type recordPusher struct {
	mu     sync.Mutex
	online map[string]bool
	events []pushed
}

func (p *recordPusher) Push(userID, event string, data any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.online[userID] {
		return false
	}
	p.events = append(p.events, pushed{userID, event, data})
	return true
}

func setup(t *testing.T) (*messageService, *recordPusher) {
	t.Helper()
	repos := memory.NewRepositories()
	now := time.Now()
	for i, id := range []string{"alice", "bob", "carol"} {
		err := repos.User.Create(&model.Account{
			User:      model.User{ID: id, Email: id + "@example.com", FullName: id},
			CreatedAt: now.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("seed %s: %v", id, err)
		}
	}
	pusher := &recordPusher{online: map[string]bool{"bob": true}}
	return NewMessageService(repos, pusher), pusher
}

func TestSendPushesToOnlineReceiver(t *testing.T) {
	svc, pusher := setup(t)

	msg, err := svc.Send("alice", "bob", request.SendMessageRequest{Text: "hi"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg.ID == "" || msg.SenderID != "alice" || msg.ReceiverID != "bob" || msg.Seen {
		t.Fatalf("msg = %+v", msg)
	}
	if len(pusher.events) != 1 || pusher.events[0].event != constants.EVENT_NEW_MESSAGE {
		t.Fatalf("events = %+v", pusher.events)
	}

	// carol 不在线，消息照常保存
	if _, err := svc.Send("alice", "carol", request.SendMessageRequest{Text: "hey"}); err != nil {
		t.Fatalf("send offline: %v", err)
	}
	if len(pusher.events) != 1 {
		t.Fatalf("offline receiver got push: %+v", pusher.events)
	}
}

func TestSendRejectsSelfAndUnknownReceiver(t *testing.T) {
	svc, _ := setup(t)
	if _, err := svc.Send("alice", "alice", request.SendMessageRequest{Text: "me"}); !errorx.IsValidation(err) {
		t.Fatalf("self send err = %v", err)
	}
	if _, err := svc.Send("alice", "nobody", request.SendMessageRequest{Text: "?"}); !errorx.IsNotFound(err) {
		t.Fatalf("unknown receiver err = %v", err)
	}
}

func TestListPeersAndHistoryMarksSeen(t *testing.T) {
	svc, _ := setup(t)
	_, _ = svc.Send("alice", "bob", request.SendMessageRequest{Text: "1"})
	_, _ = svc.Send("alice", "bob", request.SendMessageRequest{Text: "2"})
	_, _ = svc.Send("carol", "bob", request.SendMessageRequest{Text: "3"})

	peers, unseen, err := svc.ListPeers("bob")
	if err != nil {
		t.Fatalf("list peers: %v", err)
	}
	if len(peers) != 2 || peers[0].ID != "alice" || peers[1].ID != "carol" {
		t.Fatalf("peers = %+v", peers)
	}
	if unseen["alice"] != 2 || unseen["carol"] != 1 {
		t.Fatalf("unseen = %v", unseen)
	}

	history, err := svc.History("bob", "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Text != "1" || !history[1].Seen {
		t.Fatalf("history = %+v", history)
	}

	_, unseen, _ = svc.ListPeers("bob")
	if unseen["alice"] != 0 || unseen["carol"] != 1 {
		t.Fatalf("unseen after history = %v", unseen)
	}

	empty, err := svc.History("alice", "carol")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty history = %#v, %v", empty, err)
	}
}

func TestMarkSeen(t *testing.T) {
	svc, _ := setup(t)
	msg, _ := svc.Send("alice", "bob", request.SendMessageRequest{Text: "x"})

	if err := svc.MarkSeen("carol", msg.ID); err == nil {
		t.Fatal("non-receiver marked message seen")
	}
	if err := svc.MarkSeen("bob", msg.ID); err != nil {
		t.Fatalf("mark seen: %v", err)
	}
	_, unseen, _ := svc.ListPeers("bob")
	if len(unseen) != 0 {
		t.Fatalf("unseen = %v", unseen)
	}
}
