package memory

import (
	"testing"
	"time"

	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
)

func account(id, email string, created time.Time) *model.Account {
	return &model.Account{
		User:      model.User{ID: id, Email: email, FullName: id},
		CreatedAt: created,
	}
}

func TestUserStoreEmailIsCaseInsensitive(t *testing.T) {
	s := NewUserStore()
	if err := s.Create(account("u1", "Alice@Example.com", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.Create(account("u2", " alice@example.com ", time.Now()))
	if errorx.GetCode(err) != errorx.CodeUserExist {
		t.Fatalf("duplicate email err = %v", err)
	}
	a, err := s.FindByEmail("ALICE@example.com")
	if err != nil || a.ID != "u1" {
		t.Fatalf("find by email = %+v, %v", a, err)
	}
	if _, err := s.FindByID("missing"); !errorx.IsNotFound(err) {
		t.Fatalf("missing id err = %v", err)
	}
}

func TestUserStoreFindAllExceptOrdersByCreation(t *testing.T) {
	s := NewUserStore()
	base := time.Now()
	_ = s.Create(account("c", "c@x.io", base.Add(2*time.Second)))
	_ = s.Create(account("a", "a@x.io", base))
	_ = s.Create(account("b", "b@x.io", base.Add(time.Second)))

	got, err := s.FindAllExcept("b")
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("got %+v", got)
	}
}

func TestUserStoreUpdateProfileKeepsPictureWhenEmpty(t *testing.T) {
	s := NewUserStore()
	a := account("u1", "u@x.io", time.Now())
	a.ProfilePic = "data:image/png;base64,AA=="
	_ = s.Create(a)

	updated, err := s.UpdateProfile("u1", "New", "bio", "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FullName != "New" || updated.Bio != "bio" || updated.ProfilePic != a.ProfilePic {
		t.Fatalf("updated = %+v", updated)
	}
	// 返回的是副本
	updated.FullName = "mutated"
	if got, _ := s.FindByID("u1"); got.FullName != "New" {
		t.Fatalf("store mutated through returned pointer: %q", got.FullName)
	}
}

func TestMessageStoreConversationAndUnseen(t *testing.T) {
	s := NewMessageStore()
	msgs := []model.Message{
		{ID: "1", SenderID: "a", ReceiverID: "b", Text: "hi"},
		{ID: "2", SenderID: "b", ReceiverID: "a", Text: "yo"},
		{ID: "3", SenderID: "c", ReceiverID: "a", Text: "hey"},
		{ID: "4", SenderID: "a", ReceiverID: "b", Text: "again"},
	}
	for i := range msgs {
		if err := s.Create(&msgs[i]); err != nil {
			t.Fatalf("create %s: %v", msgs[i].ID, err)
		}
	}
	if err := s.Create(&msgs[0]); err == nil {
		t.Fatal("duplicate id accepted")
	}

	conv, _ := s.FindConversation("b", "a")
	if len(conv) != 3 || conv[0].ID != "1" || conv[1].ID != "2" || conv[2].ID != "4" {
		t.Fatalf("conversation = %+v", conv)
	}

	unseen, _ := s.CountUnseen("b")
	if unseen["a"] != 2 || len(unseen) != 1 {
		t.Fatalf("unseen for b = %v", unseen)
	}

	_ = s.MarkConversationSeen("a", "b")
	unseen, _ = s.CountUnseen("b")
	if len(unseen) != 0 {
		t.Fatalf("unseen after mark = %v", unseen)
	}
	unseen, _ = s.CountUnseen("a")
	if unseen["b"] != 1 || unseen["c"] != 1 {
		t.Fatalf("unseen for a = %v", unseen)
	}
}

func TestMessageStoreMarkSeenOnlyByReceiver(t *testing.T) {
	s := NewMessageStore()
	_ = s.Create(&model.Message{ID: "1", SenderID: "a", ReceiverID: "b"})

	if err := s.MarkSeen("1", "a"); errorx.GetCode(err) != errorx.CodeUnauthorized {
		t.Fatalf("sender mark err = %v", err)
	}
	if err := s.MarkSeen("404", "b"); !errorx.IsNotFound(err) {
		t.Fatalf("missing mark err = %v", err)
	}
	if err := s.MarkSeen("1", "b"); err != nil {
		t.Fatalf("receiver mark: %v", err)
	}
	conv, _ := s.FindConversation("a", "b")
	if !conv[0].Seen {
		t.Fatal("message not seen")
	}
}
