package presence

import (
	"reflect"
	"testing"

	"kama_chat_client/internal/gateway/socket/sockettest"
	"kama_chat_client/pkg/constants"
)

func TestRosterReplacesWholesale(t *testing.T) {
	tr := New()
	ch := sockettest.NewChannel("me")
	tr.Attach(ch)

	ch.Emit(constants.EVENT_ONLINE_USERS, []string{"u1", "u2"})
	if !tr.IsReachable("u1") || tr.IsReachable("u3") {
		t.Fatalf("after first roster: online = %v", tr.Online())
	}

	ch.Emit(constants.EVENT_ONLINE_USERS, []string{"u3"})
	if tr.IsReachable("u1") {
		t.Fatal("u1 still reachable after roster without u1")
	}
	if !tr.IsReachable("u3") {
		t.Fatal("u3 not reachable")
	}
	if got := tr.Online(); !reflect.DeepEqual(got, []string{"u3"}) {
		t.Fatalf("Online() = %v", got)
	}
}

func TestAttachIsIdempotent(t *testing.T) {
	tr := New()
	ch := sockettest.NewChannel("me")
	tr.Attach(ch)
	tr.Attach(ch)
	if n := ch.Handlers(constants.EVENT_ONLINE_USERS); n != 1 {
		t.Fatalf("handlers = %d, want 1", n)
	}
}

func TestAttachOtherChannelDetachesOld(t *testing.T) {
	tr := New()
	old := sockettest.NewChannel("alice")
	tr.Attach(old)
	old.Emit(constants.EVENT_ONLINE_USERS, []string{"u1"})

	next := sockettest.NewChannel("bob")
	tr.Attach(next)
	if n := old.Handlers(constants.EVENT_ONLINE_USERS); n != 0 {
		t.Fatalf("old channel still has %d handlers", n)
	}
	if len(tr.Online()) != 0 {
		t.Fatalf("presence not reset on rebind: %v", tr.Online())
	}

	// 旧通道的事件不再影响名单
	old.Emit(constants.EVENT_ONLINE_USERS, []string{"ghost"})
	if tr.IsReachable("ghost") {
		t.Fatal("stale channel event applied")
	}
	next.Emit(constants.EVENT_ONLINE_USERS, []string{"u2"})
	if !tr.IsReachable("u2") {
		t.Fatal("new channel event not applied")
	}
}

func TestDetach(t *testing.T) {
	tr := New()
	ch := sockettest.NewChannel("me")
	tr.Attach(ch)
	ch.Emit(constants.EVENT_ONLINE_USERS, []string{"u1"})

	tr.Detach()
	tr.Detach()
	if n := ch.Handlers(constants.EVENT_ONLINE_USERS); n != 0 {
		t.Fatalf("handlers after Detach = %d", n)
	}
	if tr.IsReachable("u1") {
		t.Fatal("presence not cleared on Detach")
	}
}

func TestMalformedRosterIgnored(t *testing.T) {
	tr := New()
	ch := sockettest.NewChannel("me")
	tr.Attach(ch)
	ch.Emit(constants.EVENT_ONLINE_USERS, []string{"u1"})
	ch.Emit(constants.EVENT_ONLINE_USERS, map[string]int{"bad": 1})
	if !tr.IsReachable("u1") {
		t.Fatal("malformed event should leave roster untouched")
	}
}
