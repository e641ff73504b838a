package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"

	"kama_chat_client/internal/client"
	"kama_chat_client/internal/client/conversation"
	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/constants"
	"kama_chat_client/pkg/errorx"
)

const helpText = `commands:
  signup <email> <password> <name> | <bio>  create an account
  login <email> <password>                   log in
  logout                                     log out and forget the token
  whoami                                     show the current user
  peers [query]                              list peers, optionally filtered by name
  open <peer id | name>                      open a conversation and load its history
  close                                      leave the current conversation
  history                                    print the current conversation again
  send <text...>                             send text to the current conversation
  image <path> [caption...]                  send an image file
  media                                      list images shared in the current conversation
  online                                     list online peers
  profile <full name> | <bio>                update name and bio
  avatar <path>                              update the profile picture
  reconnect                                  re-establish the push channel
  quit                                       exit (the token is kept)
`

// terminal 把命令行输入翻译成客户端核心的调用
type terminal struct {
	core *client.Core

	mu  sync.Mutex
	out io.Writer
}

func newTerminal(core *client.Core, out io.Writer) *terminal {
	return &terminal{core: core, out: out}
}

func (t *terminal) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format, args...)
}

func (t *terminal) prompt() {
	name := "guest"
	if sess := t.core.Session.Current(); sess != nil {
		name = sess.FullName
	}
	if p := t.core.Conversations.Active(); p != nil {
		name += " -> " + p.FullName
	}
	t.printf("%s> ", name)
}

// onChange 会话状态变化回调，只做打印，不能回调核心的写操作
func (t *terminal) onChange(c conversation.Change) {
	switch c.Kind {
	case conversation.ChangeAppended:
		if c.Message != nil {
			t.printf("\n%s\n", t.formatMessage(*c.Message))
		}
	case conversation.ChangeUnseen:
		t.printf("\n[%s] %d unread\n", t.peerName(c.PeerID), c.Unseen)
	case conversation.ChangeHistory:
		t.printHistory()
	}
}

// exec 执行一行命令，返回 true 表示退出
func (t *terminal) exec(ctx context.Context, line string) bool {
	cmd, rest := splitCommand(line)
	var err error
	switch cmd {
	case "":
	case "help", "?":
		t.printf("%s", helpText)
	case "quit", "exit":
		return true
	case "signup":
		err = t.authenticate(ctx, model.AuthSignup, rest)
	case "login":
		err = t.authenticate(ctx, model.AuthLogin, rest)
	case "logout":
		t.core.Logout(ctx)
		t.printf("logged out\n")
	case "whoami":
		t.whoami()
	case "peers":
		t.listPeers(rest)
	case "open":
		err = t.open(ctx, rest)
	case "close":
		err = t.core.Conversations.SelectConversation(ctx, nil)
	case "history":
		t.printHistory()
	case "send":
		err = t.send(ctx, model.Draft{Text: rest})
	case "image":
		err = t.sendImage(ctx, rest)
	case "media":
		for _, img := range t.core.Conversations.SharedMedia() {
			t.printf("  %s\n", abbreviate(img, 60))
		}
	case "online":
		for _, id := range t.core.Presence.Online() {
			t.printf("  %s\n", t.peerName(id))
		}
	case "profile":
		err = t.updateProfile(ctx, rest)
	case "avatar":
		err = t.updateAvatar(ctx, rest)
	case "reconnect":
		err = t.core.Session.Reconnect(ctx)
	default:
		t.printf("unknown command %q, type `help`\n", cmd)
	}
	if err != nil {
		t.printf("error: %s\n", describe(err))
	}
	return false
}

func (t *terminal) authenticate(ctx context.Context, mode model.AuthMode, args string) error {
	creds := model.Credentials{}
	if mode == model.AuthSignup {
		var bio string
		args, bio, _ = strings.Cut(args, "|")
		creds.Bio = strings.TrimSpace(bio)
	}
	fields := strings.Fields(args)
	if len(fields) > 0 {
		creds.Email = fields[0]
	}
	if len(fields) > 1 {
		creds.Password = fields[1]
	}
	if mode == model.AuthSignup && len(fields) > 2 {
		creds.FullName = strings.Join(fields[2:], " ")
	}
	sess, err := t.core.Authenticate(ctx, mode, creds)
	if err != nil {
		return err
	}
	t.printf("hello, %s\n", sess.FullName)
	if t.core.Session.Connection() == nil {
		t.printf("push channel unavailable, run `reconnect` later\n")
	}
	t.refreshPeers(ctx)
	return nil
}

func (t *terminal) refreshPeers(ctx context.Context) {
	if _, err := t.core.Conversations.LoadPeers(ctx); err != nil {
		t.printf("error: %s\n", describe(err))
		return
	}
	t.listPeers("")
}

func (t *terminal) whoami() {
	sess := t.core.Session.Current()
	if sess == nil {
		t.printf("not logged in\n")
		return
	}
	t.printf("%s (%s)\n  bio: %s\n", sess.FullName, sess.UserID, sess.Bio)
}

func (t *terminal) listPeers(query string) {
	for _, p := range t.core.Conversations.FilterPeers(query) {
		status := "offline"
		if t.core.Presence.IsReachable(p.ID) {
			status = "online"
		}
		line := fmt.Sprintf("  %-20s %-8s %s", p.FullName, status, p.ID)
		if n := t.core.Conversations.Unseen(p.ID); n > 0 {
			line += fmt.Sprintf("  (%d unread)", n)
		}
		t.printf("%s\n", line)
	}
}

func (t *terminal) open(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errorx.New(errorx.CodeInvalidParam, "usage: open <peer id | name>")
	}
	if p, ok := t.core.Conversations.Peer(query); ok {
		return t.core.Conversations.SelectConversation(ctx, &p)
	}
	matches := t.core.Conversations.FilterPeers(query)
	switch len(matches) {
	case 0:
		return errorx.Newf(errorx.CodeNotFound, "no peer matches %q", query)
	case 1:
		return t.core.Conversations.SelectConversation(ctx, &matches[0])
	default:
		return errorx.Newf(errorx.CodeInvalidParam, "%d peers match %q, use the id", len(matches), query)
	}
}

func (t *terminal) send(ctx context.Context, draft model.Draft) error {
	active := t.core.Conversations.Active()
	if active == nil {
		return errorx.ErrNoActiveConversation
	}
	_, err := t.core.Conversations.Send(ctx, active.ID, draft)
	return err
}

func (t *terminal) sendImage(ctx context.Context, args string) error {
	path, caption := splitCommand(args)
	if path == "" {
		return errorx.New(errorx.CodeInvalidParam, "usage: image <path> [caption...]")
	}
	img, err := readDataURL(path)
	if err != nil {
		return err
	}
	return t.send(ctx, model.Draft{Text: caption, Image: img})
}

func (t *terminal) updateProfile(ctx context.Context, args string) error {
	name, bio, ok := strings.Cut(args, "|")
	if !ok {
		return errorx.New(errorx.CodeInvalidParam, "usage: profile <full name> | <bio>")
	}
	sess, err := t.core.Session.UpdateProfile(ctx, model.ProfileUpdate{FullName: name, Bio: bio})
	if err != nil {
		return err
	}
	t.printf("profile updated: %s\n", sess.FullName)
	return nil
}

func (t *terminal) updateAvatar(ctx context.Context, path string) error {
	sess := t.core.Session.Current()
	if sess == nil {
		return errorx.ErrUnauthorized
	}
	img, err := readDataURL(strings.TrimSpace(path))
	if err != nil {
		return err
	}
	_, err = t.core.Session.UpdateProfile(ctx, model.ProfileUpdate{
		FullName:   sess.FullName,
		Bio:        sess.Bio,
		ProfilePic: img,
	})
	if err == nil {
		t.printf("profile picture updated\n")
	}
	return err
}

func (t *terminal) printHistory() {
	active := t.core.Conversations.Active()
	if active == nil {
		return
	}
	msgs := t.core.Conversations.Messages()
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\n--- %s (%d messages) ---\n", active.FullName, len(msgs))
	for _, m := range msgs {
		fmt.Fprintln(t.out, t.formatMessage(m))
	}
}

// formatMessage 推送回调里也会调用
func (t *terminal) formatMessage(m model.Message) string {
	who := m.SenderID
	if sess := t.core.Session.Current(); sess != nil && sess.UserID == m.SenderID {
		who = "me"
	} else if p, ok := t.core.Conversations.Peer(m.SenderID); ok {
		who = p.FullName
	}
	body := m.Text
	if m.HasImage() {
		body = strings.TrimSpace(body + " [image]")
	}
	return fmt.Sprintf("%s %s: %s", m.CreatedAt.Local().Format("15:04"), who, body)
}

func (t *terminal) peerName(id string) string {
	if p, ok := t.core.Conversations.Peer(id); ok {
		return p.FullName
	}
	return id
}

// readDataURL 读取图片文件并编码为 data URL
func readDataURL(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errorx.Wrapf(err, errorx.CodeInvalidParam, "cannot read %s", path)
	}
	if info.Size() > constants.IMAGE_MAX_SIZE {
		return "", errorx.New(errorx.CodeInvalidParam, "image must be at most 5MB")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errorx.Wrapf(err, errorx.CodeInvalidParam, "cannot read %s", path)
	}
	mime := http.DetectContentType(raw)
	if !strings.HasPrefix(mime, "image/") {
		return "", errorx.Newf(errorx.CodeInvalidParam, "%s is not an image (%s)", path, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func describe(err error) string {
	switch {
	case errorx.IsNetwork(err):
		return "network error, try again: " + errorx.Message(err)
	case errorx.IsAuth(err):
		return "authentication failed: " + errorx.Message(err)
	default:
		return errorx.Message(err)
	}
}
