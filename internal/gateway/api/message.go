package api

import (
	"context"
	"net/http"
	"net/url"

	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/dto/respond"
	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
)

// ListPeers GET /api/messages/users
func (c *Client) ListPeers(ctx context.Context) ([]model.Peer, map[string]int, error) {
	var resp respond.UsersRespond
	if err := c.do(ctx, http.MethodGet, "/api/messages/users", c.currentToken(), nil, &resp, errorx.CodeServerBusy); err != nil {
		return nil, nil, err
	}
	return resp.PeerList(), resp.UnseenCounts(), nil
}

// History GET /api/messages/{peerId}
func (c *Client) History(ctx context.Context, peerID string) ([]model.Message, error) {
	var resp respond.MessagesRespond
	path := "/api/messages/" + url.PathEscape(peerID)
	if err := c.do(ctx, http.MethodGet, path, c.currentToken(), nil, &resp, errorx.CodeServerBusy); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Send POST /api/messages/send/{peerId}
func (c *Client) Send(ctx context.Context, peerID string, draft model.Draft) (model.Message, error) {
	body := request.SendMessageRequest{Text: draft.Text, Image: draft.Image}
	var resp respond.SendRespond
	path := "/api/messages/send/" + url.PathEscape(peerID)
	if err := c.do(ctx, http.MethodPost, path, c.currentToken(), body, &resp, errorx.CodeServerBusy); err != nil {
		return model.Message{}, err
	}
	return resp.NewMessage, nil
}

// MarkSeen PUT /api/messages/mark/{messageId}
func (c *Client) MarkSeen(ctx context.Context, messageID string) error {
	var resp respond.BaseRespond
	path := "/api/messages/mark/" + url.PathEscape(messageID)
	return c.do(ctx, http.MethodPut, path, c.currentToken(), nil, &resp, errorx.CodeServerBusy)
}
