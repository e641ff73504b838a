package api

import (
	"context"
	"net/http"

	"kama_chat_client/internal/dto/request"
	"kama_chat_client/internal/dto/respond"
	"kama_chat_client/internal/model"
	"kama_chat_client/pkg/errorx"
)

// Check GET /api/auth/check
func (c *Client) Check(ctx context.Context, token string) (model.User, error) {
	var resp respond.CheckRespond
	if err := c.do(ctx, http.MethodGet, "/api/auth/check", token, nil, &resp, errorx.CodeUnauthorized); err != nil {
		return model.User{}, err
	}
	return resp.User, nil
}

// Authenticate POST /api/auth/{signup|login}
func (c *Client) Authenticate(ctx context.Context, mode model.AuthMode, creds model.Credentials) (string, model.User, error) {
	if !mode.Valid() {
		return "", model.User{}, errorx.Newf(errorx.CodeInvalidParam, "未知的认证方式 %q", mode)
	}

	var body any
	if mode == model.AuthSignup {
		body = request.SignupRequest{
			FullName: creds.FullName,
			Email:    creds.Email,
			Password: creds.Password,
			Bio:      creds.Bio,
		}
	} else {
		body = request.LoginRequest{
			Email:    creds.Email,
			Password: creds.Password,
		}
	}

	var resp respond.AuthRespond
	if err := c.do(ctx, http.MethodPost, "/api/auth/"+string(mode), "", body, &resp, errorx.CodeUnauthorized); err != nil {
		return "", model.User{}, err
	}
	if resp.Token == "" {
		return "", model.User{}, errorx.New(errorx.CodeUnauthorized, "服务端未返回 token")
	}
	return resp.Token, resp.UserData, nil
}

// UpdateProfile PUT /api/auth/update-profile
func (c *Client) UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.User, error) {
	body := request.UpdateProfileRequest{
		FullName:   update.FullName,
		Bio:        update.Bio,
		ProfilePic: update.ProfilePic,
	}
	var resp respond.ProfileRespond
	if err := c.do(ctx, http.MethodPut, "/api/auth/update-profile", c.currentToken(), body, &resp, errorx.CodeServerBusy); err != nil {
		return model.User{}, err
	}
	return resp.User, nil
}
