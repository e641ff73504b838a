package validate

import (
	"strings"
	"testing"

	"kama_chat_client/internal/dto/request"
	"kama_chat_client/pkg/errorx"
)

func TestStruct(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}

	tests := []struct {
		name    string
		obj     any
		wantErr bool
		field   string
	}{
		{"login ok", &request.LoginRequest{Email: "a@b.com", Password: "123456"}, false, ""},
		{"login bad email", &request.LoginRequest{Email: "nope", Password: "123456"}, true, "email"},
		{"login short password", &request.LoginRequest{Email: "a@b.com", Password: "1"}, false, ""},
		{"login empty password", &request.LoginRequest{Email: "a@b.com"}, true, "password"},
		{"signup missing name", &request.SignupRequest{Email: "a@b.com", Password: "123456", Bio: "hi"}, true, "fullName"},
		{"signup missing bio", &request.SignupRequest{FullName: "A", Email: "a@b.com", Password: "123456"}, true, "bio"},
		{"signup short password", &request.SignupRequest{FullName: "A", Email: "a@b.com", Password: "1", Bio: "hi"}, true, "password"},
		{"send text only", &request.SendMessageRequest{Text: "hi"}, false, ""},
		{"send image only", &request.SendMessageRequest{Image: "data:image/png;base64,AA=="}, false, ""},
		{"send empty", &request.SendMessageRequest{}, true, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.obj)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Struct() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errorx.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(errorx.Message(err), tt.field) {
				t.Fatalf("message %q does not mention %q", errorx.Message(err), tt.field)
			}
		})
	}
}

func TestRemoveTopStruct(t *testing.T) {
	got := RemoveTopStruct(map[string]string{"LoginRequest.email": "bad"})
	if got["email"] != "bad" {
		t.Fatalf("RemoveTopStruct() = %v", got)
	}
}
