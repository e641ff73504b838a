package tokenstore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"kama_chat_client/pkg/errorx"
)

// FileSlot 把 token 写在本地文件里
type FileSlot struct {
	path string
}

// NewFileSlot 创建文件槽
func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

func (f *FileSlot) Load(context.Context) (string, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "read token file %s", f.path)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Save 先写临时文件再改名，避免写到一半被读到
func (f *FileSlot) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "create token dir for %s", f.path)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(token), 0o600); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "write token file %s", tmp)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return errorx.Wrapf(err, errorx.CodeCacheError, "replace token file %s", f.path)
	}
	return nil
}

func (f *FileSlot) Clear(context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errorx.Wrapf(err, errorx.CodeCacheError, "remove token file %s", f.path)
	}
	return nil
}
