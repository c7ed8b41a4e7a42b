package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cofounder/pkg/api"
	"cofounder/pkg/logger"
	"cofounder/pkg/store"
)

// smallest valid PNG header is enough for sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestValidateKey(t *testing.T) {
	for _, bad := range []string{"", "/abs", "a/../b", "a/./b", "a//b", "..", `a\b`} {
		assert.ErrorIs(t, ValidateKey(bad), ErrInvalidInput, bad)
	}
	assert.NoError(t, ValidateKey("user/1.png"))
}

func TestDiskStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	disk, err := NewDiskStore(t.TempDir(), "http://localhost:5000/", "chat-uploads")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "u1/a.txt", strings.NewReader("hello"), "text/plain"))
	rc, err := disk.Open(ctx, "u1/a.txt")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "http://localhost:5000/storage/v1/object/public/chat-uploads/u1/a.txt", disk.PublicURL("u1/a.txt"))

	require.NoError(t, disk.Delete(ctx, "u1/a.txt"))
	_, err = disk.Open(ctx, "u1/a.txt")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUploadServicePolicy(t *testing.T) {
	ctx := context.Background()
	disk, err := NewDiskStore(t.TempDir(), "http://localhost:5000", "chat-uploads")
	require.NoError(t, err)
	up := NewUploadService(disk, logger.Nop())

	res, err := up.Upload(ctx, "u1", "u1/pic.png", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "u1/pic.png", res.Key)
	assert.True(t, strings.HasSuffix(res.PublicURL, "/chat-uploads/u1/pic.png"))

	_, err = up.Upload(ctx, "u1", "u2/pic.png", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = up.Upload(ctx, "u1", "u1/page.html", strings.NewReader("<html><body>hi</body></html>"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := bytes.Repeat([]byte("a"), api.MaxUploadBytes+1)
	_, err = up.Upload(ctx, "u1", "u1/big.txt", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = up.Upload(ctx, "u1", "u1/notes.txt", strings.NewReader("plain notes"))
	assert.NoError(t, err)
}
