package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	err := New(KindNotFound, "file does not exist", "/tmp/params.txt")
	assert.Contains(t, err.Error(), "FILE_NOT_FOUND")
	assert.Contains(t, err.Error(), "/tmp/params.txt")
	assert.Contains(t, err.Error(), "file does not exist")
}

func TestNilErrorIsNoError(t *testing.T) {
	var err *Error
	assert.False(t, err.IsError())
	assert.Equal(t, "no error", err.Error())
}

func TestKindNoneIsNoError(t *testing.T) {
	err := &Error{Kind: KindNone}
	assert.False(t, err.IsError())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := AccessDenied("/etc/shadow", cause)

	require.True(t, err.IsError())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestGetKind(t *testing.T) {
	assert.Equal(t, KindNone, GetKind(nil))
	assert.Equal(t, KindEmpty, GetKind(Empty("f")))
	assert.Equal(t, KindUnknown, GetKind(stderrors.New("plain")))

	wrapped := fmt.Errorf("context: %w", ReadFailed("f", stderrors.New("io")))
	assert.Equal(t, KindReadError, GetKind(wrapped))
}

func TestIs(t *testing.T) {
	assert.True(t, Is(NotFound("f"), KindNotFound))
	assert.False(t, Is(NotFound("f"), KindEmpty))
	assert.False(t, Is(nil, KindNotFound))
}

func TestTimestampIsSet(t *testing.T) {
	before := time.Now()
	err := Timeout("/tmp/params.txt", 50*time.Millisecond)
	assert.False(t, err.Timestamp.Before(before))
	assert.Contains(t, err.Message, "50ms")
}
