package errors

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToJSON(t *testing.T) {
	require.Nil(t, ToJSON(nil))

	err := WithContext(Wrap(stderrors.New("secret-token-in-url"), CodeBackend, "copy failed"), "key", "a.txt")
	resp := ToJSON(err)

	require.Equal(t, "BACKEND_FAILURE", resp.Code)
	require.Equal(t, "copy failed", resp.Message)
	require.Equal(t, "RETRYABLE", resp.Classification)
	require.Equal(t, "a.txt", resp.Context["key"])
}

func TestToJSON_StandardError(t *testing.T) {
	resp := ToJSON(stderrors.New("plain"))
	require.Equal(t, "UNKNOWN", resp.Code)
	require.Equal(t, "plain", resp.Message)
	require.Equal(t, "PERMANENT", resp.Classification)
}

func TestMarshalJSON(t *testing.T) {
	data, err := json.Marshal(Wrap(stderrors.New("cause"), CodeHashFailed, "hash failed"))
	require.NoError(t, err)
	require.JSONEq(t, `{"code":"HASH_FAILED","message":"hash failed","classification":"PERMANENT"}`, string(data))
}
