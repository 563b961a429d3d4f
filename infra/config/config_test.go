package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/reconcile"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper())
	require.NoError(t, err)

	require.Equal(t, domain.ChatConversation, cfg.ChatType)
	require.Equal(t, domain.ReplyQuote, cfg.ReplyMode)
	require.Equal(t, 20, cfg.PageSize)
	require.Equal(t, reconcile.DefaultDebounce, cfg.Debounce)
	require.Equal(t, reconcile.DefaultMaxWait, cfg.MaxWait)
	require.Equal(t, reconcile.InsertAtAnyEdge, cfg.InsertPolicy)
	require.Equal(t, time.Second, cfg.ReadDebounce)
	require.Equal(t, 500*time.Millisecond, cfg.ReadMinVisible)
	require.Empty(t, cfg.TranscriptPath)
	require.NotEmpty(t, cfg.LogPath)
}

func TestLoad_ParsesEnv(t *testing.T) {
	t.Setenv("TERMINALCHAT_CHAT_TYPE", "comments")
	t.Setenv("TERMINALCHAT_CHAT_REPLY_MODE", "answer")
	t.Setenv("TERMINALCHAT_CHAT_PAGE_SIZE", "5")
	t.Setenv("TERMINALCHAT_QUEUE_DEBOUNCE", "50ms")
	t.Setenv("TERMINALCHAT_QUEUE_MAX_WAIT", "200ms")
	t.Setenv("TERMINALCHAT_LIST_INSERT_POLICY", "live_edge")
	t.Setenv("TERMINALCHAT_TRANSCRIPT_PATH", "/tmp/chat.yaml")

	cfg, err := Load(NewViper())
	require.NoError(t, err)
	require.Equal(t, domain.ChatComments, cfg.ChatType)
	require.Equal(t, domain.ReplyAnswer, cfg.ReplyMode)
	require.Equal(t, 5, cfg.PageSize)
	require.Equal(t, 50*time.Millisecond, cfg.Debounce)
	require.Equal(t, 200*time.Millisecond, cfg.MaxWait)
	require.Equal(t, reconcile.InsertAtLiveEdge, cfg.InsertPolicy)
	require.Equal(t, "/tmp/chat.yaml", cfg.TranscriptPath)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"TERMINALCHAT_CHAT_TYPE", "thread"},
		{"TERMINALCHAT_CHAT_REPLY_MODE", "inline"},
		{"TERMINALCHAT_CHAT_PAGE_SIZE", "0"},
		{"TERMINALCHAT_CHAT_USER", " "},
		{"TERMINALCHAT_QUEUE_MAX_WAIT", "1ms"},
		{"TERMINALCHAT_LIST_INSERT_POLICY", "sometimes"},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load(NewViper())
			require.Error(t, err)
		})
	}
}

func TestUIState_LoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ui_state.yaml")

	st, err := LoadUIState(path)
	require.NoError(t, err, "missing state should not error")
	require.Equal(t, UIState{}, st)

	want := UIState{ChatType: "comments", ReplyMode: "answer"}
	require.NoError(t, SaveUIState(path, want))
	got, err := LoadUIState(path)
	require.NoError(t, err)
	require.Equal(t, want, got)

	require.NoError(t, os.WriteFile(path, []byte("chat_type: [unclosed"), 0o600))
	_, err = LoadUIState(path)
	require.Error(t, err)
}
