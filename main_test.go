package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/infra/config"
	"github.com/CrestNiraj12/terminalchat/infra/transcript"
)

func TestResolveVersionInfo(t *testing.T) {
	tests := []struct {
		name                string
		v, c, d, mod        string
		settings            map[string]string
		wantV, wantC, wantD string
	}{
		{
			name: "ldflags win",
			v:    "v1.2.0", c: "abc", d: "2024-01-01",
			mod:      "v9.9.9",
			settings: map[string]string{"vcs.revision": "ffffffffffffffff"},
			wantV:    "v1.2.0", wantC: "abc", wantD: "2024-01-01",
		},
		{
			name: "module and vcs fill defaults",
			v:    "dev", c: "none", d: "unknown",
			mod:      "v0.3.1",
			settings: map[string]string{"vcs.revision": "0123456789abcdef", "vcs.time": "2024-05-10T12:00:00Z"},
			wantV:    "v0.3.1", wantC: "0123456789ab", wantD: "2024-05-10T12:00:00Z",
		},
		{
			name: "devel module keeps dev",
			v:    "dev", c: "none", d: "unknown",
			mod:   "(devel)",
			wantV: "dev", wantC: "none", wantD: "unknown",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, c, d := resolveVersionInfo(tc.v, tc.c, tc.d, tc.mod, tc.settings)
			if v != tc.wantV || c != tc.wantC || d != tc.wantD {
				t.Fatalf("got (%s, %s, %s) want (%s, %s, %s)", v, c, d, tc.wantV, tc.wantC, tc.wantD)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "terminalchat ") || !strings.Contains(out.String(), "commit: ") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestFlagsBindToConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()
	if err := cmd.PersistentFlags().Parse([]string{"--chat-type", "comments", "--page-size", "7", "--insert-policy", "always"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChatType != domain.ChatComments || cfg.PageSize != 7 || cfg.InsertPolicy.String() != "always" {
		t.Fatalf("flags not applied: %+v", cfg)
	}
}

func TestInitialLayout(t *testing.T) {
	cfg := config.Config{ChatType: domain.ChatConversation, ReplyMode: domain.ReplyQuote}
	saved := config.UIState{ChatType: "comments", ReplyMode: "answer"}
	none := func(string) bool { return false }

	ct, rm := initialLayout(cfg, saved, none)
	if ct != domain.ChatComments || rm != domain.ReplyAnswer {
		t.Fatalf("saved state should apply: %s %s", ct, rm)
	}

	ct, rm = initialLayout(cfg, saved, func(name string) bool { return name == "chat-type" })
	if ct != domain.ChatConversation || rm != domain.ReplyAnswer {
		t.Fatalf("explicit flag should win: %s %s", ct, rm)
	}

	ct, rm = initialLayout(cfg, config.UIState{ChatType: "sideways"}, none)
	if ct != domain.ChatConversation || rm != domain.ReplyQuote {
		t.Fatalf("invalid saved state should be ignored: %s %s", ct, rm)
	}
}

func TestLayoutSaver(t *testing.T) {
	script, err := transcript.Demo("me", time.Now())
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	svc := transcript.NewService(script, transcript.Options{PageSize: 5})
	published := 0
	defer svc.Subscribe(func([]domain.Message) { published++ })()

	path := filepath.Join(t.TempDir(), "state", "ui_state.yaml")
	s := &layoutSaver{path: path, svc: svc, logger: zap.NewNop()}

	if err := s.apply(context.Background(), domain.ChatConversation, domain.ReplyAnswer); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if published != 0 {
		t.Fatalf("reply mode change should not reopen the chat")
	}
	if err := s.apply(context.Background(), domain.ChatComments, domain.ReplyAnswer); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if published != 1 {
		t.Fatalf("chat type change should reopen the chat, published %d", published)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("state file: %v", err)
	}
	st, err := config.LoadUIState(path)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if st.ChatType != "comments" || st.ReplyMode != "answer" {
		t.Fatalf("saved state: %+v", st)
	}
}
