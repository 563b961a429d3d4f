package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/reconcile"
)

const (
	envPrefix = "TERMINALCHAT"

	defaultChatType     = "conversation"
	defaultReplyMode    = "quote"
	defaultPageSize     = 20
	defaultUser         = "me"
	defaultLogLevel     = "info"
	defaultInsertPolicy = "any_edge"
	defaultReadDebounce = time.Second
	defaultMinVisible   = 500 * time.Millisecond
)

// Config holds application-level configuration.
type Config struct {
	ChatType       domain.ChatType
	ReplyMode      domain.ReplyMode
	PageSize       int
	UserID         string // transcript user shown as the current user
	TranscriptPath string // empty means the embedded demo transcript
	LogLevel       string
	LogPath        string
	Debounce       time.Duration
	MaxWait        time.Duration
	InsertPolicy   reconcile.InsertPolicy
	ReadDebounce   time.Duration
	ReadMinVisible time.Duration
	UIStatePath    string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	v := viper.New()
	ApplyDefaults(v)
	return v
}

// ApplyDefaults configures defaults and env bindings on v.
//
//	TERMINALCHAT_CHAT_TYPE          conversation | comments
//	TERMINALCHAT_CHAT_REPLY_MODE    quote | answer
//	TERMINALCHAT_TRANSCRIPT_PATH    YAML transcript (default: embedded demo)
//	TERMINALCHAT_LOG_PATH           log file (default: $TMPDIR/terminalchat.log)
func ApplyDefaults(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("chat.type", defaultChatType)
	v.SetDefault("chat.reply_mode", defaultReplyMode)
	v.SetDefault("chat.page_size", defaultPageSize)
	v.SetDefault("chat.user", defaultUser)
	v.SetDefault("transcript.path", "")
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.path", filepath.Join(os.TempDir(), "terminalchat.log"))
	v.SetDefault("queue.debounce", reconcile.DefaultDebounce)
	v.SetDefault("queue.max_wait", reconcile.DefaultMaxWait)
	v.SetDefault("list.insert_policy", defaultInsertPolicy)
	v.SetDefault("read.debounce", defaultReadDebounce)
	v.SetDefault("read.min_visible", defaultMinVisible)
	v.SetDefault("ui.state_path", defaultUIStatePath())
}

func defaultUIStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "terminalchat", "ui_state.yaml")
}

// Load parses configuration from v.
func Load(v *viper.Viper) (Config, error) {
	chatType, err := domain.ParseChatType(v.GetString("chat.type"))
	if err != nil {
		return Config{}, fmt.Errorf("chat.type: %w", err)
	}
	replyMode, err := domain.ParseReplyMode(v.GetString("chat.reply_mode"))
	if err != nil {
		return Config{}, fmt.Errorf("chat.reply_mode: %w", err)
	}
	policy, err := reconcile.ParseInsertPolicy(v.GetString("list.insert_policy"))
	if err != nil {
		return Config{}, fmt.Errorf("list.insert_policy: %w", err)
	}

	cfg := Config{
		ChatType:       chatType,
		ReplyMode:      replyMode,
		PageSize:       v.GetInt("chat.page_size"),
		UserID:         strings.TrimSpace(v.GetString("chat.user")),
		TranscriptPath: strings.TrimSpace(v.GetString("transcript.path")),
		LogLevel:       v.GetString("log.level"),
		LogPath:        strings.TrimSpace(v.GetString("log.path")),
		Debounce:       v.GetDuration("queue.debounce"),
		MaxWait:        v.GetDuration("queue.max_wait"),
		InsertPolicy:   policy,
		ReadDebounce:   v.GetDuration("read.debounce"),
		ReadMinVisible: v.GetDuration("read.min_visible"),
		UIStatePath:    strings.TrimSpace(v.GetString("ui.state_path")),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("chat.page_size must be positive, got %d", c.PageSize)
	}
	if c.UserID == "" {
		return fmt.Errorf("chat.user is required")
	}
	if c.LogPath == "" {
		return fmt.Errorf("log.path is required")
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("queue.debounce must be positive, got %s", c.Debounce)
	}
	if c.MaxWait < c.Debounce {
		return fmt.Errorf("queue.max_wait (%s) must not be shorter than queue.debounce (%s)", c.MaxWait, c.Debounce)
	}
	if c.ReadDebounce < 0 || c.ReadMinVisible < 0 {
		return fmt.Errorf("read.debounce and read.min_visible must not be negative")
	}
	return nil
}
