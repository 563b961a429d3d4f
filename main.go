package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/CrestNiraj12/terminalchat/app"
	"github.com/CrestNiraj12/terminalchat/domain"
	"github.com/CrestNiraj12/terminalchat/infra/clipboard"
	"github.com/CrestNiraj12/terminalchat/infra/config"
	"github.com/CrestNiraj12/terminalchat/infra/editor"
	"github.com/CrestNiraj12/terminalchat/infra/logging"
	"github.com/CrestNiraj12/terminalchat/infra/readtracker"
	"github.com/CrestNiraj12/terminalchat/infra/transcript"
	"github.com/CrestNiraj12/terminalchat/listview"
	"github.com/CrestNiraj12/terminalchat/reconcile"
	"github.com/CrestNiraj12/terminalchat/tui"
	"github.com/CrestNiraj12/terminalchat/tui/chat"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgFile string
)

// Simulated backend latencies of the transcript service.
const (
	pageDelay = 400 * time.Millisecond
	sendDelay = 600 * time.Millisecond
	readDelay = 2 * time.Second
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "terminalchat",
		Short: "A chat timeline in the terminal",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd)
		},
		SilenceUsage: true,
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
			fmt.Fprintf(cmd.OutOrStdout(), "terminalchat %s\ncommit: %s\nbuilt: %s\n", v, c, d)
		},
	})

	setupFlags(rootCmd)
	return rootCmd
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("chat-type", defaults.GetString("chat.type"), "Layout (conversation, comments)")
	cmd.PersistentFlags().String("reply-mode", defaults.GetString("chat.reply_mode"), "Reply placement (quote, answer)")
	cmd.PersistentFlags().Int("page-size", defaults.GetInt("chat.page_size"), "Messages loaded per history page")
	cmd.PersistentFlags().String("user", defaults.GetString("chat.user"), "Transcript user shown as yourself")
	cmd.PersistentFlags().String("transcript", defaults.GetString("transcript.path"), "YAML transcript to play (default: built-in demo)")
	cmd.PersistentFlags().String("insert-policy", defaults.GetString("list.insert_policy"), "When new rows are inserted (any_edge, live_edge, always)")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-path", defaults.GetString("log.path"), "Log file")

	bindFlag(cmd, "chat.type", "chat-type")
	bindFlag(cmd, "chat.reply_mode", "reply-mode")
	bindFlag(cmd, "chat.page_size", "page-size")
	bindFlag(cmd, "chat.user", "user")
	bindFlag(cmd, "transcript.path", "transcript")
	bindFlag(cmd, "list.insert_policy", "insert-policy")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.path", "log-path")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if dir, err := os.UserConfigDir(); err == nil {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(filepath.Join(dir, "terminalchat"))
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

// initialLayout applies the saved layout toggles unless a flag chose the
// layout for this run.
func initialLayout(cfg config.Config, st config.UIState, flagSet func(name string) bool) (domain.ChatType, domain.ReplyMode) {
	chatType, replyMode := cfg.ChatType, cfg.ReplyMode
	if st.ChatType != "" && !flagSet("chat-type") {
		if ct, err := domain.ParseChatType(st.ChatType); err == nil {
			chatType = ct
		}
	}
	if st.ReplyMode != "" && !flagSet("reply-mode") {
		if rm, err := domain.ParseReplyMode(st.ReplyMode); err == nil {
			replyMode = rm
		}
	}
	return chatType, replyMode
}

// layoutSaver reopens the transcript when the chat type changes and
// remembers the toggles for the next run.
type layoutSaver struct {
	path   string
	svc    *transcript.Service
	logger *zap.Logger

	mu       sync.Mutex
	chatType domain.ChatType
}

func (s *layoutSaver) apply(_ context.Context, chatType domain.ChatType, replyMode domain.ReplyMode) error {
	s.mu.Lock()
	changed := chatType != s.chatType
	s.chatType = chatType
	s.mu.Unlock()

	if changed {
		s.svc.Open(chatType)
	}
	s.logger.Info("layout changed", zap.Stringer("chat_type", chatType), zap.Stringer("reply_mode", replyMode))
	return config.SaveUIState(s.path, config.UIState{ChatType: chatType.String(), ReplyMode: replyMode.String()})
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	uiState, err := config.LoadUIState(cfg.UIStatePath)
	if err != nil {
		logger.Warn("ignoring saved ui state", zap.Error(err))
	}
	chatType, replyMode := initialLayout(cfg, uiState, func(name string) bool {
		return cmd.Flags().Changed(name)
	})

	script, err := transcript.Load(cfg.TranscriptPath, cfg.UserID, time.Now())
	if err != nil {
		return err
	}
	svc := transcript.NewService(script, transcript.Options{
		ChatType:  chatType,
		PageSize:  cfg.PageSize,
		PageDelay: pageDelay,
		SendDelay: sendDelay,
		ReadDelay: readDelay,
		Logger:    logger.Named("transcript"),
	})
	reads := readtracker.New(svc, cfg.ReadDebounce, cfg.ReadMinVisible, logger.Named("reads"))

	exec := tui.NewProgramExecutor()
	ctrl := reconcile.NewController(reconcile.Options{
		ChatType:     chatType,
		Location:     time.Local,
		InsertPolicy: cfg.InsertPolicy,
		Debounce:     cfg.Debounce,
		MaxWait:      cfg.MaxWait,
		Layout:       listview.Options{HeaderHeight: 1},
	}, reconcile.Deps{
		Executor:   exec,
		Pagination: svc,
		Reads:      reads,
		Logger:     logger.Named("reconcile"),
	})

	saver := &layoutSaver{path: cfg.UIStatePath, svc: svc, logger: logger, chatType: chatType}
	root := tui.NewApp(tui.Deps{
		Chat: chat.Deps{
			Controller: ctrl,
			Chat:       svc,
			Copier:     clipboard.NewSystem(),
			Pager:      svc,
			Unread:     svc,
			Reads:      reads,
		},
		Source:   svc,
		Editor:   editor.NewEnvEditor(),
		OnLayout: saver.apply,
		Logger:   logger.Named("tui"),
	}, chatType, replyMode)

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runCtx, cancel := context.WithCancel(signalCtx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(gctx))
	exec.Attach(p)
	unsubscribe := svc.Subscribe(func(msgs []domain.Message) {
		p.Send(chat.MessagesMsg{Messages: msgs})
	})
	defer unsubscribe()

	var account app.AccountService = svc
	me, err := account.CurrentUser(ctx)
	if err != nil {
		return err
	}
	logger.Info("starting",
		zap.String("user", me.ID),
		zap.Stringer("chat_type", chatType),
		zap.Stringer("reply_mode", replyMode),
		zap.Stringer("insert_policy", cfg.InsertPolicy),
		zap.Int("history", len(script.History)))

	g.Go(func() error { return ignoreCanceled(ctrl.Run(gctx)) })
	g.Go(func() error { return ignoreCanceled(svc.Run(gctx)) })
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return ignoreCanceled(err)
	})
	if err := g.Wait(); err != nil {
		logger.Error("terminalchat stopped", zap.Error(err))
		return fmt.Errorf("terminalchat: %w", err)
	}
	return nil
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}
