package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forumflow-dev/forumflow/internal/apiclient"
	"github.com/forumflow-dev/forumflow/internal/auth"
	"github.com/forumflow-dev/forumflow/internal/config"
	"github.com/forumflow-dev/forumflow/internal/domain"
	"github.com/forumflow-dev/forumflow/internal/engine"
	"github.com/forumflow-dev/forumflow/internal/logger"
	"github.com/forumflow-dev/forumflow/internal/markdown"
	"github.com/forumflow-dev/forumflow/internal/store"
	"github.com/forumflow-dev/forumflow/internal/validation"
)

const (
	defaultConfigDir     = "./config"
	defaultWatchInterval = 10 * time.Second
	defaultMetricsAddr   = ":9190"
)

const usage = `usage: forumflow [-config dir] <command> [args]

commands:
  thread <slug> [page]                     show a thread page
  post <slug> <content>                    reply to a thread
  edit-post <slug> <post-id> <content>     edit a post
  delete-post <slug> <post-id>             delete a post
  new-thread <category> <title> <content>  start a thread
  pin <category> <thread-id>               pin a thread
  lock <category> <thread-id>              lock a thread
  delete-thread <category> <thread-id>     delete a thread
  bulk <category> <verb> <id>...           bulk pin|lock|delete
  watch <slug>                             poll a thread, serve /metrics
`

func main() {
	configDir := flag.String("config", defaultConfigDir, "config directory")
	atomic := flag.Bool("atomic", false, "use the all-or-nothing bulk endpoint")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.MustLoad(*configDir)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	client := apiclient.New(cfg.Public.APIBaseURL, auth.NewBearer(cfg.BearerToken()))
	if cfg.Public.RequestTimeout > 0 {
		client.HttpClient.Timeout = cfg.Public.RequestTimeout
	}

	rules := validation.Default()
	if cfg.Public.MinContentLen > 0 {
		rules = validation.Rules{
			MinContent: cfg.Public.MinContentLen,
			MaxContent: cfg.Public.MaxContentLen,
			MinTitle:   cfg.Public.MinTitleLen,
			MaxTitle:   cfg.Public.MaxTitleLen,
		}
	}

	app := &app{
		cfg:  cfg,
		exec: engine.New(store.New(), client, rules),
	}
	if err := app.run(context.Background(), flag.Arg(0), flag.Args()[1:], *atomic); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg  *config.Config
	exec *engine.Executor
}

func (a *app) run(ctx context.Context, command string, args []string, atomic bool) error {
	switch command {
	case "thread":
		return a.showThread(ctx, args)
	case "post":
		return a.createPost(ctx, args)
	case "edit-post":
		return a.editPost(ctx, args)
	case "delete-post":
		return a.deletePost(ctx, args)
	case "new-thread":
		return a.newThread(ctx, args)
	case "pin":
		return a.moderate(ctx, args, engine.VerbPin)
	case "lock":
		return a.moderate(ctx, args, engine.VerbLock)
	case "delete-thread":
		return a.moderate(ctx, args, engine.VerbDelete)
	case "bulk":
		return a.bulk(ctx, args, atomic)
	case "watch":
		return a.watch(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) loadThread(ctx context.Context, slug string, page int) (store.State, error) {
	return a.exec.LoadThread(ctx, slug, page, a.cfg.Public.PostsPerPage)
}

func (a *app) showThread(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("thread: missing slug")
	}
	page := 1
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("thread: bad page %q", args[1])
		}
		page = parsed
	}
	state, err := a.loadThread(ctx, args[0], page)
	if err != nil {
		return err
	}
	printThread(state)
	return nil
}

func (a *app) createPost(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("post: need slug and content")
	}
	state, err := a.loadThread(ctx, args[0], 1)
	if err != nil {
		return err
	}
	result, err := a.exec.Execute(ctx, engine.NewCreatePost(state.Thread.Id, args[1]))
	if err != nil {
		return err
	}
	fmt.Printf("posted #%d\n", result.Post.Id)
	return nil
}

func (a *app) editPost(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("edit-post: need slug, post id and content")
	}
	id, err := parseId(args[1])
	if err != nil {
		return err
	}
	if _, err := a.loadThread(ctx, args[0], 1); err != nil {
		return err
	}
	_, err = a.exec.Execute(ctx, engine.NewEditPost(id, args[2]))
	return err
}

func (a *app) deletePost(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("delete-post: need slug and post id")
	}
	id, err := parseId(args[1])
	if err != nil {
		return err
	}
	if _, err := a.loadThread(ctx, args[0], 1); err != nil {
		return err
	}
	_, err = a.exec.Execute(ctx, engine.NewDeletePost(id))
	return err
}

func (a *app) newThread(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("new-thread: need category, title and content")
	}
	if _, err := a.exec.LoadCategory(ctx, args[0], 1, a.cfg.Public.ThreadsPerPage, ""); err != nil {
		return err
	}
	result, err := a.exec.Execute(ctx, engine.NewCreateThread(args[0], args[1], args[2]))
	if err != nil {
		return err
	}
	fmt.Printf("created thread %s (#%d)\n", result.Thread.Slug, result.Thread.Id)
	return nil
}

func (a *app) moderate(ctx context.Context, args []string, verb engine.Verb) error {
	if len(args) < 2 {
		return fmt.Errorf("%s: need category and thread id", verb)
	}
	id, err := parseId(args[1])
	if err != nil {
		return err
	}
	if _, err := a.exec.LoadCategory(ctx, args[0], 1, a.cfg.Public.ThreadsPerPage, ""); err != nil {
		return err
	}
	result := engine.NewBulkCoordinator(a.exec).Execute(ctx, []domain.ThreadId{id}, verb)
	if len(result.Failed) > 0 {
		return result.Failed[0].Err
	}
	return nil
}

func (a *app) bulk(ctx context.Context, args []string, atomic bool) error {
	if len(args) < 3 {
		return fmt.Errorf("bulk: need category, verb and at least one thread id")
	}
	verb := engine.Verb(args[1])
	ids := make([]domain.ThreadId, 0, len(args)-2)
	for _, arg := range args[2:] {
		id, err := parseId(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if _, err := a.exec.LoadCategory(ctx, args[0], 1, a.cfg.Public.ThreadsPerPage, ""); err != nil {
		return err
	}

	coordinator := engine.NewBulkCoordinator(a.exec)
	if atomic {
		return coordinator.ExecuteAtomic(ctx, ids, verb)
	}
	result := coordinator.Execute(ctx, ids, verb)
	fmt.Printf("%d succeeded, %d failed\n", len(result.Succeeded), len(result.Failed))
	for _, failure := range result.Failed {
		if engine.IsRetryable(failure.Err) {
			fmt.Printf("  #%d: %v (retryable)\n", failure.Id, failure.Err)
			continue
		}
		fmt.Printf("  #%d: %v\n", failure.Id, failure.Err)
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("bulk %s: %d of %d items failed", verb, len(result.Failed), len(ids))
	}
	return nil
}

func (a *app) watch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("watch: missing slug")
	}
	slug := args[0]

	metricsAddr := a.cfg.Public.MetricsAddr
	if metricsAddr == "" {
		metricsAddr = defaultMetricsAddr
	}
	go serveMetrics(metricsAddr)

	interval := a.cfg.Public.WatchInterval
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	seen := -1
	for {
		state, err := a.loadThread(ctx, slug, 1)
		if err != nil {
			logger.Log.Warn("watch fetch failed", "component", "watch", "slug", slug, "error", err)
		} else if state.Thread.ReplyCount != seen {
			seen = state.Thread.ReplyCount
			printThread(state)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func serveMetrics(addr string) {
	router := chi.NewRouter()
	router.Use(chi_middleware.Recoverer)
	router.Handle("/metrics", promhttp.Handler())
	logger.Log.Info("serving metrics", "component", "watch", "addr", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Log.Error("metrics server stopped", "component", "watch", "error", err)
	}
}

func printThread(state store.State) {
	thread := state.Thread
	if thread == nil {
		return
	}
	flags := ""
	if thread.IsPinned {
		flags += " [pinned]"
	}
	if thread.IsLocked {
		flags += " [locked]"
	}
	fmt.Printf("%s%s - %d replies (page %d/%d)\n\n",
		thread.Title, flags, thread.ReplyCount, state.PostsMeta.Page, state.PostsMeta.TotalPages)
	for i := range state.Posts {
		post := &state.Posts[i]
		fmt.Printf("#%d %s\n%s\n\n", post.Id, post.CreatedAt.Format(time.RFC822), markdown.Render(post.Content))
	}
}

func parseId(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", raw)
	}
	return id, nil
}
