package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"cag/internal/config"
	"cag/internal/domain"
	"cag/internal/generation/extractive"
	"cag/internal/generation/openai"
	mylog "cag/internal/log"
	"cag/internal/metrics"
	"cag/internal/service"
	"cag/internal/store"
	"cag/internal/tui"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "cag",
		Usage: "cache augmented generation over a topic-tagged document set",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config (default ./config.yaml, then ~/.config/cag/config.yaml)",
				Sources: cli.NewValueSourceChain(cli.EnvVar("CAG_CONFIG")),
			},
		},
		Action: tuiAction,
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "interactive question answering",
				Action: tuiAction,
			},
			{
				Name:      "ask",
				Usage:     "answer a single question",
				ArgsUsage: "QUESTION...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-cache", Usage: "skip the topic cache and use similarity search"},
					&cli.BoolFlag{Name: "json", Usage: "print result and metrics as JSON"},
					&cli.BoolFlag{Name: "explain", Usage: "show matched topics and search scores (on stderr with --json)"},
				},
				Action: askAction,
			},
			{
				Name:   "topics",
				Usage:  "list topics and whether they are cached",
				Action: topicsAction,
			},
			{
				Name:   "seed",
				Usage:  "write the sample document set if the data file is missing",
				Action: seedAction,
			},
		},
	}
}

type session struct {
	cfg   *config.AppConfig
	store *store.Store
	svc   *service.CAGService
}

func loadConfig(cmd *cli.Command) (*config.AppConfig, error) {
	if path := cmd.String("config"); path != "" {
		return config.Load(path)
	}
	cfg, path, err := config.LoadDefault()
	if err == nil {
		log.WithField("path", path).Debug("config loaded")
	}
	return cfg, err
}

func newSession(cmd *cli.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Data.SeedSample {
		if _, err := store.EnsureSampleFile(cfg.Data.Path); err != nil {
			return nil, fmt.Errorf("seed sample data: %w", err)
		}
	}
	docs, err := store.LoadFile(cfg.Data.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		log.WithField("path", cfg.Data.Path).Warn("data file missing, starting with an empty store")
	}
	st := store.New(docs)

	gen, err := newGenerator(cfg.Generator)
	if err != nil {
		return nil, err
	}
	svc := service.NewCAGService(st, gen, service.Options{
		TopK:          cfg.Search.TopK,
		MatchAcronyms: cfg.Cache.MatchAcronyms,
	})
	if cfg.Cache.Preload {
		svc.Preload(cfg.Cache.Topics...)
	}
	return &session{cfg: cfg, store: st, svc: svc}, nil
}

func newGenerator(cfg config.GeneratorConfig) (domain.Generator, error) {
	switch cfg.Type {
	case "extractive", "":
		return extractive.New(cfg.MaxSentences), nil
	case "openai", "groq":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("%s generator config missing", cfg.Type)
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKeyEnv:   cfg.OpenAI.APIKeyEnv,
			Model:       cfg.OpenAI.Model,
			Timeout:     time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("%s generator init failed: %w", cfg.Type, err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown generator: %s", cfg.Type)
	}
}

func tuiAction(ctx context.Context, cmd *cli.Command) error {
	// The terminal belongs to the TUI; logs go to CAG_LOG_FILE if set.
	var w io.Writer = io.Discard
	if path := os.Getenv("CAG_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	mylog.InitLogger(w)

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(tui.New(ctx, s.svc), tea.WithContext(ctx)).Run()
	return err
}

type askOutput struct {
	Result struct {
		Query        string   `json:"query"`
		Response     string   `json:"response"`
		UsedCache    bool     `json:"used_cache"`
		TopicsUsed   []string `json:"topics_used"`
		ResponseTime float64  `json:"response_time"`
	} `json:"result"`
	Metrics metrics.Snapshot `json:"metrics"`
}

func askAction(ctx context.Context, cmd *cli.Command) error {
	query := strings.Join(cmd.Args().Slice(), " ")
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	w := cmd.Root().Writer
	useCache := !cmd.Bool("no-cache")

	if cmd.Bool("explain") {
		ew := w
		if cmd.Bool("json") {
			// keep stdout parseable
			ew = cmd.Root().ErrWriter
			if ew == nil {
				ew = os.Stderr
			}
		}
		explain(ew, s, query, useCache)
	}

	res, err := s.svc.Answer(ctx, query, useCache)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		var out askOutput
		out.Result.Query = res.Query
		out.Result.Response = res.Response
		out.Result.UsedCache = res.UsedCache
		out.Result.TopicsUsed = res.TopicsUsed
		out.Result.ResponseTime = res.ResponseTime.Seconds()
		out.Metrics = s.svc.Metrics()
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	source := "similarity search"
	if res.UsedCache {
		source = "cache [" + strings.Join(res.TopicsUsed, ", ") + "]"
	}
	fmt.Fprintf(w, "%s\n\n(%s, %s)\n", res.Response, source, res.ResponseTime.Round(time.Millisecond))
	return nil
}

func explain(w io.Writer, s *session, query string, useCache bool) {
	if useCache {
		fmt.Fprintf(w, "relevant topics: %s\n", strings.Join(s.svc.PredictRelevantTopics(query), ", "))
	}
	for _, hit := range s.store.SearchScored(query, s.cfg.Search.TopK) {
		fmt.Fprintf(w, "  %.4f  %-4s %s\n", hit.Score, hit.Document.ID, hit.Document.Topic)
	}
	fmt.Fprintln(w)
}

func topicsAction(_ context.Context, cmd *cli.Command) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	cached := make(map[string]bool)
	for _, t := range s.svc.CachedTopics() {
		cached[strings.ToLower(t)] = true
	}
	w := cmd.Root().Writer
	for _, t := range s.store.AllTopics() {
		mark := " "
		if cached[strings.ToLower(t)] {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %-30s %s docs\n", mark, t, humanize.Comma(int64(len(s.store.GetByTopic(t)))))
	}
	fmt.Fprintf(w, "%s documents, %s cached topics\n",
		humanize.Comma(int64(s.store.Len())), humanize.Comma(int64(len(cached))))
	return nil
}

func seedAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	wrote, err := store.EnsureSampleFile(cfg.Data.Path)
	if err != nil {
		return err
	}
	w := cmd.Root().Writer
	if wrote {
		fmt.Fprintf(w, "wrote %d sample documents to %s\n", len(store.SampleDocuments()), cfg.Data.Path)
	} else {
		fmt.Fprintf(w, "%s already exists\n", cfg.Data.Path)
	}
	return nil
}
