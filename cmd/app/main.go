package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/quire/internal"
	"github.com/starford/quire/internal/blog"
	"github.com/starford/quire/internal/site"
	pkgconfig "github.com/starford/quire/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func appOptions(cmd *cli.Command, cfg *internal.Config) []internal.Option {
	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}
	if cmd.Bool("live") {
		opts = append(opts, internal.WithMode(site.ModeLive))
	}
	return opts
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, appOptions(cmd, cfg)...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func render(_ context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("render: missing file argument")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
		path = "stdin"
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return internal.RenderArticle(cfg.Blog, path, data, cmd.Bool("json"), os.Stdout)
}

func newArticle(_ context.Context, cmd *cli.Command) error {
	slug := cmd.Args().First()
	if slug == "" {
		return fmt.Errorf("new: missing slug argument")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	date := blog.DateOf(time.Now())
	if raw := cmd.String("date"); raw != "" {
		if date, err = blog.ParseDate(raw); err != nil {
			return fmt.Errorf("new: --date: %w", err)
		}
	}
	title := cmd.String("title")
	if title == "" {
		title = slug
	}

	path, err := internal.NewArticle(cfg.Blog, slug, title, date)
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := append(appOptions(cmd, cfg), internal.WithLogOutput(os.Stderr))
	return internal.RunMCP(ctx, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:    "quire",
		Usage:   "Markdown blog server with live reload, full-text search and MCP tools",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.BoolFlag{
				Name:    "live",
				Aliases: []string{"debug-layout"},
				Usage:   "Re-render pages on every request and push reload events",
				Sources: cli.EnvVars("APP_LIVE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Parse one article file and print its HTML body",
				ArgsUsage: "<file|->",
				Action:    render,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Print title, date, read time and body as JSON"},
				},
			},
			{
				Name:      "new",
				Usage:     "Create an article with today's date",
				ArgsUsage: "<slug>",
				Action:    newArticle,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Article title (default: the slug)"},
					&cli.StringFlag{Name: "date", Usage: "Publication date as M/D/YYYY"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools on stdin/stdout",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
