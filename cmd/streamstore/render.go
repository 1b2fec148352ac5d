package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/streamstore/internal/publish"
)

func renderCmd(configPath *string) *cobra.Command {
	var (
		output string
		target string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Server-render the demo page",
		Long: `Render the demo page from its initial state, as GET / would,
and write it to stdout, a file or an S3 bucket.

Examples:
  streamstore render
  streamstore render -o index.html
  streamstore render --publish s3://my-site/index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			var dest publish.Target
			if target != "" {
				if dest, err = publish.ParseTarget(target); err != nil {
					return err
				}
			}

			page, err := newServer(cfg).RenderPage(cmd.Context())
			if err != nil {
				return err
			}

			switch {
			case target != "":
				p := publish.New(publish.NewClient(cfg.Publish), slog.Default())
				if err := p.Page(cmd.Context(), dest, page); err != nil {
					return err
				}
				info("published %s", dest)
				return nil
			case output != "":
				return os.WriteFile(output, page, 0o644)
			default:
				_, err = cmd.OutOrStdout().Write(page)
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the page to this file instead of stdout")
	cmd.Flags().StringVar(&target, "publish", "", "Upload the page to s3://bucket/key")
	cmd.MarkFlagsMutuallyExclusive("output", "publish")
	return cmd
}
