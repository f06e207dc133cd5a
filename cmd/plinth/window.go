package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/taigrr/plinth/pkg/viewer"
	"github.com/taigrr/plinth/pkg/window"
)

func newWindowCmd(opts *options) *cobra.Command {
	var (
		width, height int
		pixelScale    int
	)

	cmd := &cobra.Command{
		Use:   "window <model>",
		Short: "View a model in a desktop window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps := max(pixelScale, 1)
			v := viewer.New(opts.cfg, width/ps, height/ps)
			if err := v.Show(cmd.Context(), viewer.LoadAsset(args[0])); err != nil {
				return err
			}
			return window.Run(cmd.Context(), v, window.Options{
				Title:      fmt.Sprintf("plinth - %s", filepath.Base(args[0])),
				Width:      width,
				Height:     height,
				FPS:        opts.cfg.FPS,
				PixelScale: ps,
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&width, "width", 960, "window width")
	f.IntVar(&height, "height", 720, "window height")
	f.IntVar(&pixelScale, "pixel-scale", 2, "screen pixels per rendered pixel")
	return cmd
}
