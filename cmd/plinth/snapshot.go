package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/plinth/pkg/render"
	"github.com/taigrr/plinth/pkg/shadow"
	"github.com/taigrr/plinth/pkg/viewer"
)

func newSnapshotCmd(opts *options) *cobra.Command {
	var (
		out           string
		width, height int
		scale         int
	)

	cmd := &cobra.Command{
		Use:   "snapshot <model>",
		Short: "Render a model to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 || scale <= 0 {
				return fmt.Errorf("width, height and scale must be positive")
			}

			v := viewer.New(opts.cfg, width, height)
			if err := v.Show(cmd.Context(), viewer.LoadAsset(args[0])); err != nil {
				return err
			}

			start := time.Now()
			img := v.Snapshot(scale)
			stats := v.Stats()
			slog.Info("rendered",
				"triangles", stats.Triangles,
				"meshes_culled", stats.Culled.MeshesCulled,
				"elapsed", time.Since(start))

			if err := render.SavePNG(out, img); err != nil {
				return err
			}
			slog.Info("snapshot written", "path", out, "width", img.Bounds().Dx(), "height", img.Bounds().Dy())
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&out, "output", "o", "snapshot.png", "output PNG path")
	f.IntVar(&width, "width", 320, "render width in pixels")
	f.IntVar(&height, "height", 240, "render height in pixels")
	f.IntVar(&scale, "scale", 1, "integer upscale applied to the PNG")
	return cmd
}

func newShadowCmd(_ *options) *cobra.Command {
	var (
		out  string
		size int
	)

	cmd := &cobra.Command{
		Use:   "shadow",
		Short: "Write the contact shadow texture to a PNG file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := render.SavePNG(out, shadow.GradientImage(size)); err != nil {
				return err
			}
			slog.Info("shadow texture written", "path", out, "size", max(size, 1))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "shadow.png", "output PNG path")
	cmd.Flags().IntVar(&size, "size", shadow.TextureSize, "texture size in pixels")
	return cmd
}
