package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/taigrr/spincube/pkg/loop"
)

func newSnapshotCmd(opts *options) *cobra.Command {
	var (
		frame uint64
		out   string
		size  string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render a single frame to a PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, closeLog, err := headlessSession(cmd, opts, size)
			if err != nil {
				return err
			}
			defer closeLog()

			// Frames before the target still run so the state advances exactly
			// as it would live.
			l := loop.New(0)
			l.Limit = frame + 1
			var step loop.Callback
			step = func(context.Context) error {
				if err := sess.frame(1); err != nil {
					return err
				}
				l.ScheduleNextFrame(step)
				return nil
			}
			l.ScheduleNextFrame(step)
			if err := l.Run(cmd.Context()); err != nil {
				return err
			}
			if l.Frames() != frame+1 {
				return fmt.Errorf("snapshot: interrupted at frame %d", l.Frames())
			}

			if err := sess.fb.SavePNG(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote frame %d to %s\n", frame, out)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&frame, "frame", 0, "Frame number to render")
	cmd.Flags().StringVar(&out, "out", "spincube.png", "Output PNG path")
	cmd.Flags().StringVar(&size, "size", "640x480", "Image size WxH")
	return cmd
}

func newRenderCmd(opts *options) *cobra.Command {
	var (
		frames uint64
		dir    string
		size   string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a PNG sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if frames == 0 {
				return fmt.Errorf("render: --frames must be positive")
			}
			sess, closeLog, err := headlessSession(cmd, opts, size)
			if err != nil {
				return err
			}
			defer closeLog()

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			pb := progressbar.NewOptions64(int64(frames),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("rendering"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish())
			defer pb.Close()

			l := loop.New(0)
			l.Limit = frames
			var step loop.Callback
			step = func(context.Context) error {
				n := l.Frames()
				if err := sess.frame(1); err != nil {
					return err
				}
				path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", n))
				if err := sess.fb.SavePNG(path); err != nil {
					return err
				}
				pb.Add(1)
				l.ScheduleNextFrame(step)
				return nil
			}
			l.ScheduleNextFrame(step)
			if err := l.Run(cmd.Context()); err != nil {
				return err
			}
			pb.Finish()
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", l.Frames(), dir)
			return nil
		},
	}
	cmd.Flags().Uint64Var(&frames, "frames", 360, "Number of frames")
	cmd.Flags().StringVar(&dir, "dir", "frames", "Output directory")
	cmd.Flags().StringVar(&size, "size", "640x480", "Image size WxH")
	return cmd
}

// headlessSession resolves config and logging for commands that write
// images rather than drive the terminal.
func headlessSession(cmd *cobra.Command, opts *options, size string) (*session, func(), error) {
	width, height, err := parseSize(size)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := opts.resolve(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, closeLog, err := opts.logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	sess, err := newSession(cfg, width, height, logger)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return sess, closeLog, nil
}
