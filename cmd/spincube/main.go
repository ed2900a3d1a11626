// spincube - a spinning, point-lit cube in the terminal.
//
// Controls (view):
//
//	Space       - Pause or resume the spin
//	A           - Toggle distance attenuation
//	M           - Toggle hand-written / library matrix math
//	C           - Toggle back-face culling
//	R           - Reset rotation
//	?           - Toggle HUD overlay
//	Q/Esc       - Quit
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "spincube",
		Short: "Render a spinning, point-lit cube",
		Long: "spincube renders a rotating cube lit by a single point light with a software\n" +
			"rasterizer, either interactively in the terminal or headless to PNG files.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, opts)
		},
	}
	opts.register(root)

	root.AddCommand(
		newViewCmd(opts),
		newSnapshotCmd(opts),
		newRenderCmd(opts),
	)
	return root
}
