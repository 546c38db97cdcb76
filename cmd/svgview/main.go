// Command svgview opens a window showing the embedded sample SVG,
// rasterized at the scale given in the embedded settings.
package main

import (
	"log/slog"
	"os"

	"github.com/benoitkugler/svgview/assets"
	"github.com/benoitkugler/svgview/ebitenview"
	"github.com/benoitkugler/svgview/viewer"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	settings, err := viewer.ParseSettings(assets.Settings)
	if err != nil {
		fatal(logger, "invalid embedded settings", err)
	}

	shell, err := viewer.Load(assets.SampleSVG, settings)
	if err != nil {
		fatal(logger, "rasterizing embedded image", err)
	}

	if err := ebitenview.Run(shell, settings, logger); err != nil {
		fatal(logger, "window", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}
