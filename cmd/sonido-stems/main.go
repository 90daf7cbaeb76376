// Command sonido-stems separates a mixed WAV recording into per-source stems
// using a pretrained ONNX separation network.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/RyanBlaney/sonido-stems/logging"
	"github.com/RyanBlaney/sonido-stems/model"
	"github.com/RyanBlaney/sonido-stems/separation"
	"github.com/RyanBlaney/sonido-stems/transcode"
)

func main() {
	var (
		inputPath  = flag.String("i", "", "input WAV file (required)")
		outputDir  = flag.String("o", "stems", "output directory for separated stems")
		modelPath  = flag.String("m", "", "path to the separation network ONNX file (required)")
		ortLibPath = flag.String("ort", "", "path to the ONNX Runtime shared library (optional)")
		overlap    = flag.Float64("overlap", 0.25, "segment overlap fraction in [0, 1)")
		logLevel   = flag.String("log-level", "info", "log level: debug, info, warn, error")
		noColor    = flag.Bool("no-color", false, "disable colored log output")
	)
	flag.Parse()

	if *noColor {
		logging.DisableColors()
	}
	logging.SetLevel(logging.ParseLevel(*logLevel))

	if *inputPath == "" || *modelPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*inputPath, *outputDir, *modelPath, *ortLibPath, *overlap); err != nil {
		logging.Error(err, "separation failed")
		os.Exit(1)
	}
}

func run(inputPath, outputDir, modelPath, ortLibPath string, overlap float64) error {
	mix, err := transcode.DecodeWAVFile(inputPath)
	if err != nil {
		return err
	}
	logging.Info("loaded input", logging.Fields{
		"file":        inputPath,
		"channels":    mix.Channels(),
		"sample_rate": mix.SampleRate,
		"duration":    mix.Duration().String(),
	})

	cfg := model.DefaultConfig()
	cfg.LibraryPath = ortLibPath
	session, err := model.NewSession(modelPath, cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	progress := mpb.New(mpb.WithWidth(64))
	var bar *mpb.Bar

	sep := separation.NewSeparator(session, &separation.Config{
		Overlap: overlap,
		Progress: func(completed, total int) {
			if bar == nil {
				bar = progress.AddBar(int64(total),
					mpb.PrependDecorators(
						decor.Name("Separating: "),
						decor.CountersNoUnit("%d / %d"),
					),
					mpb.AppendDecorators(
						decor.Percentage(),
					),
				)
			}
			bar.SetCurrent(int64(completed))
		},
	})

	stems, err := sep.Separate(context.Background(), mix)
	if err != nil {
		return err
	}
	progress.Wait()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, name := range session.Sources() {
		path := filepath.Join(outputDir, name+".wav")
		if err := transcode.EncodeWAVFile(path, stems[name]); err != nil {
			return err
		}
		logging.Info("wrote stem", logging.Fields{"source": name, "file": path})
	}
	return nil
}
