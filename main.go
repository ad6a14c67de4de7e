package main

import (
	"log"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"renderbase/app"
	"renderbase/config"
	"renderbase/renderer"
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.SetOutput(os.Stdout)
	log.Printf("Using GoLang: [%s]", runtime.Version())
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath    string
		validation bool
		frames     int
		maxFrames  uint64
	)
	cmd := &cobra.Command{
		Use:          "renderbase",
		Short:        "Free flying camera over a small Vulkan scene",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("validation") {
				cfg.Renderer.Validation = validation
			}
			if cmd.Flags().Changed("frames") {
				cfg.Renderer.FramesInFlight = frames
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			return app.Run(cfg, app.Options{MaxFrames: maxFrames})
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "path to the TOML config")
	cmd.Flags().BoolVar(&validation, "validation", false, "enable the Khronos validation layer")
	cmd.Flags().IntVar(&frames, "frames", renderer.DefaultFramesInFlight, "frames in flight, overrides the config")
	cmd.Flags().Uint64Var(&maxFrames, "max-frames", 0, "stop after this many rendered frames, 0 runs until closed")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Panicf("renderbase: %v", err)
	}
}
