package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/camdrv/internal/logging"
	"github.com/smazurov/camdrv/internal/profiles"
	"github.com/smazurov/camdrv/pkg/linuxav/v4l2"
	"github.com/spf13/cobra"
)

// CreateGrabCmd creates the grab command.
func CreateGrabCmd() *cobra.Command {
	var (
		width, height int
		format        string
		intervalNum   int
		intervalDen   int
		field         string
		buffers       int
		count         int
		output        string
		logJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "grab [device]",
		Short: "Capture frames from a device to files",
		Long: `Starts a capture session with the given parameters, dequeues the ` +
			`requested number of frames, and writes each frame's payload to a ` +
			`numbered file. The device must accept the parameters exactly; any ` +
			`adjustment by the driver fails the command.`,
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			loggingConfig := logging.Config{Level: "info", Format: "text"}
			if logJSON {
				loggingConfig.Format = "json"
			}
			logging.Initialize(loggingConfig)
			logger := logging.GetLogger("grab")

			// Reuse the profile mapping so flag semantics match the
			// profiles file.
			profile := profiles.Profile{
				ID:          "grab",
				Device:      args[0],
				Width:       width,
				Height:      height,
				Format:      format,
				IntervalNum: intervalNum,
				IntervalDen: intervalDen,
				Field:       field,
				Buffers:     buffers,
			}
			if err := profiles.Validate(profile); err != nil {
				logger.Error("Invalid capture parameters", "error", err)
				os.Exit(1)
			}
			cfg, err := profile.CaptureConfig()
			if err != nil {
				logger.Error("Invalid capture parameters", "error", err)
				os.Exit(1)
			}

			cam, err := v4l2.Open(args[0])
			if err != nil {
				logger.Error("Failed to open device", "error", err)
				os.Exit(1)
			}
			defer cam.Close()

			if err := cam.Start(&cfg); err != nil {
				logger.Error("Failed to start capture", "error", err)
				os.Exit(1)
			}

			for i := 0; i < count; i++ {
				frame, err := cam.Capture()
				if err != nil {
					logger.Error("Capture failed", "frame", i, "error", err)
					os.Exit(1)
				}

				name := fmt.Sprintf("%s-%04d.raw", output, i)
				writeErr := os.WriteFile(name, frame.Data, 0o644)
				frame.Discard()
				if writeErr != nil {
					logger.Error("Failed to write frame", "file", name, "error", writeErr)
					os.Exit(1)
				}
				logger.Info("Wrote frame", "file", name, "bytes", len(frame.Data))
			}

			if err := cam.Stop(); err != nil {
				logger.Warn("Stop reported an error", "error", err)
			}
		},
	}

	cmd.Flags().IntVar(&width, "width", 640, "Frame width")
	cmd.Flags().IntVar(&height, "height", 480, "Frame height")
	cmd.Flags().StringVar(&format, "format", "YUYV", "Pixel format FourCC")
	cmd.Flags().IntVar(&intervalNum, "interval-num", 1, "Frame interval numerator")
	cmd.Flags().IntVar(&intervalDen, "interval-den", 10, "Frame interval denominator")
	cmd.Flags().StringVar(&field, "field", "none", "Interlace field order")
	cmd.Flags().IntVar(&buffers, "buffers", 2, "Buffers to request from the driver")
	cmd.Flags().IntVar(&count, "count", 1, "Number of frames to capture")
	cmd.Flags().StringVar(&output, "output", "frame", "Output file prefix")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "Use JSON log format")

	return cmd
}
