package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/camdrv/pkg/linuxav/v4l2"
	"github.com/spf13/cobra"
)

// CreateFormatsCmd creates the formats command.
func CreateFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats [device]",
		Short: "Show the format catalog of a capture device",
		Long: `Enumerates every pixel format the device offers, with the discrete ` +
			`frame sizes and frame intervals supported for each.`,
		Args: cobra.ExactArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			cam, err := v4l2.Open(args[0])
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to open device: %v\n", err)
				os.Exit(1)
			}
			defer cam.Close()

			catalog, err := cam.Formats()
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to enumerate formats: %v\n", err)
				os.Exit(1)
			}

			for _, info := range catalog {
				fmt.Println(info)
				for _, mode := range info.Modes {
					fmt.Printf("  %dx%d:", mode.Width, mode.Height)
					for _, interval := range mode.Intervals {
						fmt.Printf(" %s (%.3g fps)", interval, interval.FPS())
					}
					fmt.Println()
				}
			}
		},
	}
}
