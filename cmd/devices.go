package cmd

import (
	"fmt"
	"os"

	"github.com/smazurov/camdrv/pkg/linuxav/v4l2"
	"github.com/spf13/cobra"
)

// CreateDevicesCmd creates the devices command.
func CreateDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List video capture devices",
		Long:  `Scans /sys/class/video4linux and lists every device node that supports video capture.`,
		Run: func(_ *cobra.Command, _ []string) {
			devices, err := v4l2.FindDevices()
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to scan devices: %v\n", err)
				os.Exit(1)
			}

			if len(devices) == 0 {
				fmt.Println("No capture devices found")
				return
			}

			for _, d := range devices {
				fmt.Printf("%s\t%s\t%s\n", d.Path, d.Name, d.Bus)
			}
		},
	}
}
