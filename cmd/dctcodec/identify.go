package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/davesmith10/dctcodec/internal/color"
	"github.com/davesmith10/dctcodec/internal/container"
	"github.com/davesmith10/dctcodec/internal/raster"
	"github.com/spf13/cobra"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [file]",
	Short: "Inspect image, ICC profile or .dctz container info",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if bytes.HasPrefix(data, []byte(container.Magic)) {
		return identifyContainer(path, data)
	}

	info, err := raster.GetInfo(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Format:     %s\n", info.Format)
	fmt.Printf("Dimensions: %d x %d\n", info.Width, info.Height)
	fmt.Printf("Components: %d\n", info.NumComponents)
	fmt.Printf("Color model: %s\n", info.ColorModel)
	fmt.Printf("File size:  %d bytes (%.1f MB)\n", len(data), float64(len(data))/(1024*1024))

	if info.ICC == nil {
		fmt.Println("ICC profile: none")
		return nil
	}
	pi, err := color.ParseProfileInfo(info.ICC)
	if err != nil {
		fmt.Printf("ICC profile: present (%d bytes) but invalid: %v\n", len(info.ICC), err)
		return nil
	}
	fmt.Printf("ICC profile: %d bytes\n", len(info.ICC))
	fmt.Printf("  Version:     %s\n", pi.Version)
	fmt.Printf("  Color space: %s\n", color.ColorSpaceName(pi.ColorSpace))
	fmt.Printf("  PCS:         %s\n", color.ColorSpaceName(pi.PCS))
	fmt.Printf("  Class:       %s\n", color.ProfileClassName(pi.Class))
	if !pi.IsRGB() {
		fmt.Println("  Note: profile is not RGB; pixels are compressed as decoded")
	}
	return nil
}

func identifyContainer(path string, data []byte) error {
	h, err := container.ReadHeader(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Format:     dctz v%d\n", h.Version)
	fmt.Printf("Dimensions: %d x %d\n", h.Width, h.Height)
	fmt.Printf("Quality:    %d (chroma reduction %d)\n", h.Quality, h.ChromaReduction)
	fmt.Printf("Gamma:      %g\n", h.Gamma)
	fmt.Printf("Block:      %d x %d\n", h.BlockShape.Rows, h.BlockShape.Cols)
	for c, g := range h.Grids {
		fmt.Printf("  Channel %d grid: %d x %d\n", c, g.Rows, g.Cols)
	}
	fmt.Printf("File size:  %d bytes\n", len(data))
	return nil
}
