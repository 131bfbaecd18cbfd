package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/davesmith10/dctcodec/internal/container"
	"github.com/davesmith10/dctcodec/internal/pipeline"
	"github.com/davesmith10/dctcodec/internal/raster"
	"github.com/spf13/cobra"
)

var decompressCmd = &cobra.Command{
	Use:   "decompress",
	Short: "Reconstruct an image from a .dctz coefficient container",
	RunE:  runDecompress,
}

func init() {
	decompressCmd.Flags().StringP("input", "i", "", "Input .dctz file")
	decompressCmd.Flags().StringP("output", "o", "", "Output image file")
	decompressCmd.Flags().String("format", "png", "Output format (png, jpeg)")
	decompressCmd.Flags().Int("workers", 0, "Concurrent channel workers (0 = NumCPU)")
	decompressCmd.Flags().Int("jpeg-quality", raster.DefaultJPEGQuality, "Quality when writing JPEG output")
	decompressCmd.MarkFlagRequired("input")
	decompressCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(decompressCmd)
}

func runDecompress(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	workers, _ := cmd.Flags().GetInt("workers")
	jpegQuality, _ := cmd.Flags().GetInt("jpeg-quality")

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	c, err := container.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inputPath, err)
	}

	// Quantisation settings and gamma travel with the container.
	p, err := pipeline.New(pipeline.Options{
		Quality:         c.Quality,
		ChromaReduction: c.ChromaReduction,
		Gamma:           c.Gamma,
		BlockShape:      c.BlockShape,
		Workers:         workers,
		Logger:          logger,
	})
	if err != nil {
		return err
	}
	img, err := p.Decompress(c)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := raster.Encode(&buf, img, format, jpegQuality); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Printf("Decompressed %dx%d → %s (%d bytes)\n", img.Width, img.Height, outputPath, buf.Len())
	return nil
}
