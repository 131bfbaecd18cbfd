package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/davesmith10/dctcodec/internal/container"
	"github.com/davesmith10/dctcodec/internal/pipeline"
	"github.com/davesmith10/dctcodec/internal/raster"
	"github.com/spf13/cobra"
)

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip",
	Short: "Compress and decompress an image, reporting error and sparsity",
	RunE:  runRoundtrip,
}

func init() {
	addPipelineFlags(roundtripCmd)
	roundtripCmd.Flags().StringP("input", "i", "", "Input image file")
	roundtripCmd.Flags().StringP("output", "o", "", "Optional reconstructed PNG")
	roundtripCmd.Flags().String("stats", "", "Optional JSON sidecar with round-trip statistics")
	roundtripCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(roundtripCmd)
}

type roundtripStats struct {
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	Quality        int     `json:"quality"`
	RMSE           float64 `json:"rmse"`
	NonZeroIn      int     `json:"nonzero_in"`
	NonZeroOut     int     `json:"nonzero_out"`
	Coefficients   int     `json:"coefficients"`
	ContainerBytes int     `json:"container_bytes"`
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")
	statsPath, _ := cmd.Flags().GetString("stats")

	p, err := pipelineFromFlags(cmd)
	if err != nil {
		return err
	}
	decoded, _, err := readRaster(inputPath)
	if err != nil {
		return err
	}

	c, err := p.Compress(decoded.Image)
	if err != nil {
		return err
	}
	packed, err := container.Marshal(c)
	if err != nil {
		return fmt.Errorf("serializing: %w", err)
	}
	recon, err := p.Decompress(c)
	if err != nil {
		return err
	}
	rmse, err := pipeline.RMSE(decoded.Image, recon)
	if err != nil {
		return err
	}

	stats := roundtripStats{
		Width:          c.Width,
		Height:         c.Height,
		Quality:        c.Quality,
		RMSE:           rmse,
		NonZeroIn:      pipeline.CountNonZero(decoded.Image),
		NonZeroOut:     c.NonZero(),
		Coefficients:   c.Coefficients(),
		ContainerBytes: len(packed),
	}

	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		if err := raster.Encode(f, recon, "png", 0); err != nil {
			f.Close()
			return fmt.Errorf("encoding: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}

	if statsPath != "" {
		statsJSON, _ := json.MarshalIndent(stats, "", "  ")
		if err := os.WriteFile(statsPath, statsJSON, 0644); err != nil {
			return fmt.Errorf("writing sidecar: %w", err)
		}
		fmt.Printf("Sidecar: %s\n", statsPath)
	}

	fmt.Printf("Round trip %dx%d at quality %d\n", stats.Width, stats.Height, stats.Quality)
	fmt.Printf("RMSE:       %.3f\n", stats.RMSE)
	fmt.Printf("Non-zero:   %d in → %d out (%d coefficients)\n", stats.NonZeroIn, stats.NonZeroOut, stats.Coefficients)
	fmt.Printf("Container:  %d bytes\n", stats.ContainerBytes)
	return nil
}
