package main

import (
	"fmt"
	"os"

	"github.com/davesmith10/dctcodec/internal/color"
	"github.com/davesmith10/dctcodec/internal/container"
	"github.com/davesmith10/dctcodec/internal/pipeline"
	"github.com/davesmith10/dctcodec/internal/quant"
	"github.com/davesmith10/dctcodec/internal/raster"
	"github.com/spf13/cobra"
)

var compressCmd = &cobra.Command{
	Use:   "compress",
	Short: "Compress a PNG/JPEG/GIF image into a .dctz coefficient container",
	RunE:  runCompress,
}

func init() {
	addPipelineFlags(compressCmd)
	compressCmd.Flags().StringP("input", "i", "", "Input image file")
	compressCmd.Flags().StringP("output", "o", "", "Output .dctz file")
	compressCmd.MarkFlagRequired("input")
	compressCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(compressCmd)
}

func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().Int("quality", quant.DefaultQuality, "Quantisation quality (1-100)")
	cmd.Flags().Int("chroma-reduction", 0, "Quality reduction for Cb/Cr tables vs Y")
	cmd.Flags().Float64("gamma", color.DefaultGamma, "Gamma exponent")
	cmd.Flags().Int("workers", 0, "Concurrent channel workers (0 = NumCPU)")
}

func pipelineFromFlags(cmd *cobra.Command) (*pipeline.Pipeline, error) {
	quality, _ := cmd.Flags().GetInt("quality")
	reduction, _ := cmd.Flags().GetInt("chroma-reduction")
	gamma, _ := cmd.Flags().GetFloat64("gamma")
	workers, _ := cmd.Flags().GetInt("workers")
	return pipeline.New(pipeline.Options{
		Quality:         quality,
		ChromaReduction: reduction,
		Gamma:           gamma,
		Workers:         workers,
		Logger:          logger,
	})
}

func readRaster(path string) (*raster.Decoded, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading input: %w", err)
	}
	decoded, err := raster.Decode(data)
	if err != nil {
		return nil, 0, fmt.Errorf("decoding: %w", err)
	}
	if w := profileWarning(decoded.ICC); w != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", path, w)
	}
	return decoded, len(data), nil
}

// profileWarning explains why an embedded profile does not fit the fixed
// BT.601 conversion. It returns "" when there is nothing to report.
func profileWarning(icc []byte) string {
	if icc == nil {
		return ""
	}
	pi, err := color.ParseProfileInfo(icc)
	if err != nil {
		return fmt.Sprintf("embedded ICC profile ignored: %v", err)
	}
	logger.Debug("embedded ICC profile", "space", pi.ColorSpace, "class", pi.Class, "version", pi.Version)
	if !pi.IsRGB() {
		return fmt.Sprintf("embedded ICC profile describes %s data; samples are compressed as decoded RGB",
			color.ColorSpaceName(pi.ColorSpace))
	}
	return ""
}

func runCompress(cmd *cobra.Command, args []string) error {
	inputPath, _ := cmd.Flags().GetString("input")
	outputPath, _ := cmd.Flags().GetString("output")

	p, err := pipelineFromFlags(cmd)
	if err != nil {
		return err
	}
	decoded, inSize, err := readRaster(inputPath)
	if err != nil {
		return err
	}

	c, err := p.Compress(decoded.Image)
	if err != nil {
		return err
	}
	data, err := container.Marshal(c)
	if err != nil {
		return fmt.Errorf("serializing: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	fmt.Printf("Compressed %dx%d %s → %d non-zero of %d coefficients\n",
		c.Width, c.Height, decoded.Format, c.NonZero(), c.Coefficients())
	fmt.Printf("Input:  %s (%d bytes)\n", inputPath, inSize)
	fmt.Printf("Output: %s (%d bytes)\n", outputPath, len(data))
	return nil
}
