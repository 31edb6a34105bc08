// Command detecttest runs region detection on an image against a live
// Ollama server and prints the results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"cellbrush/internal/annotation"
	"cellbrush/internal/config"
	"cellbrush/internal/detect"
	cbimage "cellbrush/internal/image"
)

func main() {
	imagePath := flag.String("image", "", "Path to image (TIFF, PNG, JPEG, or WebP)")
	target := flag.String("target", "", "What to detect (default from config)")
	model := flag.String("model", "", "Model name (default from config)")
	host := flag.String("host", "", "Ollama host (default from config)")
	csvOut := flag.Bool("csv", false, "Print results as CSV instead of a table")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: detecttest -image <path> [-target cells] [-model llava] [-host http://localhost:11434]")
		os.Exit(1)
	}

	cfg := config.Load()
	if *target != "" {
		cfg.DefaultTarget = *target
	}
	if *model != "" {
		cfg.Model = *model
	}
	if *host != "" {
		cfg.OllamaHost = *host
	}

	dec, err := cbimage.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s: %dx%d pixels\n", dec.Name, dec.Width, dec.Height)

	imgBytes, err := cbimage.EncodePNG(dec.Img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode image: %v\n", err)
		os.Exit(1)
	}

	client, err := detect.NewClient(cfg.OllamaHost, cfg.Model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Detecting %q with %s at %s...\n", cfg.DefaultTarget, cfg.Model, cfg.OllamaHost)

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	start := time.Now()
	regions, err := client.Detect(ctx, imgBytes, cfg.DefaultTarget)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Got %d regions in %.1fs\n\n", len(regions), time.Since(start).Seconds())

	if *csvOut {
		if err := writeCSV(regions); err != nil {
			fmt.Fprintf(os.Stderr, "CSV output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	for i, r := range regions {
		px := r.PixelRect(dec.Width, dec.Height)
		fmt.Printf("%3d. %-20s conf=%.2f  bbox=[%.3f %.3f %.3f %.3f]  px=(%.0f,%.0f %.0fx%.0f)\n",
			i+1, r.Label, r.Confidence,
			r.YMin, r.XMin, r.YMax, r.XMax,
			px.X, px.Y, px.Width, px.Height)
	}
}

func writeCSV(regions []annotation.Region) error {
	return annotation.WriteCSV(os.Stdout, regions)
}
