package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/edusupport/datafeeder/internal/app"
	"github.com/edusupport/datafeeder/internal/config"
	"github.com/edusupport/datafeeder/internal/core/extract"
	"github.com/edusupport/datafeeder/internal/models"
)

const usage = `Usage:
  feeder extract <pdf_file>          print extracted text for one PDF
  feeder info <pdf_file>             print page count and document info
  feeder file <pdf_file> ...         run the pipeline on local PDFs
  feeder url <locator> ...           fetch and process remote locators one at a time
  feeder batch <locator> ...         fetch and process remote locators concurrently
`

func main() {
	if len(os.Args) < 3 {
		fmt.Print(usage)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle SIGINT/SIGTERM for graceful shutdown
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.LoadConfig()
	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	mode, args := os.Args[1], os.Args[2:]
	switch mode {
	case "extract":
		os.Exit(cmdExtract(ctx, application, args[0]))
	case "info":
		os.Exit(cmdInfo(args[0]))
	case "file":
		os.Exit(cmdRun(application.Pipeline.RunFiles(ctx, args)))
	case "url":
		os.Exit(cmdRun(application.Pipeline.RunBatch(ctx, args, 1)))
	case "batch":
		os.Exit(cmdRun(application.Pipeline.RunBatch(ctx, args, cfg.MaxConcurrent)))
	default:
		fmt.Print(usage)
		os.Exit(1)
	}
}

func cmdExtract(ctx context.Context, application *app.App, path string) int {
	res := application.Pipeline.ProcessFile(ctx, path, "")
	if !res.Success {
		fmt.Println(res.Error)
		return 1
	}
	fmt.Println(res.Text)
	return 0
}

func cmdInfo(path string) int {
	info, err := extract.ReadInfo(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	fmt.Printf("PDF Info: %s\n", path)
	fmt.Printf("  Pages:   %d\n", info.PageCount)
	fmt.Printf("  Title:   %s\n", orNA(info.Title))
	fmt.Printf("  Author:  %s\n", orNA(info.Author))
	fmt.Printf("  Subject: %s\n", orNA(info.Subject))
	fmt.Printf("  Creator: %s\n", orNA(info.Creator))
	return 0
}

func cmdRun(run *models.BatchRun) int {
	for _, r := range run.Results {
		if r.Success {
			fmt.Printf("  ok: %s\n", r.Metadata.FileName)
		} else {
			fmt.Printf("  failed: %s\n", r.Error)
		}
	}

	fmt.Println("Pipeline Summary")
	fmt.Printf("  Total processed: %d\n", run.Stats.TotalProcessed)
	fmt.Printf("  Successful:      %d\n", run.Stats.Successful)
	fmt.Printf("  Failed:          %d\n", run.Stats.Failed)
	fmt.Printf("  Total pages:     %d\n", run.Stats.TotalPages)
	fmt.Printf("  With Sinhala:    %d\n", run.Stats.WithSinhala)
	fmt.Printf("  With Tamil:      %d\n", run.Stats.WithTamil)
	fmt.Printf("  Legacy fonts:    %d\n", run.Stats.LegacyFonts)

	if run.Stats.Failed > 0 {
		return 1
	}
	return 0
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
