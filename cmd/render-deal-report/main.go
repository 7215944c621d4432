package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/mgirard/rentadesk/internal/rentab"
)

// render-deal-report rebuilds the analysis report from a saved snapshot
// JSON, as markdown or HTML.
func main() {
	inputPath := flag.String("input", "", "Path to saved snapshot JSON")
	outputPath := flag.String("output", "", "Path to write the report (defaults to stdout)")
	title := flag.String("title", "Deal", "Deal title for the report header")
	asHTML := flag.Bool("html", false, "Render HTML instead of markdown")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	blob, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	var snap rentab.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		log.Fatalf("decode snapshot JSON: %v", err)
	}

	report := rentab.BuildReport(*title, snap)
	if *asHTML {
		var buf bytes.Buffer
		md := goldmark.New(goldmark.WithExtensions(extension.GFM))
		if err := md.Convert([]byte(report), &buf); err != nil {
			log.Fatalf("render html: %v", err)
		}
		report = buf.String()
	}

	if *outputPath == "" {
		fmt.Print(report)
		return
	}
	if err := os.WriteFile(*outputPath, []byte(report), 0o644); err != nil {
		log.Fatalf("write output: %v", err)
	}
}
