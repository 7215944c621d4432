package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mgirard/rentadesk/internal/rentab"
)

// analyze-deal runs the profitability engine on a saved questionnaire and
// prints the result, without needing a running server.
func main() {
	inputPath := flag.String("input", "", "Path to questionnaire form JSON")
	configPath := flag.String("config", "", "Optional engine config YAML")
	title := flag.String("title", "Deal", "Deal title for the report header")
	asJSON := flag.Bool("json", false, "Print the snapshot JSON instead of the markdown report")
	flag.Parse()

	if *inputPath == "" {
		log.Fatal("missing required -input")
	}

	blob, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	var form rentab.Form
	if err := json.Unmarshal(blob, &form); err != nil {
		log.Fatalf("decode input JSON: %v", err)
	}

	engine := rentab.DefaultConfig()
	if *configPath != "" {
		engine, err = rentab.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("load engine config: %v", err)
		}
	}

	snap := rentab.Analyze(rentab.NormalizeForm(form), engine)

	if *asJSON {
		out, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			log.Fatalf("encode snapshot: %v", err)
		}
		fmt.Println(string(out))
		return
	}
	fmt.Print(rentab.BuildReport(*title, snap))
}
