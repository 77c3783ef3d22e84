// README: Scenario runner; drives the real pipeline with stubbed providers and prints decisions.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"dispatch/internal/ai"
	"dispatch/internal/circuit"
	"dispatch/internal/logging"
	"dispatch/internal/modules/dedup"
	"dispatch/internal/modules/geo"
	"dispatch/internal/modules/schedule"
	"dispatch/internal/modules/travel"
	"dispatch/internal/service"
)

func main() {
	var pretty bool
	flag.BoolVar(&pretty, "pretty", true, "indent decision JSON")
	flag.Parse()

	logger := logging.New("error")
	breakers := circuit.NewRegistry(5, 30*time.Second)

	dispatcher := service.NewDispatcher(service.Deps{
		// A nil LLM provider forces the deterministic extraction path, so
		// runs are reproducible without credentials.
		Extractor: ai.NewExtractor(nil, breakers.Get("llm"), logger),
		Resolver:  geo.NewResolver(newStubGeocoder(), breakers.Get("geocoding"), logger),
		Engine:    schedule.NewEngine(travel.NewEstimator(nil, breakers.Get("traffic"), logger)),
		Dedup:     dedup.NewMemoryStore(1000, 24*time.Hour),
		Breakers:  breakers,
		Logger:    logger,
		Deadline:  2 * time.Second,
	})

	ctx := context.Background()
	failed := 0
	for _, sc := range scenarios() {
		body, err := dispatcher.Process(ctx, sc.Request)
		fmt.Printf("== %s ==\n", sc.Name)
		if err != nil {
			failed++
			fmt.Printf("ERROR: %v\n\n", err)
			continue
		}
		if pretty {
			var buf map[string]any
			_ = json.Unmarshal(body, &buf)
			out, _ := json.MarshalIndent(buf, "", "  ")
			fmt.Printf("%s\n\n", out)
		} else {
			fmt.Printf("%s\n\n", body)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
