// ABOUTME: Command-line benchmark runner for synthesis evaluation
// ABOUTME: Executes deterministic scenarios and outputs JSON results

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sagascribe/sagascribe/benchmarks/eval"
	"github.com/sagascribe/sagascribe/internal/config"
)

func main() {
	// Command-line flags
	testID := flag.String("test", "", "Run specific test (marked_campaign, marker_free, long_haul). If empty, runs all tests.")
	outputPath := flag.String("output", "benchmark_results.json", "Output path for JSON results")
	verbose := flag.Bool("verbose", false, "Enable verbose output")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (continuing anyway): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("========================================")
	fmt.Println("SagaScribe Synthesis Benchmarks")
	fmt.Println("========================================")
	fmt.Println()

	runner := eval.NewBenchmarkRunner(cfg, *verbose)
	ctx := context.Background()

	var results []eval.TestResult

	if *testID == "" {
		fmt.Println("Running all synthesis benchmark tests...")
		fmt.Println()
		results = runner.RunAllTests(ctx)
	} else {
		var scenario eval.TestScenario
		found := false
		for _, s := range eval.GetAllTests() {
			if s.ID == *testID {
				scenario = s
				found = true
				break
			}
		}
		if !found {
			log.Fatalf("Unknown test ID: %s (valid options: marked_campaign, marker_free, long_haul)", *testID)
		}

		fmt.Printf("Running test: %s\n\n", scenario.Name)
		results = []eval.TestResult{runner.RunTest(ctx, scenario)}
	}

	// Print summary
	fmt.Println("\n========================================")
	fmt.Println("BENCHMARK SUMMARY")
	fmt.Println("========================================")

	passed := 0
	failed := 0

	for _, result := range results {
		fmt.Printf("\n%s: %s\n", result.TestID, result.TestName)
		fmt.Printf("  Entity Recall: %.2f\n", result.EntityRecallScore)
		fmt.Printf("  Faithfulness: %.2f\n", result.FaithfulnessScore)
		fmt.Printf("  Overall: %.2f\n", result.OverallScore)
		fmt.Printf("  Status: %s\n", result.Status)

		if result.Status == "PASS" {
			passed++
		} else {
			failed++
		}
	}

	fmt.Println("\n========================================")
	fmt.Printf("Total Tests: %d\n", len(results))
	fmt.Printf("Passed: %d\n", passed)
	fmt.Printf("Failed: %d\n", failed)
	fmt.Println("========================================")

	if err := runner.ExportResults(results, *outputPath); err != nil {
		log.Fatalf("Failed to export results: %v", err)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
