package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"example.com/me/upstreamclient/config"
	"example.com/me/upstreamclient/internal/httpclient"
	"example.com/me/upstreamclient/internal/logger"
	"example.com/me/upstreamclient/internal/probe"
	"example.com/me/upstreamclient/internal/upstream"
)

// runLoadTest запускает нагрузочный тест через собранный клиент
func runLoadTest(client *http.Client, targetURL string, concurrency, requests int) (*probe.Stats, time.Duration) {
	stats := probe.NewStats()

	semaphore := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	startTime := time.Now()
	for i := 0; i < requests; i++ {
		wg.Add(1)
		semaphore <- struct{}{} // Acquire

		go func() {
			defer wg.Done()
			defer func() { <-semaphore }() // Release

			stats.Add(probe.Measure(context.Background(), client, targetURL))
		}()
	}

	wg.Wait()
	return stats, time.Since(startTime)
}

// printReport выводит отчет в терминал
func printReport(stats *probe.Stats, duration time.Duration) {
	fmt.Println("==================================================================================")
	fmt.Println("LOAD TEST REPORT")
	fmt.Println("==================================================================================")
	fmt.Println()

	// Success Rate
	successRate := stats.SuccessRate()
	fmt.Printf("Success Rate\n")
	fmt.Println("+-------+-------+---------+")
	fmt.Printf("| VALUE | COUNT | PERCENT |\n")
	fmt.Println("+-------+-------+---------+")
	fmt.Printf("| ok    | %5d | %6.2f  |\n", stats.Success, successRate)
	if stats.Total-stats.Success > 0 {
		fmt.Printf("| error | %5d | %6.2f  |\n", stats.Total-stats.Success, 100-successRate)
	}
	fmt.Println("+-------+-------+---------+")
	fmt.Println()

	// Errors breakdown
	if len(stats.Errors) > 0 {
		fmt.Printf("Errors\n")
		fmt.Println("+---------------------------------+-------+---------+")
		fmt.Printf("| VALUE                           | COUNT | PERCENT |\n")
		fmt.Println("+---------------------------------+-------+---------+")
		for err, count := range stats.Errors {
			percent := float64(count) / float64(stats.Total) * 100
			errStr := err
			if len(errStr) > 31 {
				errStr = errStr[:28] + "..."
			}
			fmt.Printf("| %-31s | %5d | %6.2f  |\n", errStr, count, percent)
		}
		fmt.Println("+---------------------------------+-------+---------+")
		fmt.Println()
	}

	// HTTP Status Codes
	if len(stats.StatusCodes) > 0 {
		fmt.Printf("Target HTTP status codes\n")
		fmt.Println("+-------+-------+---------+")
		fmt.Printf("| VALUE | COUNT | PERCENT |\n")
		fmt.Println("+-------+-------+---------+")
		for code, count := range stats.StatusCodes {
			percent := float64(count) / float64(stats.Total) * 100
			fmt.Printf("| %5d | %5d | %6.2f  |\n", code, count, percent)
		}
		fmt.Println("+-------+-------+---------+")
		fmt.Println()
	}

	// Latency metrics
	fmt.Printf("Latency (ms)\n")
	fmt.Println("+--------------+-------+-------+-------+-------+-------+-------+-------+")
	fmt.Printf("| NAME         |   50  |   75  |   85  |   90  |   95  |   99  |  100  |\n")
	fmt.Println("+--------------+-------+-------+-------+-------+-------+-------+-------+")

	printLatencyRow("TTFB", stats.TTFB)
	printLatencyRow("Connect", stats.Connect)
	printLatencyRow("TLSHandshake", stats.TLSHandshake)
	printLatencyRow("Total", stats.TotalLatency)
	fmt.Println("+--------------+-------+-------+-------+-------+-------+-------+-------+")
	fmt.Println()

	// Summary
	fmt.Printf("Summary\n")
	fmt.Printf("Total duration: %v\n", duration)
	fmt.Printf("Requests/sec: %.2f\n", float64(stats.Total)/duration.Seconds())
	if stats.TotalBytes > 0 {
		fmt.Printf("Throughput: %.2f KB/s\n", float64(stats.TotalBytes)/1024/duration.Seconds())
	}
}

// printLatencyRow выводит строку с перцентилями для метрики
func printLatencyRow(name string, durations []time.Duration) {
	if len(durations) == 0 {
		fmt.Printf("| %-12s | %5s | %5s | %5s | %5s | %5s | %5s | %5s |\n", name, "-", "-", "-", "-", "-", "-", "-")
		return
	}

	fmt.Printf("| %-12s |", name)
	for _, p := range []float64{50, 75, 85, 90, 95, 99, 100} {
		fmt.Printf(" %5d |", probe.Percentile(durations, p).Milliseconds())
	}
	fmt.Println()
}

func main() {
	var (
		debug       bool
		targetURL   string
		concurrency int
		requests    int
	)
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&targetURL, "url", "http://httpbin.org/get", "Target URL")
	flag.IntVar(&concurrency, "c", 10, "Number of concurrent requests")
	flag.IntVar(&requests, "n", 100, "Total number of requests")

	// Load configuration (this will call flag.Parse())
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if debug || cfg.Debug {
		logger.SetLevel(logger.LevelDebug)
	}
	if concurrency < 1 {
		log.Fatalf("-c must be positive, got %d", concurrency)
	}

	proxyURL := ""
	via := "direct"
	if sel, ok := upstream.Select(cfg.Upstreams); ok {
		proxyURL = sel.URL
		via = upstream.Describe(sel.Upstream)
	}

	client, err := httpclient.Build(proxyURL, httpclient.OptionsFromConfig(cfg.Client)...)
	if err != nil {
		log.Fatalf("Failed to build HTTP client: %v", err)
	}

	fmt.Printf("Starting load test: %d requests, %d concurrent\n", requests, concurrency)
	fmt.Printf("Target: %s\n", targetURL)
	fmt.Printf("Upstream: %s\n", via)
	fmt.Println()

	stats, duration := runLoadTest(client, targetURL, concurrency, requests)
	printReport(stats, duration)
}
