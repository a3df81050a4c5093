package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gitbbrid/yiiredis/cmd/util"
	"github.com/gitbbrid/yiiredis/lib/router"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Benchmarks writes, replica reads and the replica spread",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix  = "__test"
	perfNumThreads = 10
	perfKeySpread  = 100
	perfSamples    = 10000
	perfSkip       = make([]string, 0)
	perfLatencies  = gometrics.NewRegistry()
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get,spread)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "samples"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("How many replica selections the spread test draws"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSamples = viper.GetInt("samples")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread < 1 {
		return fmt.Errorf("keys must be >= 1")
	}
	if perfNumThreads < 1 {
		return fmt.Errorf("threads must be >= 1")
	}
	if perfSamples < 1 {
		return fmt.Errorf("samples must be >= 1")
	}
	return nil
}

func runPerf(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fmt.Println("Performance testing tool for replica routing")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(clientConf.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	// connect up front so the first benchmark does not pay for it
	if err := rtr.Connect(ctx); err != nil {
		return err
	}

	fmt.Println("starting tests...")
	results := make(map[string]testing.BenchmarkResult)

	results["set"] = testing.Benchmark(func(b *testing.B) {
		if shouldSkip("set") {
			return
		}
		getKey, iter := getKeys("set")
		b.Cleanup(func() { deleteKeys(ctx, "set", iter) })

		timer := gometrics.GetOrRegisterTimer("set", perfLatencies)
		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				if err := executor.Set(ctx, getKey(counter), "test"); err != nil {
					Logger.Warningf("(set) - error setting key: %v", err)
				}
				timer.UpdateSince(start)
				counter++
			}
		})
	})
	printResult("set", results["set"])

	results["get"] = testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get") {
			return
		}
		getKey, iter := getKeys("get")
		iter(func(k string) {
			if err := executor.Set(ctx, k, "test"); err != nil {
				Logger.Warningf("(get) - error setting key: %v", err)
			}
		})
		b.Cleanup(func() { deleteKeys(ctx, "get", iter) })

		timer := gometrics.GetOrRegisterTimer("get", perfLatencies)
		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				if _, _, err := executor.Get(ctx, getKey(counter)); err != nil {
					Logger.Warningf("(get) - error getting key: %v", err)
				}
				timer.UpdateSince(start)
				counter++
			}
		})
	})
	printResult("get", results["get"])

	fmt.Println()
	printLatencies()

	if !shouldSkip("spread") {
		fmt.Println()
		if err := printSpread(ctx); err != nil {
			return err
		}
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return err
		}
		fmt.Printf("\nresults written to %s\n", csvPath)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

func deleteKeys(ctx context.Context, test string, iter func(func(string))) {
	iter(func(k string) {
		if _, err := executor.Del(ctx, k); err != nil {
			Logger.Warningf("(%s) - error deleting key: %v", test, err)
		}
	})
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// printLatencies prints the latency percentiles recorded by the timers
func printLatencies() {
	fmt.Println("Latencies:")
	perfLatencies.Each(func(name string, m interface{}) {
		timer, ok := m.(gometrics.Timer)
		if !ok {
			return
		}
		snap := timer.Snapshot()
		if snap.Count() == 0 {
			return
		}
		ps := snap.Percentiles([]float64{0.5, 0.95, 0.99})
		fmt.Printf("  %-18s n=%d p50=%s p95=%s p99=%s max=%s\n", name, snap.Count(),
			time.Duration(ps[0]), time.Duration(ps[1]), time.Duration(ps[2]), time.Duration(snap.Max()))
	})
}

// printSpread draws replica connections and prints how often each endpoint was chosen
func printSpread(ctx context.Context) error {
	_, secondaries := rtr.Endpoints()
	slots := make([]string, 0, len(secondaries))
	for _, s := range secondaries {
		slots = append(slots, s.Address())
	}
	if len(slots) == 0 {
		primary, _ := rtr.Endpoints()
		slots = append(slots, primary.Address())
	}

	index := make(map[string]int, len(slots))
	for i, s := range slots {
		index[s] = i
	}
	counts := make([]int, len(slots))
	for i := 0; i < perfSamples; i++ {
		c, err := rtr.GetConnection(ctx, router.ClassReplica)
		if err != nil {
			return err
		}
		counts[index[c.Endpoint().Address()]]++
	}

	stats := router.NewSpreadStats(counts)
	fmt.Printf("Replica spread over %d selections:\n", perfSamples)
	for i, s := range slots {
		share := float64(counts[i]) / float64(perfSamples) * 100
		fmt.Printf("  %-22s %7d  %5.1f%%\n", s, counts[i], share)
	}
	fmt.Printf("  %-22s %.3f (stddev %.1f, min/max %.3f)\n", "quality", stats.Quality, stats.StdDeviation, stats.MinMaxRatio)

	// same number of draws straight through the selection function, for comparison
	reference := router.MeasureSpread(len(slots), perfSamples, nil)
	fmt.Printf("  %-22s %.3f\n", "reference quality", reference.Quality)
	return nil
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Primary", "Secondaries", "Transport", "Threads", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	secondaries := make([]string, 0, len(clientConf.Topology.Secondaries))
	for _, s := range clientConf.Topology.Secondaries {
		secondaries = append(secondaries, s.String())
	}

	for test, result := range results {
		nsPerOp, opsPerSec, skipped := 0.0, 0.0, "true"
		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			clientConf.Topology.Primary.String(),
			strings.Join(secondaries, ";"),
			clientConf.Transport,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfKeySpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %w", test, err)
		}
	}

	return nil
}
