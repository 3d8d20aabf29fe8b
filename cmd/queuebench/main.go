// Command queuebench is a thin driver that exercises one of the dedupqueue
// variants under concurrent writers and readers and reports throughput.
//
// It is a demonstration harness, not a correctness tool: every invariant it
// might appear to check is actually enforced inside the dedupqueue package
// itself and by its test suite.
//
// Usage:
//
//	# Default variant (1lock), default sizing
//	./queuebench
//
//	# Sharded variant, custom shard count
//	QUEUEBENCH_VARIANT=1lock-sharded QUEUEBENCH_SHARDS=16 ./queuebench
//
//	# Write a queue-bench.hujson in the working directory to pin settings
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	natomic "github.com/natefinch/atomic"

	"github.com/laplaque/dedupqueue"
	"github.com/laplaque/dedupqueue/internal/queuecfg"
	"github.com/laplaque/dedupqueue/internal/queuelog"
	"github.com/laplaque/dedupqueue/introspect"
	"github.com/laplaque/dedupqueue/stats"
)

func main() {
	cfg := queuecfg.Load()
	bindFlags(cfg)

	if !queuecfg.ValidVariants[cfg.Variant] {
		log.Fatalf("[QUEUEBENCH] unknown variant %q", cfg.Variant)
	}

	// Queue constructors read their log level from the environment.
	if err := os.Setenv("DEDUPQUEUE_LOG_LEVEL", cfg.LogLevel); err != nil {
		log.Printf("[QUEUEBENCH] could not apply log level: %v", err)
	}

	printBanner(cfg)

	q := buildQueue(cfg)
	counters := stats.New()

	introPort := 8099
	introSrv := introspect.New(cfg.Variant, q.Capacity(), counters, os.Getenv("QUEUEBENCH_INTROSPECT_TOKEN"))
	introCtx, stopIntro := context.WithCancel(context.Background())
	go func() {
		if err := introSrv.ListenAndServe(introCtx, introPort); err != nil {
			log.Printf("[QUEUEBENCH] introspection server: %v", err)
		}
	}()

	runCtx, cancelRun := context.WithTimeout(context.Background(), time.Duration(cfg.DurationSeconds)*time.Second)
	defer cancelRun()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Printf("[QUEUEBENCH] interrupted, stopping early…")
		cancelRun()
	}()

	runWorkload(runCtx, q, cfg, counters)

	q.Stop()
	stopIntro()

	snap := counters.Snapshot()
	printResults(snap, q.Size())
	if err := writeResultsFile(snap); err != nil {
		log.Printf("[QUEUEBENCH] could not write results file: %v", err)
	}
}

func bindFlags(cfg *queuecfg.BenchConfig) {
	flag.StringVar(&cfg.Variant, "variant", cfg.Variant,
		"queue variant: 1lock, 2lock, 1lock-sharded, 2lock-sharded, split-sharded")
	flag.IntVar(&cfg.Capacity, "capacity", cfg.Capacity, "queue capacity")
	flag.IntVar(&cfg.Shards, "shards", cfg.Shards, "shard count (0 = auto)")
	flag.IntVar(&cfg.OrderShards, "order-shards", cfg.OrderShards, "order-shard count (split-sharded only)")
	flag.IntVar(&cfg.Writers, "writers", cfg.Writers, "number of writer goroutines")
	flag.IntVar(&cfg.Readers, "readers", cfg.Readers, "number of reader goroutines")
	flag.IntVar(&cfg.DurationSeconds, "duration", cfg.DurationSeconds, "run duration in seconds")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn, or error")
	flag.Parse()
}

func buildQueue(cfg *queuecfg.BenchConfig) dedupqueue.Queue[string, int64] {
	capacity := uint32(cfg.Capacity)
	switch cfg.Variant {
	case "1lock":
		return dedupqueue.NewSingleLock[string, int64](capacity)
	case "2lock":
		return dedupqueue.NewTwoLock[string, int64](capacity)
	case "1lock-sharded":
		return dedupqueue.NewShardedSingleLock[string, int64](capacity, uint32(cfg.Shards))
	case "2lock-sharded":
		return dedupqueue.NewShardedTwoLock[string, int64](capacity, uint32(cfg.Shards))
	case "split-sharded":
		return dedupqueue.NewSplitSharded[string, int64](capacity, uint32(cfg.Shards), uint32(cfg.OrderShards))
	default:
		panic("unreachable: variant already validated")
	}
}

func runWorkload(ctx context.Context, q dedupqueue.Queue[string, int64], cfg *queuecfg.BenchConfig, counters *stats.Counters) {
	var wg sync.WaitGroup
	wg.Add(cfg.Writers + cfg.Readers)

	for w := 0; w < cfg.Writers; w++ {
		go func(w int) {
			defer wg.Done()
			i := int64(0)
			// Keys repeat within a modest window so the benchmark actually
			// exercises dedup, rather than only ever inserting fresh keys.
			const window = 256
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				key := fmt.Sprintf("w%d-k%d", w, i%window)
				ok := q.TryWrite(key, i)
				counters.RecordWrite(ok, false)
				i++
			}
		}(w)
	}

	for r := 0; r < cfg.Readers; r++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if _, _, err := q.Read(); err == nil {
					counters.RecordRead()
				} else {
					time.Sleep(time.Millisecond)
				}
			}
		}()
	}

	wg.Wait()
}

func printResults(snap stats.Snapshot, size uint32) {
	fmt.Printf(`
  Results after %.1fs
  ───────────────────
  Writes accepted : %d
  Writes rejected : %d
  Reads           : %d
  Remaining       : %d
`, snap.UptimeSecs, snap.WritesAccepted, snap.WritesRejected, snap.Reads, size)
}

func writeResultsFile(snap stats.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return natomic.WriteFile("queuebench-results.json", strings.NewReader(string(data)))
}

func printBanner(cfg *queuecfg.BenchConfig) {
	fmt.Printf(`
╔══════════════════════════════════════════════════════╗
║          dedupqueue bench driver  (Go)                ║
╚══════════════════════════════════════════════════════╝
  Variant         : %s
  Capacity        : %s
  Writers         : %d
  Readers         : %d
  Duration        : %ds
  Log level       : %s

  Check status:
    curl --http2-prior-knowledge http://localhost:8099/status
`, cfg.Variant, queuelog.Grouped(uint32(cfg.Capacity)), cfg.Writers, cfg.Readers, cfg.DurationSeconds, cfg.LogLevel)
}
