package perf

import (
	"fmt"
	"testing"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nfslabs/idmapd/cmd/util"
	"github.com/nfslabs/idmapd/lib/idmap"
	"github.com/nfslabs/idmapd/lib/logging"
)

var (
	PerfCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the identity cache",
		Long:    "",
		PreRunE: processConfig,
		RunE:    run,
	}
	perfThreads   = 10
	perfKeySpread = 1000
	perfPropagate = true
)

func init() {
	// add flags
	util.SetupCacheFlags(PerfCmd)

	key := "threads"
	PerfCmd.PersistentFlags().Int(key, 10, util.WrapString("Number of goroutines to use for the benchmark"))

	key = "keys"
	PerfCmd.PersistentFlags().Int(key, 1000, util.WrapString("How many different principals to use for the tests"))

	key = "propagate"
	PerfCmd.PersistentFlags().Bool(key, true, util.WrapString("Whether writes should also update the reverse direction"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfThreads = viper.GetInt("threads")
	perfKeySpread = viper.GetInt("keys")
	perfPropagate = viper.GetBool("propagate")

	return nil
}

func run(_ *cobra.Command, _ []string) error {
	logging.InitLoggers(viper.GetString("log-level"))

	fmt.Println("Performance testing tool for the identity cache")
	fmt.Println()
	fmt.Printf("Threads:   %d\n", perfThreads)
	fmt.Printf("Keys:      %d\n", perfKeySpread)
	fmt.Printf("Propagate: %t\n", perfPropagate)
	fmt.Println()

	cache := idmap.New(util.GetCacheConfig())

	registry := gometrics.NewRegistry()
	addTimer := gometrics.NewRegisteredTimer("add", registry)
	lookupTimer := gometrics.NewRegisteredTimer("lookup", registry)

	names := make([]string, perfKeySpread)
	for i := range names {
		names[i] = fmt.Sprintf("principal-%d", i)
	}

	fmt.Println("starting tests...")

	addResult := testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(perfThreads)
		b.RunParallel(func(pb *testing.PB) {
			i := 0
			for pb.Next() {
				uid := uint32(i % perfKeySpread)
				start := time.Now()
				_ = cache.AddUserName(names[uid], uid, perfPropagate, true)
				addTimer.UpdateSince(start)
				i++
			}
		})
	})

	lookupResult := testing.Benchmark(func(b *testing.B) {
		b.SetParallelism(perfThreads)
		b.RunParallel(func(pb *testing.PB) {
			i := 0
			for pb.Next() {
				uid := uint32(i % perfKeySpread)
				start := time.Now()
				if i%2 == 0 {
					_, _ = cache.LookupUserID(names[uid])
				} else {
					_, _ = cache.LookupUserName(uid)
				}
				lookupTimer.UpdateSince(start)
				i++
			}
		})
	})

	fmt.Println()
	fmt.Printf("add:    %s\n", addResult.String())
	fmt.Printf("lookup: %s\n", lookupResult.String())
	fmt.Println()

	for _, name := range []string{"add", "lookup"} {
		timer := registry.Get(name).(gometrics.Timer)
		ps := timer.Percentiles([]float64{0.5, 0.9, 0.99})
		fmt.Printf("%-7s p50=%v p90=%v p99=%v\n",
			name,
			time.Duration(int64(ps[0])),
			time.Duration(int64(ps[1])),
			time.Duration(int64(ps[2])))
	}

	forward, reverse, err := cache.DomainStats(idmap.DomainUser)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(forward.String())
	fmt.Println(reverse.String())

	return nil
}
