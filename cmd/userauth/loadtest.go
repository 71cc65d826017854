package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/CipherPhantom/userauth"
	"github.com/CipherPhantom/userauth/userstore"
)

type loadtestOptions struct {
	backend     string
	redisAddr   string
	prefix      string
	sessions    int
	ops         int
	concurrency int
}

func loadtestCmd() *cobra.Command {
	opts := loadtestOptions{}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Benchmark session creation and lookup against a session backend",
		Long: `Seed sessions through the persistent session strategy, then resolve
random sessions concurrently and report latency percentiles. With the redis
backend and no --redis-addr an in-process server is started.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadtest(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.backend, "backend", userauth.SessionBackendRedis, "Session backend: memory or redis")
	f.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address (empty starts miniredis)")
	f.StringVar(&opts.prefix, "prefix", "lt", "Redis key prefix")
	f.IntVar(&opts.sessions, "sessions", 10000, "Number of sessions to seed")
	f.IntVar(&opts.ops, "ops", 200000, "Lookups to perform")
	f.IntVar(&opts.concurrency, "concurrency", 64, "Concurrent workers")
	return cmd
}

func runLoadtest(ctx context.Context, out io.Writer, opts loadtestOptions) error {
	if opts.sessions <= 0 || opts.ops <= 0 || opts.concurrency <= 0 {
		return fmt.Errorf("sessions, ops and concurrency must be positive")
	}

	cfg := userauth.DefaultConfig()
	cfg.Auth.Type = userauth.AuthTypeSessionDB
	cfg.Auth.SessionDuration = 0
	cfg.Session.Backend = opts.backend
	cfg.Session.RedisPrefix = opts.prefix
	cfg.Metrics.EnableLatencyHistograms = true

	users := userstore.NewMemory()
	acct, err := users.Add(userstore.Account{Email: "loadtest@example.com"})
	if err != nil {
		return err
	}

	builder := userauth.New().
		WithConfig(cfg).
		WithUserStore(users).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	if opts.backend == userauth.SessionBackendRedis {
		addr := opts.redisAddr
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				return fmt.Errorf("starting miniredis: %w", err)
			}
			defer mr.Close()
			addr = mr.Addr()
			fmt.Fprintf(out, "using miniredis at %s\n", addr)
		} else {
			fmt.Fprintf(out, "using redis at %s\n", addr)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		defer client.Close()
		builder.WithRedis(client)
	}

	engine, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	sessions, ok := engine.Sessions()
	if !ok {
		return fmt.Errorf("strategy %s does not manage sessions", cfg.Auth.Type)
	}

	fmt.Fprintf(out, "seeding %d sessions...\n", opts.sessions)
	ids := make([]string, opts.sessions)
	createStats := runPhase(opts.sessions, opts.concurrency, func(i int, _ *rand.Rand) bool {
		id, ok := sessions.CreateSession(ctx, acct.ID)
		ids[i] = id
		return ok
	})
	if createStats.failures > 0 {
		return fmt.Errorf("%d of %d session creations failed", createStats.failures, opts.sessions)
	}

	lookupStats := runPhase(opts.ops, opts.concurrency, func(_ int, r *rand.Rand) bool {
		_, ok := sessions.UserIDForSessionID(ctx, ids[r.Intn(len(ids))])
		return ok
	})

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "create", createStats)
	printStats(out, "lookup", lookupStats)
	return nil
}

// runPhase calls op ops times across concurrency workers, recording the
// latency of each call.
func runPhase(ops, concurrency int, op func(i int, r *rand.Rand) bool) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, ops)
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				if !op(i, r) {
					atomic.AddInt64(&failures, 1)
				}
				latencies[i] = time.Since(t0)
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	stats := phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
	}
	if total > 0 {
		stats.opsPerS = float64(len(samples)) / total.Seconds()
	}
	return stats
}

// percentile expects sorted samples.
func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
