// Command chaindemo builds a graph from a YAML file, feeds it values from
// the command line and prints every node's output as JSON.
//
//	chaindemo -config graph.yaml -feed a=1,2,3,4,5 -watch b
//
// With -synced all feeds advance one element at a time together. With
// metrics enabled in the config and -serve set, the Prometheus endpoint
// keeps running until interrupted.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/chainagg/pkg/chain"
	"github.com/dd0wney/chainagg/pkg/config"
	"github.com/dd0wney/chainagg/pkg/health"
	"github.com/dd0wney/chainagg/pkg/logging"
	"github.com/dd0wney/chainagg/pkg/metrics"
	"github.com/dd0wney/chainagg/pkg/pubsub"
)

// feedFlags collects repeated -feed id=v1,v2,... flags
type feedFlags []chain.Sequence

func (f *feedFlags) String() string {
	parts := make([]string, len(*f))
	for i, seq := range *f {
		parts[i] = fmt.Sprintf("%s=%v", seq.ID, seq.Values)
	}
	return strings.Join(parts, " ")
}

func (f *feedFlags) Set(s string) error {
	id, list, ok := strings.Cut(s, "=")
	if !ok || id == "" {
		return fmt.Errorf("want id=v1,v2,..., got %q", s)
	}
	seq := chain.Sequence{ID: id}
	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return fmt.Errorf("feed %s: %w", id, err)
		}
		seq.Values = append(seq.Values, v)
	}
	*f = append(*f, seq)
	return nil
}

func main() {
	configPath := flag.String("config", "graph.yaml", "Graph configuration file")
	strategy := flag.String("strategy", "", "Override the configured strategy (eager, lazy, partial)")
	watch := flag.String("watch", "", "Comma-separated nodes whose updates are printed as they happen")
	synced := flag.Bool("synced", false, "Feed all sequences in lockstep")
	serve := flag.Bool("serve", false, "Keep serving metrics after feeding until interrupted")
	var feeds feedFlags
	flag.Var(&feeds, "feed", "Values for a source node as id=v1,v2,... (repeatable)")
	flag.Parse()

	if err := run(*configPath, *strategy, *watch, *synced, *serve, feeds); err != nil {
		fmt.Fprintln(os.Stderr, "chaindemo:", err)
		os.Exit(1)
	}
}

func run(configPath, strategy, watch string, synced, serve bool, feeds []chain.Sequence) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if strategy != "" {
		cfg.Strategy = strategy
	}

	logger := cfg.Logging.NewLogger(os.Stderr).With(logging.Component("chaindemo"))

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
	}
	opts, err := cfg.Options(logger, reg)
	if err != nil {
		return err
	}
	g, err := config.Build(cfg, opts...)
	if err != nil {
		return err
	}
	logger.Info("graph built",
		logging.Count(g.NodeCount()), logging.Int("edges", g.EdgeCount()), logging.Strategy(g.Strategy().String()))

	// The HTTP handlers read the graph from their own goroutines
	sg := chain.NewSynchronized(g)

	var srv *http.Server
	if reg != nil {
		srv = startMetrics(cfg.Metrics.Addr, reg, newHealthChecker(sg), logger)
	}

	out := &lockedEncoder{enc: json.NewEncoder(os.Stdout)}
	ps := pubsub.NewPubSub()
	var printers sync.WaitGroup
	if watch != "" {
		ids := strings.Split(watch, ",")
		if _, err := ps.Attach(sg, ids...); err != nil {
			return err
		}
		for _, id := range ids {
			sub, err := ps.Subscribe(context.Background(), id)
			if err != nil {
				return err
			}
			printers.Add(1)
			go func() {
				defer printers.Done()
				printEvents(sub.Channel(), out, logger)
			}()
		}
	}

	if err := feed(sg, feeds, synced, logger); err != nil {
		return err
	}

	// Lazy graphs deliver their deferred updates here
	values, err := sg.Values()
	ps.Shutdown()
	printers.Wait()
	if err != nil {
		return err
	}
	if err := out.Encode(values); err != nil {
		return err
	}

	if srv == nil {
		return nil
	}
	if serve {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		logger.Info("serving metrics until interrupted", logging.String("addr", cfg.Metrics.Addr))
		<-sigChan
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

type encoder interface {
	Encode(v any) error
}

// printEvents writes each event as a JSON line until events is closed. An
// event that cannot be written is logged and skipped.
func printEvents(events <-chan chain.Event, out encoder, logger logging.Logger) {
	for ev := range events {
		if err := out.Encode(map[string]any{"event": ev.Node, "input": ev.Input, "value": ev.Value}); err != nil {
			logger.Warn("event not printed", logging.Node(ev.Node), logging.Error(err))
		}
	}
}

type lockedEncoder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (e *lockedEncoder) Encode(v any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(v)
}

func feed(sg *chain.Synchronized, feeds []chain.Sequence, synced bool, logger logging.Logger) error {
	if synced {
		report, err := sg.UpdateSynced(feeds)
		if err != nil {
			return err
		}
		logger.Info("synchronized feed done", logging.Int("steps", report.Steps))
		return nil
	}
	for _, seq := range feeds {
		timer := logging.StartTimer(logger, "feed", logging.Node(seq.ID), logging.Count(len(seq.Values)))
		if err := sg.UpdateSeq(seq.ID, seq.Values); err != nil {
			timer.EndError(err)
			return err
		}
		timer.End()
	}
	return nil
}

// backlogLimit is the dirty-plus-pending count above which /readyz fails
const backlogLimit = 10000

func newHealthChecker(sg *chain.Synchronized) *health.HealthChecker {
	hc := health.NewHealthChecker()
	hc.RegisterCheck("structure", health.StructureCheck(sg.Validate))
	hc.RegisterReadinessCheck("backlog", health.BacklogCheck(func() (dirty, pending int) {
		sg.Do(func(g *chain.Graph) error {
			dirty, pending = len(g.Dirty()), g.Pending()
			return nil
		})
		return dirty, pending
	}, backlogLimit))
	return hc
}

func startMetrics(addr string, reg *metrics.Registry, hc *health.HealthChecker, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	mux.Handle("/healthz", hc.HTTPHandler())
	mux.Handle("/readyz", hc.ReadinessHandler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", logging.Error(err))
		}
	}()
	logger.Info("metrics endpoint started", logging.String("addr", addr))
	return srv
}
