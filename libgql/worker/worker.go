// Package worker drives the handshake with the controller process.
package worker

import (
	"time"

	"github.com/2x3systems/gqlrules/gql"
	"github.com/2x3systems/gqlrules/libgql"
	"github.com/2x3systems/gqlrules/libgql/catalog"
	"github.com/2x3systems/gqlrules/libgql/pipe"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// State is a handshake state.
type State int

const (
	AwaitBatchSize State = iota
	AwaitReadySignal
	RunningPatternBatch
	AwaitResultType
	RunningCycle
	Terminated
)

func (s State) String() string {
	switch s {
	case AwaitBatchSize:
		return "AwaitBatchSize"
	case AwaitReadySignal:
		return "AwaitReadySignal"
	case RunningPatternBatch:
		return "RunningPatternBatch"
	case AwaitResultType:
		return "AwaitResultType"
	case RunningCycle:
		return "RunningCycle"
	case Terminated:
		return "Terminated"
	}
	return "Unknown"
}

// Worker runs pattern batches and rule generation cycles at the controller's request.
// A Worker is single-threaded: each read completes, then local work, then each write, before the next read.
type Worker struct {
	cfg     gql.Config
	pipe    pipe.Pipe
	oracle  libgql.Oracle
	catalog *catalog.Catalog

	state      State
	batchSize  int
	resultType gql.ResultType
	numCycles  int
	lastStats  gql.CycleStats
}

// New returns a Worker in AwaitBatchSize.  cat may be nil.
func New(cfg gql.Config, p pipe.Pipe, oracle libgql.Oracle, cat *catalog.Catalog) *Worker {
	cfg.Normalize()
	return &Worker{
		cfg:     cfg,
		pipe:    p,
		oracle:  oracle,
		catalog: cat,
		state:   AwaitBatchSize,
	}
}

func (w *Worker) State() State {
	return w.state
}

func (w *Worker) NumCycles() int {
	return w.numCycles
}

// LastStats returns the stats of the most recent completed cycle.
func (w *Worker) LastStats() gql.CycleStats {
	return w.lastStats
}

// Run steps the worker until it terminates or fails.
func (w *Worker) Run() error {
	for w.state != Terminated {
		if err := w.Step(); err != nil {
			errorsTotal.WithLabelValues(errorKind(err)).Inc()
			return errors.Wrapf(err, "in state %v", w.state)
		}
	}
	return nil
}

// Step performs the work of the current state and advances to the next.
// On failure the state is unchanged.
func (w *Worker) Step() error {
	switch w.state {

	case AwaitBatchSize:
		msg, err := pipe.ReadMsg(w.pipe, gql.MsgBatchSize)
		if err != nil {
			return err
		}
		w.batchSize = msg.BatchSize
		klog.Infof("pattern batch size: %d", w.batchSize)
		w.state = AwaitReadySignal

	case AwaitReadySignal:
		if _, err := pipe.ReadMsg(w.pipe, gql.MsgReady); err != nil {
			return err
		}
		w.state = RunningPatternBatch

	case RunningPatternBatch:
		if err := libgql.CanonicalizePatterns(w.cfg.SrcPath(), w.batchSize, w.oracle); err != nil {
			return err
		}
		patternsTotal.Add(float64(w.batchSize))
		klog.Infof("canonicalized %d pattern(s) in %s", w.batchSize, w.cfg.SrcPath())
		if err := pipe.WriteMsg(w.pipe, gql.DoneMsg); err != nil {
			return err
		}
		w.state = AwaitResultType

	case AwaitResultType:
		msg, err := pipe.ReadMsg(w.pipe, gql.MsgResultType)
		if err != nil {
			return err
		}
		if msg.ResultType.IsTerminal() {
			klog.Infof("controller done after %d cycle(s)", w.numCycles)
			w.state = Terminated
			break
		}
		if msg.ResultType == gql.ResultPlain {
			klog.Warningf("unrecognized result type %q; running cycle without coefficients", msg.Raw)
		}
		w.resultType = msg.ResultType
		w.state = RunningCycle

	case RunningCycle:
		stats, err := w.RunCycle(w.resultType)
		if err != nil {
			return err
		}
		w.lastStats = stats
		w.numCycles++
		if err = pipe.WriteMsg(w.pipe, gql.DoneMsg); err != nil {
			return err
		}
		w.state = AwaitResultType

	case Terminated:
		return errors.Wrap(gql.ErrProtocol, "worker has terminated")
	}

	return nil
}

// RunCycle loads the seed graph, writes its representative set to the result dir, and
// counts coefficients if the result type asks for it.
func (w *Worker) RunCycle(rt gql.ResultType) (gql.CycleStats, error) {
	var stats gql.CycleStats
	start := time.Now()

	seedFile, err := libgql.ReadGraphFile(w.cfg.SeedGraphPath())
	if err != nil {
		return stats, err
	}
	seed := seedFile.Graph
	defer seed.Reclaim()

	if seedFile.DeclaredEdges != len(seedFile.Pairs) {
		klog.V(2).Infof("seed header declares %d edges, file lists %d", seedFile.DeclaredEdges, len(seedFile.Pairs))
	}

	dir := libgql.ResultDir{Path: w.cfg.ResultPath()}
	if err = dir.Prepare(); err != nil {
		return stats, err
	}

	sink := &cycleSink{
		ResultDir: dir,
		catalog:   w.catalog,
	}
	opts := libgql.RuleOpts{
		MaxMissingEdges: w.cfg.MaxMissingEdges,
	}
	stats, err = libgql.GenerateRules(seed, w.oracle, opts, sink)
	if err != nil {
		return stats, err
	}

	if rt.CountsCoefficients() {
		files := dir.GraphPaths(stats.NumFiles())
		stats.Coefficients, err = libgql.CountCoefficients(seed, files, w.oracle, w.cfg.MaxSubsets)
		if err != nil {
			return stats, err
		}
	}

	if w.catalog != nil {
		if err = w.catalog.EndCycle(&stats); err != nil {
			return stats, err
		}
	}

	elapsed := time.Since(start)
	cyclesTotal.WithLabelValues(rt.String()).Inc()
	candidatesTotal.Add(float64(stats.Candidates))
	representativesTotal.Add(float64(stats.Representatives))
	cycleDuration.Observe(elapsed.Seconds())

	klog.Infof("cycle %d (%v): seed v=%d e=%d, %d disconnected edges, %d candidates -> %d representatives + seed (%d new to catalog) in %v",
		w.numCycles+1, rt, stats.SeedVerts, stats.SeedEdges, stats.MissingEdges, stats.Candidates, stats.Representatives, sink.numNew, elapsed)

	if w.cfg.MetricsFile != "" {
		if err = DumpMetrics(w.cfg.MetricsFile); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// cycleSink writes representatives to the result dir and records them in the catalog.
type cycleSink struct {
	libgql.ResultDir
	catalog *catalog.Catalog
	numNew  int
}

func (sink *cycleSink) WriteGraph(idx int, X *libgql.Graph) error {
	if err := sink.ResultDir.WriteGraph(idx, X); err != nil {
		return err
	}
	klog.V(2).Infof("wrote %s (v=%d e=%d)", sink.GraphPath(idx), X.NumVerts(), X.NumEdges())

	if sink.catalog != nil {
		added, err := sink.catalog.TryAddGraph(X, idx)
		if err != nil {
			return err
		}
		if added {
			sink.numNew++
		}
	}
	return nil
}
