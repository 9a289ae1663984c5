package bot

import (
	"testing"

	"github.com/freeeve/roshambo/pkg/rpsls"
)

// warmEngine returns an engine that has already played n rounds against a
// fixed five-move cycle.
func warmEngine(b *testing.B, n int) *Engine {
	b.Helper()
	e := NewEngine(EngineConfig{Seed: 1})
	last := rpsls.None
	for i := 0; i < n; i++ {
		if _, err := e.NextMove(last); err != nil {
			b.Fatal(err)
		}
		last = rpsls.FromIndex(i % rpsls.NumMoves)
	}
	return e
}

func BenchmarkAlloc_EngineNextMove(b *testing.B) {
	e := warmEngine(b, 50)
	i := 0
	b.ReportAllocs()
	for b.Loop() {
		if _, err := e.NextMove(rpsls.FromIndex(i % rpsls.NumMoves)); err != nil {
			b.Fatal(err)
		}
		i++
	}
}

func BenchmarkAlloc_EngineLongHistory(b *testing.B) {
	e := warmEngine(b, 5000)
	i := 0
	b.ReportAllocs()
	for b.Loop() {
		if _, err := e.NextMove(rpsls.FromIndex(i % rpsls.NumMoves)); err != nil {
			b.Fatal(err)
		}
		i++
	}
}

func BenchmarkAlloc_HistoryPredictor(b *testing.B) {
	e := warmEngine(b, 1000)
	p := PredictorFor(StrategyHistory)
	b.ReportAllocs()
	for b.Loop() {
		p.Predict(&e.history, e.rng)
	}
}

func BenchmarkAlloc_ScoresBest(b *testing.B) {
	e := warmEngine(b, 200)
	b.ReportAllocs()
	for b.Loop() {
		e.scores.Best()
	}
}
