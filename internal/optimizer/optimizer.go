package optimizer

import (
	"log/slog"
	"sort"

	"github.com/patternmatch/strusmatch/internal/ir"
)

// Options configures Optimize, mirroring the builder-facade option
// names (stopwordOccurrenceFactor, weightFactor, maxRange).
type Options struct {
	StopwordOccurrenceFactor float64
	WeightFactor             float64
	MaxRange                 int64 // 0 means unset / no clamp
}

// Statistics is the optimizer's report back to the program table.
type Statistics struct {
	KeyEventDist map[int]int // log2(frequency) bucket -> count of key events in it
	StopWordSet  map[ir.EventHandle]bool
}

// Optimize rewrites a compiled but unoptimized program slice —
// key-trigger selection, stop-word detection with alt-key
// installation, range clamping — returning the transformed programs
// and the resulting statistics. It is a pure function: two calls with
// equal inputs produce equal outputs, and it never reads from outside
// programs/frequency/opts. In particular it never observes input.
func Optimize(programs []ir.Program, frequency map[ir.EventHandle]uint64, opts Options) ([]ir.Program, Statistics, error) {
	out := make([]ir.Program, len(programs))
	copy(out, programs)

	for i := range out {
		selectKeyTrigger(&out[i], frequency, opts.WeightFactor)
	}

	stopWords := computeStopWordSet(out, frequency, opts.StopwordOccurrenceFactor)

	for i := range out {
		installAltKeyIfStopword(&out[i], stopWords)
		if opts.MaxRange > 0 && out[i].Range > opts.MaxRange {
			slog.Warn("optimizer: clamping program range to maxRange",
				"program_id", out[i].ID, "range", out[i].Range, "max_range", opts.MaxRange)
			out[i].Range = opts.MaxRange
		}
	}

	return out, Statistics{
		KeyEventDist: keyEventHistogram(out, frequency),
		StopWordSet:  stopWords,
	}, nil
}

// selectKeyTrigger narrows a program's triggers to a single is_key
// winner: among the triggers the builder marked eligible, the one
// whose weighted frequency is lowest. Ties break on
// trigger order for determinism. All other triggers' IsKey is cleared
// so the state machine opens exactly one instance per key firing.
func selectKeyTrigger(p *ir.Program, frequency map[ir.EventHandle]uint64, weightFactor float64) {
	best := -1
	var bestWeight float64
	for i, t := range p.Triggers {
		if !t.IsKey {
			continue
		}
		weight := float64(frequency[t.Event]) * weightFactor
		if best == -1 || weight < bestWeight {
			best = i
			bestWeight = weight
		}
	}
	if best == -1 {
		return
	}
	for i := range p.Triggers {
		p.Triggers[i].IsKey = i == best
	}
}

// computeStopWordSet marks events whose frequency, scaled by
// stopwordOccurrenceFactor, exceeds the median key-event frequency.
func computeStopWordSet(programs []ir.Program, frequency map[ir.EventHandle]uint64, stopwordOccurrenceFactor float64) map[ir.EventHandle]bool {
	var keyFreqs []uint64
	for _, p := range programs {
		for _, t := range p.KeyTriggers() {
			keyFreqs = append(keyFreqs, frequency[t.Event])
		}
	}
	if len(keyFreqs) == 0 {
		return map[ir.EventHandle]bool{}
	}

	median := medianUint64(keyFreqs)
	stopWords := make(map[ir.EventHandle]bool)
	for _, p := range programs {
		for _, t := range p.KeyTriggers() {
			if float64(frequency[t.Event])*stopwordOccurrenceFactor > float64(median) {
				stopWords[t.Event] = true
			}
		}
	}
	return stopWords
}

func medianUint64(values []uint64) uint64 {
	sorted := append([]uint64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// installAltKeyIfStopword gives a program keyed on a stop-word a
// second wake-up event: the first trigger, in trigger order, that is
// neither the key nor a delimiter (frequencies are not consulted here),
// so the state machine is not starved of
// instances just because its key event is too common to key on alone.
func installAltKeyIfStopword(p *ir.Program, stopWords map[ir.EventHandle]bool) {
	keys := p.KeyTriggers()
	if len(keys) == 0 || !stopWords[keys[0].Event] {
		return
	}

	altIdx := -1
	for i, t := range p.Triggers {
		if t.IsKey || t.SigType == ir.SigDel {
			continue
		}
		if altIdx == -1 {
			altIdx = i
		}
	}
	if altIdx == -1 {
		return
	}
	p.AltKeyEvent = p.Triggers[altIdx].Event
}

// keyEventHistogram buckets key-event frequencies by power-of-two
// magnitude, giving a coarse but allocation-free distribution report.
func keyEventHistogram(programs []ir.Program, frequency map[ir.EventHandle]uint64) map[int]int {
	hist := make(map[int]int)
	for _, p := range programs {
		for _, t := range p.KeyTriggers() {
			hist[log2Bucket(frequency[t.Event])]++
		}
	}
	return hist
}

func log2Bucket(freq uint64) int {
	bucket := 0
	for freq > 1 {
		freq >>= 1
		bucket++
	}
	return bucket
}
