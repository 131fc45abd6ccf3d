// Package dispatch implements the parallel encode pipeline: a single
// reader goroutine that slices the input text into vblocks bounded by
// LinesPerVBlock (and, when set, VBlockBytes), a pool of worker goroutines
// that segment each vblock independently, and a writer stage, run in Run's
// calling goroutine, that merges and emits vblocks in strict input order
// regardless of which worker finished first.
//
// Nothing else in this module is concurrent, so this package's
// fan-out/fan-in shape follows the stdlib
// channel/goroutine idiom directly rather than adapting an existing
// concurrent pipeline.
package dispatch

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/vale-bio/gnzip/datatype"
	"github.com/vale-bio/gnzip/errs"
	"github.com/vale-bio/gnzip/file"
	"github.com/vale-bio/gnzip/vblock"
)

// DefaultLinesPerVBlock bounds the number of lines batched into one
// vblock, trading parallelism granularity against per-vblock dictionary
// overhead.
const DefaultLinesPerVBlock = 10_000

// Dispatcher drives one encode run: reading text, segmenting it across a
// worker pool, and merging+emitting vblocks in order.
type Dispatcher struct {
	File           *file.File
	Type           datatype.Type
	Workers        int
	LinesPerVBlock int

	// VBlockBytes, if positive, flushes a vblock once its accumulated line
	// bytes reach this size, independent of LinesPerVBlock: whichever limit
	// is hit first wins. Zero disables the byte-size limit, leaving
	// LinesPerVBlock as the sole flush trigger.
	VBlockBytes int64
}

// New creates a Dispatcher. A non-positive workers or linesPerVBlock falls
// back to a sensible default (1 worker, DefaultLinesPerVBlock lines).
// vblockBytes is an additional byte-size flush threshold; non-positive
// disables it.
func New(f *file.File, dt datatype.Type, workers, linesPerVBlock int, vblockBytes int64) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if linesPerVBlock <= 0 {
		linesPerVBlock = DefaultLinesPerVBlock
	}
	if vblockBytes < 0 {
		vblockBytes = 0
	}

	return &Dispatcher{File: f, Type: dt, Workers: workers, LinesPerVBlock: linesPerVBlock, VBlockBytes: vblockBytes}
}

// Emit is called, in strict vblock order, once a vblock has been merged
// into the file-global dictionary and is ready to have its sections
// written out.
type Emit func(vb *vblock.VBlock) error

// run holds the shared, single-fatal-error-wins state for one Run call.
type run struct {
	stop    chan struct{}
	stopped sync.Once
	errMu   sync.Mutex
	err     error
}

func newRun() *run {
	return &run{stop: make(chan struct{})}
}

// fail records err as the run's fatal error (the first one wins) and
// signals every stage to stop accepting new work.
func (r *run) fail(err error) {
	r.errMu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.errMu.Unlock()

	r.stopped.Do(func() { close(r.stop) })
}

func (r *run) failed() bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

func (r *run) result() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()

	return r.err
}

// Run reads r line by line, batching lines into vblocks, segments each
// vblock on a worker goroutine, and merges+emits vblocks in order via
// emit. The first error from any stage (a malformed input line, a reader
// I/O failure, an emit failure) cancels the whole run: no partial-result
// recovery.
func (d *Dispatcher) Run(r io.Reader, emit Emit) error {
	run := newRun()

	jobs := make(chan *vblock.VBlock)
	results := make(chan *vblock.VBlock)

	go func() {
		defer close(jobs)
		d.readVBlocks(r, jobs, run)
	}()

	var workerWG sync.WaitGroup
	for i := 0; i < d.Workers; i++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			d.segmentWorker(jobs, results, run)
		}()
	}

	go func() {
		workerWG.Wait()
		close(results)
	}()

	d.writeInOrder(results, emit, run)

	return run.result()
}

// readVBlocks scans r for lines, batching up to LinesPerVBlock lines per
// vblock before handing it to a worker. A line's trailing \r (if any) is
// stripped and recorded in LineInfo.HasCR so it can be restored verbatim
// on decode.
func (d *Dispatcher) readVBlocks(r io.Reader, jobs chan<- *vblock.VBlock, run *run) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	vb := vblock.New(d.File.NextVBlockI())
	count := 0
	size := int64(0)

	flush := func() bool {
		select {
		case jobs <- vb:
			return true
		case <-run.stop:
			return false
		}
	}

	for scanner.Scan() {
		if run.failed() {
			return
		}

		line := scanner.Bytes()
		hasCR := bytes.HasSuffix(line, []byte{'\r'})
		if hasCR {
			line = line[:len(line)-1]
		}

		vb.AddLine(line, hasCR)
		count++
		size += int64(len(line))

		if count >= d.LinesPerVBlock || (d.VBlockBytes > 0 && size >= d.VBlockBytes) {
			if !flush() {
				return
			}

			vb = vblock.New(d.File.NextVBlockI())
			count = 0
			size = 0
		}
	}

	if err := scanner.Err(); err != nil {
		run.fail(fmt.Errorf("%w: dispatch: reading input: %w", errs.ErrIO, err))

		return
	}

	if count > 0 {
		flush()
	}
}

// segmentWorker pulls vblocks off jobs, segments every line with the
// configured data type, and forwards the finished vblock downstream.
func (d *Dispatcher) segmentWorker(jobs <-chan *vblock.VBlock, results chan<- *vblock.VBlock, run *run) {
	for vb := range jobs {
		if run.failed() {
			continue
		}

		if err := d.segmentVBlock(vb); err != nil {
			run.fail(err)

			continue
		}

		select {
		case results <- vb:
		case <-run.stop:
		}
	}
}

func (d *Dispatcher) segmentVBlock(vb *vblock.VBlock) error {
	for i := 0; i < vb.LineCount(); i++ {
		line, hasCR, err := vb.Line(i)
		if err != nil {
			return err
		}

		if err := d.Type.SegLine(vb, line, hasCR); err != nil {
			return fmt.Errorf("vblock %d line %d: %w", vb.VBlockI, i, err)
		}
	}

	return nil
}

// writeInOrder merges and emits vblocks strictly in VBlockI order,
// buffering any vblock that finishes segmentation out of order until its
// turn comes.
func (d *Dispatcher) writeInOrder(results <-chan *vblock.VBlock, emit Emit, run *run) {
	pending := make(map[uint32]*vblock.VBlock)
	next := uint32(1)

	for vb := range results {
		if run.failed() {
			continue
		}

		pending[vb.VBlockI] = vb

		for {
			ready, ok := pending[next]
			if !ok {
				break
			}

			d.File.MergeVBlock(ready)

			if err := emit(ready); err != nil {
				run.fail(err)

				break
			}

			delete(pending, next)
			next++
		}
	}
}
