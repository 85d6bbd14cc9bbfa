// Package filter implements the §4.11 fast row-level coordinate filter: an
// O(1)-per-row membership test against a MOC, applied to a stream of CSV
// rows.
//
// The per-row test mirrors §4.11's "h = layer.hash(lon, lat) << shift;
// moc.contains_val(h)" recipe: Predicate precomputes the shift from the
// MOC's own depth_max up to the carrier's MAX_DEPTH once, then every row
// only costs one HEALPix hash and one rangeset lookup.
//
// CSV is read with stdlib encoding/csv, the only CSV library that appears
// anywhere in the example corpus (doismellburning-samoyed/src/log.go);
// no third-party CSV package exists to ground a replacement (DESIGN.md).
//
// Chunk parallelism follows pileup/snp/pileup.go's sharding convention,
// already reused by moc/traverse.go's KwayOr: traverse.Each(parallelism,
// ...) spawns exactly Opts.Parallelism jobs, each owning a contiguous
// slice of the chunk, so the pool size is the call's own parameter
// (per-call pool injection) rather than a process-global pool.
package filter

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/grailbio/base/traverse"

	"github.com/cds-astro/go-moc/geom"
	"github.com/cds-astro/go-moc/idx"
	"github.com/cds-astro/go-moc/moc"
	"github.com/cds-astro/go-moc/mocerr"
	"github.com/cds-astro/go-moc/qty"
)

// Predicate answers HEALPix cone/position membership for a MOC at O(1)
// per call: Test hashes (lonRad, latRad) at the MOC's own depth_max via
// cov, then shifts the result up to MAX_DEPTH before the rangeset lookup.
type Predicate[T idx.Idx] struct {
	cov   geom.Coverage[T]
	m     moc.RangeMOC[T]
	depth int
	shift uint
}

// NewPredicate precomputes shift = MAX_DEPTH - depth_max once per MOC, per
// §4.11.
func NewPredicate[T idx.Idx](cov geom.Coverage[T], m moc.RangeMOC[T]) Predicate[T] {
	return Predicate[T]{
		cov:   cov,
		m:     m,
		depth: m.DepthMax,
		shift: m.Q.ShiftFromDepthMax(m.NBits(), m.DepthMax),
	}
}

// Test reports whether (lonRad, latRad) falls inside the MOC.
func (p Predicate[T]) Test(lonRad, latRad float64) bool {
	h := p.cov.Hash(p.depth, lonRad, latRad)
	return p.m.ContainsVal(h << p.shift)
}

// ValuePredicate answers membership for a 1-D quantity (time or frequency)
// given its value in the quantity's natural unit (microseconds since
// JD=0, or Hz). Unlike Predicate, no shift is needed: a time value is
// already a MAX_DEPTH-resolution index, and HashFromFreq already resolves
// to one.
type ValuePredicate[T idx.Idx] struct {
	m     moc.RangeMOC[T]
	toIdx func(float64) T
}

// NewTimePredicate builds a ValuePredicate over a microsecond-JD value.
func NewTimePredicate[T idx.Idx](m moc.RangeMOC[T]) ValuePredicate[T] {
	return ValuePredicate[T]{m: m, toIdx: func(v float64) T { return T(uint64(v)) }}
}

// NewFrequencyPredicate builds a ValuePredicate over a frequency in Hz.
func NewFrequencyPredicate[T idx.Idx](m moc.RangeMOC[T]) ValuePredicate[T] {
	nBits := m.NBits()
	return ValuePredicate[T]{m: m, toIdx: func(v float64) T { return T(qty.HashFromFreq(nBits, v)) }}
}

// Test reports whether v falls inside the MOC.
func (p ValuePredicate[T]) Test(v float64) bool { return p.m.ContainsVal(p.toIdx(v)) }

// RowFunc parses whatever columns its predicate needs out of a CSV row and
// answers membership. NewPositionFilter and NewValueFilter are the two
// concrete constructors (`filter position`, `filter time` in the CLI).
type RowFunc func(row []string) (bool, error)

// NewPositionFilter builds a RowFunc that reads lon/lat from lonCol/latCol,
// converting from degrees first when degrees is true.
func NewPositionFilter[T idx.Idx](p Predicate[T], lonCol, latCol int, degrees bool) RowFunc {
	return func(row []string) (bool, error) {
		lon, err := parseField(row, lonCol, "lon")
		if err != nil {
			return false, err
		}
		lat, err := parseField(row, latCol, "lat")
		if err != nil {
			return false, err
		}
		if degrees {
			lon *= math.Pi / 180
			lat *= math.Pi / 180
		}
		return p.Test(lon, lat), nil
	}
}

// NewValueFilter builds a RowFunc that reads a single scalar value from
// col.
func NewValueFilter[T idx.Idx](p ValuePredicate[T], col int) RowFunc {
	return func(row []string) (bool, error) {
		v, err := parseField(row, col, "value")
		if err != nil {
			return false, err
		}
		return p.Test(v), nil
	}
}

func parseField(row []string, col int, name string) (float64, error) {
	if col < 0 || col >= len(row) {
		return 0, &mocerr.ParseError{Msg: "row has no " + name + " column " + strconv.Itoa(col)}
	}
	v, err := strconv.ParseFloat(row[col], 64)
	if err != nil {
		return 0, &mocerr.ParseError{Msg: "bad " + name + " field: " + row[col]}
	}
	return v, nil
}

// Opts controls FilterCSV's chunking, parallelism, and header handling.
type Opts struct {
	// HasHeader passes the input's first row through to the output
	// unfiltered, per the usual CSV convention.
	HasHeader bool
	// ChunkSize is the number of rows evaluated as one unit; 0 defaults to
	// 4096 (§4.11's "chunk the input").
	ChunkSize int
	// Parallelism is the pool size for a chunk's row evaluation; 0 or 1
	// evaluates the chunk sequentially (§5's "single-threaded
	// deterministic by default").
	Parallelism int
}

// FilterCSV streams CSV rows from r to w, writing only the rows for which
// test returns true. Output row order always matches input row order,
// regardless of Opts.Parallelism.
func FilterCSV(r io.Reader, w io.Writer, test RowFunc, opts Opts) error {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 4096
	}

	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if opts.HasHeader {
		header, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := cw.Write(header); err != nil {
			return err
		}
	}

	type chunkResult struct {
		rows [][]string
		kept []bool
		err  error
	}

	// Two-chunk double buffer (§4.11): the next chunk is read and
	// evaluated on a background goroutine while the current chunk's
	// surviving rows are written here, overlapping I/O with the per-row
	// hash test without reordering any row.
	results := make(chan chunkResult, 1)
	go func() {
		defer close(results)
		for {
			rows, rerr := readChunk(cr, chunkSize)
			if len(rows) > 0 {
				kept := make([]bool, len(rows))
				cerr := evalChunk(rows, kept, test, opts.Parallelism)
				results <- chunkResult{rows: rows, kept: kept, err: cerr}
				if cerr != nil {
					return
				}
			}
			if rerr != nil {
				if rerr != io.EOF {
					results <- chunkResult{err: rerr}
				}
				return
			}
		}
	}()

	for c := range results {
		if c.err != nil {
			return c.err
		}
		for i, row := range c.rows {
			if c.kept[i] {
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func readChunk(cr *csv.Reader, n int) ([][]string, error) {
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		rec, err := cr.Read()
		if err != nil {
			return rows, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// evalChunk tests every row in rows, parallelizing over `parallelism`
// contiguous shards the way pileup/snp/pileup.go divides nShard by
// parallelism, rather than spawning one task per row.
func evalChunk(rows [][]string, kept []bool, test RowFunc, parallelism int) error {
	n := len(rows)
	if parallelism <= 1 || n < parallelism {
		for i, row := range rows {
			ok, err := test(row)
			if err != nil {
				return err
			}
			kept[i] = ok
		}
		return nil
	}
	return traverse.Each(parallelism, func(jobIdx int) error {
		start := (jobIdx * n) / parallelism
		end := ((jobIdx + 1) * n) / parallelism
		for i := start; i < end; i++ {
			ok, err := test(rows[i])
			if err != nil {
				return err
			}
			kept[i] = ok
		}
		return nil
	})
}
