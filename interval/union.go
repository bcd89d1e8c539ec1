// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package interval

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/manhattan/gwas"
	"github.com/klauspost/compress/gzip"
)

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// BEDOpts defines behavior of ReadBED.
type BEDOpts struct {
	// OneBasedInput interprets the BED interval boundaries as one-based [start,
	// end] instead of the usual zero-based [start, end).
	OneBasedInput bool
}

// Union is a set of disjoint intervals per chromosome.  For each chromosome,
// the (0-based) start of interval #k is in element [2k] of its endpoint slice
// and the end in element [2k+1], in increasing order.  A position is covered
// iff the number of endpoints strictly below pos+1 (0-based) is odd.
//
// A Union is immutable once built and safe for concurrent use.
type Union struct {
	nameMap map[string][]int64
	// names lists the chromosomes in first-appearance order.
	names []string
}

// searchPos returns the index of x in a[], or the position where x would be
// inserted if x isn't in a (this could be len(a)).
func searchPos(a []int64, x int64) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// Contains returns whether the 1-based position pos on chromosome chr is
// covered by the union.
func (u *Union) Contains(chr string, pos int64) bool {
	endpoints := u.nameMap[chr]
	if endpoints == nil {
		return false
	}
	// A 1-based pos is the 0-based interval [pos-1, pos), so pos plays the role
	// of "0-based position + 1".
	return searchPos(endpoints, pos)&1 == 1
}

// Select returns the ids of the markers covered by the union, in input order.
func (u *Union) Select(markers []gwas.Marker) []string {
	var ids []string
	for _, m := range markers {
		if u.Contains(m.Chrom, m.Pos) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// Chromosomes returns the chromosomes mentioned by the union, in input order.
func (u *Union) Chromosomes() []string { return u.names }

// Bases returns the number of bases covered by the union.
func (u *Union) Bases() int64 {
	var n int64
	for _, endpoints := range u.nameMap {
		for i := 0; i+1 < len(endpoints); i += 2 {
			n += endpoints[i+1] - endpoints[i]
		}
	}
	return n
}

// unionBuilder accumulates sorted intervals, merging touching and overlapping
// ones.  Empty intervals still "mention" their chromosome.
type unionBuilder struct {
	u                  *Union
	prevChr            string
	prevStart, prevEnd int64
	chrIntervals       []int64
}

func newUnionBuilder() *unionBuilder {
	return &unionBuilder{u: &Union{nameMap: make(map[string][]int64)}}
}

func (b *unionBuilder) flush() {
	if b.prevChr == "" {
		return
	}
	if b.prevEnd != -1 {
		b.chrIntervals = append(b.chrIntervals, b.prevStart, b.prevEnd)
	}
	b.u.nameMap[b.prevChr] = b.chrIntervals
	b.u.names = append(b.u.names, b.prevChr)
}

func (b *unionBuilder) add(chr string, start, end int64) error {
	if start < 0 {
		return fmt.Errorf("negative start coordinate %d", start)
	}
	if end < start {
		return fmt.Errorf("invalid coordinate pair [%d, %d)", start, end)
	}
	if chr != b.prevChr {
		b.flush()
		if _, found := b.u.nameMap[chr]; found {
			return fmt.Errorf("unsorted input (split chromosome %v)", chr)
		}
		b.prevChr = chr
		b.chrIntervals = []int64{}
		if end == start {
			b.prevStart, b.prevEnd = -1, -1
		} else {
			b.prevStart, b.prevEnd = start, end
		}
		return nil
	}
	if end == start {
		return nil
	}
	if b.prevEnd == -1 {
		b.prevStart, b.prevEnd = start, end
		return nil
	}
	if start > b.prevEnd {
		b.chrIntervals = append(b.chrIntervals, b.prevStart, b.prevEnd)
		b.prevStart, b.prevEnd = start, end
		return nil
	}
	if start < b.prevStart {
		return fmt.Errorf("unsorted input")
	}
	if end > b.prevEnd {
		b.prevEnd = end
	}
	return nil
}

func (b *unionBuilder) finish() *Union {
	b.flush()
	b.prevChr = ""
	return b.u
}

// NewUnion loads just the intervals from a sorted (by first coordinate)
// interval-BED, merging touching/overlapping intervals and eliminating empty
// ones in the process.  Lines starting with "#", "track" or "browser" are
// skipped.
func NewUnion(reader io.Reader, opts BEDOpts) (*Union, error) {
	var startSubtract int64
	if opts.OneBasedInput {
		startSubtract = 1
	}
	b := newUnionBuilder()
	scanner := bufio.NewScanner(reader)
	var tokens [3][]byte
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || tokens[0][0] == '#' {
			continue
		}
		if tok := gunsafe.BytesToString(tokens[0]); tok == "track" || tok == "browser" {
			continue
		}
		if nToken != 3 {
			return nil, fmt.Errorf("interval.NewUnion: line %d has fewer tokens than expected", lineIdx)
		}
		start, err := strconv.ParseInt(gunsafe.BytesToString(tokens[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interval.NewUnion: line %d: %v", lineIdx, err)
		}
		end, err := strconv.ParseInt(gunsafe.BytesToString(tokens[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("interval.NewUnion: line %d: %v", lineIdx, err)
		}
		// The chromosome name must be copied; tokens[0] points into a buffer the
		// scanner reuses.
		if err := b.add(string(tokens[0]), start-startSubtract, end); err != nil {
			return nil, fmt.Errorf("interval.NewUnion: line %d: %v", lineIdx, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	u := b.finish()
	log.Printf("BED loaded, %d base(s) covered.", u.Bases())
	return u, nil
}

// ReadBED is a wrapper for NewUnion that takes a path instead of an
// io.Reader.  Gzipped input is detected from the file name.
func ReadBED(ctx context.Context, path string, opts BEDOpts) (u *Union, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	return NewUnion(reader, opts)
}

// NewUnionFromEntries initializes a Union from a sorted []Entry.
func NewUnionFromEntries(entries []Entry) (*Union, error) {
	b := newUnionBuilder()
	for _, e := range entries {
		if err := b.add(e.ChrName, e.Start0, e.End); err != nil {
			return nil, fmt.Errorf("interval.NewUnionFromEntries: %v", err)
		}
	}
	return b.finish(), nil
}
