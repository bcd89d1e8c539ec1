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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// maxPos is the End of an Entry with no positional restriction.
const maxPos = math.MaxInt64 - 1

// Entry represents a single interval, with 0-based coordinates.
type Entry struct {
	ChrName string
	Start0  int64
	End     int64
}

// Contains returns whether the 1-based position pos on chromosome chr lies in
// e.
func (e Entry) Contains(chr string, pos int64) bool {
	return chr == e.ChrName && pos > e.Start0 && pos <= e.End
}

// Bounded returns whether e restricts positions, i.e. was not parsed from a
// bare contig name.
func (e Entry) Bounded() bool { return e.End != maxPos || e.Start0 != 0 }

// String returns e in region-string form.
func (e Entry) String() string {
	if !e.Bounded() {
		return e.ChrName
	}
	return fmt.Sprintf("%s:%d-%d", e.ChrName, e.Start0+1, e.End)
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning a contig ID and 0-based interval boundaries.  Commas in positions
// are ignored, so "chr1:1,000-2,000" works.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.LastIndexByte(region, ':')
	if colonPos == -1 {
		result.ChrName = region
		result.End = maxPos
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.ChrName = region[0:colonPos]
	rangeStr := strings.Replace(region[colonPos+1:], ",", "", -1)
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 64); err != nil {
			return
		}
		if pos1 <= 0 {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start0 = pos1 - 1
		result.End = pos1
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1, end int64
	if start1, err = strconv.ParseInt(start1Str, 10, 64); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", start1Str)
		return
	}
	if end, err = strconv.ParseInt(endStr, 10, 64); err != nil {
		return
	}
	if end < start1 || end >= maxPos {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start0 = start1 - 1
	result.End = end
	return
}
