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

/*Package genome maps (chromosome, position) pairs onto a single genome-wide
  linear axis.

  A Registry is the ordered list of chromosome lengths of one assembly.  It is
  built once, never mutated, and passed explicitly to everything that needs to
  place a marker.  The genome coordinate of position p on the i'th chromosome is
  start[i] + p, where start[] is the prefix sum of the lengths of the preceding
  chromosomes.

  Registries can be built from a literal list, one of the builtin assemblies
  (GRCh37, GRCh38), a samtools .fai index, a SAM/BAM header, or a two-column
  name/length TSV.
*/
package genome
