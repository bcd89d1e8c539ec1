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

/*Package interval implements interval-union operations over BED files and
  samtools-style region strings, for restricting a plot to a region or
  highlighting the markers that fall inside a set of targets.

  Overlapping and touching intervals are merged, not tracked separately.
  Marker positions are 1-based, as in association tables; BED intervals and
  Entry boundaries are 0-based half-open.
*/
package interval
