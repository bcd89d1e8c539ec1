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

/*Package overlap computes pairwise marker overlap between categories and
  orders the categories so that similar ones are adjacent.

  The overlap of two categories is the Jaccard index of their id sets.  The
  diagonal is fixed at 1.  Two empty categories have overlap 0, as does an
  empty category and a non-empty one.  Distance is 1 - overlap.

  Ordering is the leaf order of an average-linkage (UPGMA) agglomerative
  clustering over the distance matrix.  At each step the closest pair of
  clusters is merged; ties go to the pair with the smallest (i, j) slot
  indices, so the result depends only on the matrix and the input order.
*/
package overlap
