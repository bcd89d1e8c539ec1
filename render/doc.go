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

/*Package render draws Manhattan plots and overlap heatmaps.

  Manhattan renders animate.Frame values to PNG with gonum/plot and is the
  animate.Renderer used for frame export.  Heatmap draws an overlap matrix in
  clustered order.  The HTML functions build interactive go-echarts pages of
  the same plots.
*/
package render
