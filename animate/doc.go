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

/*Package animate sequences the frames of an animated Manhattan plot and
  exports them as numbered images plus a manifest for GIF assembly.

  An animation is an ordered list of genuine states joined by K synthetic
  transition frames per gap, so M states give M + (M-1)*K frames.  Frame n
  belongs to state i = n/(K+1) at step k = n%(K+1); step 0 is the genuine state
  itself and steps 1..K interpolate towards state i+1 at fraction x = k/(K+1).
  No transition follows the last state.

  Two kinds of states are supported.  A ScalarSequencer interpolates marker
  values (e.g. -log10 p across time points) as p0 + ease(x)*(p1-p0), drawing
  only the markers present in both states.  A CategoricalSequencer fades the
  highlighted category of each marker out of the source state and into the
  destination state.

  Every frame is a pure function of its index.  Export renders frames one at a
  time per worker and writes each to its own file before starting the next, so
  memory use does not grow with the length of the animation.
*/
package animate
