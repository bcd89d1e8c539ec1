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

/*Package category assigns each marker of a Manhattan plot a display category.

  A marker is in the background category of its chromosome ("even" or "odd",
  alternating along the registry) unless its id belongs to one of the supplied
  named sets.  When a marker belongs to several sets, the set supplied last
  wins.
*/
package category
