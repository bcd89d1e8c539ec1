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
package genome

import (
	"strings"

	"github.com/pkg/errors"
)

// Autosomes plus X and Y, without the "chr" prefix (the convention of most
// GWAS summary statistics).
var (
	grch37 = MustNewRegistry([]Chromosome{
		{"1", 249250621}, {"2", 243199373}, {"3", 198022430}, {"4", 191154276},
		{"5", 180915260}, {"6", 171115067}, {"7", 159138663}, {"8", 146364022},
		{"9", 141213431}, {"10", 135534747}, {"11", 135006516}, {"12", 133851895},
		{"13", 115169878}, {"14", 107349540}, {"15", 102531392}, {"16", 90354753},
		{"17", 81195210}, {"18", 78077248}, {"19", 59128983}, {"20", 63025520},
		{"21", 48129895}, {"22", 51304566}, {"X", 155270560}, {"Y", 59373566},
	})
	grch38 = MustNewRegistry([]Chromosome{
		{"1", 248956422}, {"2", 242193529}, {"3", 198295559}, {"4", 190214555},
		{"5", 181538259}, {"6", 170805979}, {"7", 159345973}, {"8", 145138636},
		{"9", 138394717}, {"10", 133797422}, {"11", 135086622}, {"12", 133275309},
		{"13", 114364328}, {"14", 107043718}, {"15", 101991189}, {"16", 90338345},
		{"17", 83257441}, {"18", 80373285}, {"19", 58617616}, {"20", 64444167},
		{"21", 46709983}, {"22", 50818468}, {"X", 156040895}, {"Y", 57227415},
	})
)

// Builtin returns the registry of a builtin assembly: "GRCh37" (alias "hg19")
// or "GRCh38" (alias "hg38").  Names are case-insensitive.
func Builtin(name string) (*Registry, error) {
	switch strings.ToLower(name) {
	case "grch37", "hg19":
		return grch37, nil
	case "grch38", "hg38":
		return grch38, nil
	}
	return nil, errors.Errorf("genome.Builtin: unknown assembly %q", name)
}

// WithPrefix returns a copy of r with prefix prepended to every chromosome
// name, e.g. WithPrefix(grch38, "chr") to match UCSC-style tables.
func WithPrefix(r *Registry, prefix string) *Registry {
	chroms := make([]Chromosome, r.Len())
	for i := range chroms {
		c := r.Chromosome(i)
		chroms[i] = Chromosome{Name: prefix + c.Name, Length: c.Length}
	}
	return MustNewRegistry(chroms)
}
