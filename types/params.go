package types

import (
	"fmt"
	"sort"
	"strings"
)

// Params is one parameter combination, name -> value.
type Params map[string]any

// ParamGrid maps a parameter name to its ordered candidate values.
type ParamGrid map[string][]any

func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Names returns the parameter names in lexicographic order.
func (p Params) Names() []string {
	names := make([]string, 0, len(p))
	for k := range p {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Key is a canonical, order independent rendering such as "long=20,short=5".
func (p Params) Key() string {
	var sb strings.Builder
	for i, name := range p.Names() {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%s=%v", name, p[name])
	}
	return sb.String()
}

func (p Params) String() string {
	return p.Key()
}

// Names returns the grid's parameter names in lexicographic order.
func (g ParamGrid) Names() []string {
	names := make([]string, 0, len(g))
	for k := range g {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Size is the number of combinations in the Cartesian product.
func (g ParamGrid) Size() int {
	if len(g) == 0 {
		return 0
	}
	n := 1
	for _, values := range g {
		n *= len(values)
	}
	return n
}
