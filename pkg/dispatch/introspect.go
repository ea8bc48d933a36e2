package dispatch

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// reservedNames are framework-internal probe names that host integrations
// may register against a dispatcher. They are excluded from the
// distinct-name count in Summary but their implementations still count.
var reservedNames = map[string]bool{
	"__describe__": true,
	"__summary__":  true,
	"__health__":   true,
}

// Describe renders every bound name with its candidates in registration
// order: the effective parameter constraints, the predicate verbatim, and a
// re-bound marker when the callable's identifier differs from the name it
// answers to. Read-only.
func Describe(d *Dispatcher) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s bound implementations:", d.Name())
	reg := d.Registry()
	for _, name := range reg.Names() {
		cands, err := reg.Candidates(name)
		if err != nil {
			continue
		}
		for _, cand := range cands {
			fmt.Fprintf(&b, "\n- %s: (%s)", name, formatParams(cand))
			if cand.Rebound() {
				fmt.Fprintf(&b, " (re-bound '%s')", cand.FuncName)
			}
		}
	}
	return b.String()
}

func formatParams(im *Implementation) string {
	parts := make([]string, len(im.Params))
	for i, p := range im.Params {
		s := p.Name + ": " + p.Constraint.Types.String()
		if pred := p.Constraint.Pred.Source; pred != "true" {
			s += " where " + pred
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

// Summary reports distinct-name and implementation counts, with reserved
// framework-internal names excluded from the name count only.
func Summary(d *Dispatcher) string {
	reg := d.Registry()
	_, impls := reg.Len()
	names := 0
	for _, name := range reg.Names() {
		if !reservedNames[name] {
			names++
		}
	}
	return fmt.Sprintf("%s with %d %s bound to %d %s",
		d.Name(),
		names, plural(names, "function"),
		impls, plural(impls, "implementation"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// Report is the machine-readable form of Describe.
type Report struct {
	Dispatcher      string    `yaml:"dispatcher"`
	Functions       int       `yaml:"functions"`
	Implementations int       `yaml:"implementations"`
	Bindings        []Binding `yaml:"bindings"`
}

type Binding struct {
	Name       string      `yaml:"name"`
	Candidates []Candidate `yaml:"candidates"`
}

type Candidate struct {
	Func    string     `yaml:"func"`
	Rebound bool       `yaml:"rebound,omitempty"`
	Params  []ParamDoc `yaml:"params"`
}

type ParamDoc struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Predicate string `yaml:"predicate"`
}

// NewReport snapshots the registry. Binding order is first-registration
// order; candidate order is declaration order.
func NewReport(d *Dispatcher) Report {
	reg := d.Registry()
	_, impls := reg.Len()
	rep := Report{Dispatcher: d.Name(), Implementations: impls}
	for _, name := range reg.Names() {
		if !reservedNames[name] {
			rep.Functions++
		}
		cands, err := reg.Candidates(name)
		if err != nil {
			continue
		}
		binding := Binding{Name: name}
		for _, cand := range cands {
			c := Candidate{Func: cand.FuncName, Rebound: cand.Rebound()}
			for _, p := range cand.Params {
				c.Params = append(c.Params, ParamDoc{
					Name:      p.Name,
					Type:      p.Constraint.Types.String(),
					Predicate: p.Constraint.Pred.Source,
				})
			}
			binding.Candidates = append(binding.Candidates, c)
		}
		rep.Bindings = append(rep.Bindings, binding)
	}
	return rep
}

// Marshal renders the report as a YAML document.
func (r Report) Marshal() ([]byte, error) {
	return yaml.Marshal(r)
}
