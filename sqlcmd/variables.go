package sqlcmd

import (
	"fmt"
	"strings"
)

// Variables maps SqlCmd variable names to values. Names are compared
// ordinally, so `Foo` and `foo` are different variables.
type Variables map[string]string

func (v Variables) Define(name, value string) {
	v[name] = value
}

func (v Variables) Remove(name string) {
	delete(v, name)
}

func (v Variables) Lookup(name string) (string, bool) {
	value, ok := v[name]
	return value, ok
}

// Replace discards all variables and imports vars instead. Entries with an
// empty name are skipped.
func (v Variables) Replace(vars map[string]string) {
	clear(v)
	for name, value := range vars {
		if name == "" {
			continue
		}
		v[name] = value
	}
}

// ParseAssignments parses `name=value` pairs as given on a command line,
// e.g. `-v Env=prod`. Later assignments win.
func ParseAssignments(assignments []string) (Variables, error) {
	result := make(Variables, len(assignments))
	for _, a := range assignments {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || !validName(name) {
			return nil, fmt.Errorf("invalid variable assignment %q, expected name=value", a)
		}
		result[name] = value
	}
	return result, nil
}
