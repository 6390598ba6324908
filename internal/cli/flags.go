package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// enumValue is a pflag.Value restricted to a fixed set of strings.
type enumValue struct {
	value   *string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnumValue(def string, target *string, allowed ...string) *enumValue {
	*target = def
	return &enumValue{value: target, allowed: allowed}
}

func (e *enumValue) String() string { return *e.value }

func (e *enumValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range e.allowed {
		if s == a {
			*e.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(e.allowed, "|"))
}

func (e *enumValue) Type() string { return "string" }

// optionalInt returns a pointer to the flag's value when it was set.
func optionalInt(fs *pflag.FlagSet, name string) (*int, error) {
	if !fs.Changed(name) {
		return nil, nil
	}
	v, err := fs.GetInt(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// optionalString returns a pointer to the flag's trimmed value when it was
// set to something non-blank.
func optionalString(fs *pflag.FlagSet, name string) (*string, error) {
	if !fs.Changed(name) {
		return nil, nil
	}
	v, err := fs.GetString(name)
	if err != nil {
		return nil, err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	return &v, nil
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", what, arg)
	}
	return id, nil
}
