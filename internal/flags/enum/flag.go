// Package enum provides a pflag value that only accepts one of a fixed set of strings.
package enum

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"
)

const Type = "enum"

// Flag holds one of its options. The first option is the default.
type Flag struct {
	value   string
	options []string
}

// New returns a Flag defaulting to the first of options.
func New(options ...string) *Flag {
	if len(options) == 0 {
		panic("enum flag needs at least one option")
	}
	return &Flag{value: options[0], options: slices.Clone(options)}
}

func (f *Flag) Type() string {
	return Type
}

func (f *Flag) String() string {
	return f.value
}

func (f *Flag) Set(value string) error {
	if !slices.Contains(f.options, value) {
		return fmt.Errorf("expected one of %q", f.options)
	}
	f.value = value
	return nil
}

// Options returns the accepted values in declaration order.
func (f *Flag) Options() []string {
	return slices.Clone(f.options)
}

// Var defines an enum flag on f. The usage string is extended with the sorted list of options.
func Var(f *pflag.FlagSet, name string, options []string, usage string) {
	VarP(f, name, "", options, usage)
}

// VarP is like Var, but accepts a shorthand letter.
func VarP(f *pflag.FlagSet, name, shorthand string, options []string, usage string) {
	flag := New(options...)
	sorted := slices.Sorted(slices.Values(options))
	f.VarP(flag, name, shorthand, fmt.Sprintf("%s\n(must be one of %v)", usage, sorted))
}

// Get returns the value of the enum flag called name.
func Get(f *pflag.FlagSet, name string) (string, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return "", fmt.Errorf("flag accessed but not defined: %s", name)
	}
	if flag.Value.Type() != Type {
		return "", fmt.Errorf("trying to get %s value of flag of type %s", Type, flag.Value.Type())
	}
	return flag.Value.String(), nil
}
