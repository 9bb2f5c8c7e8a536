// Package unit implements units of measure as maps from dimension names to
// integer exponents.
package unit

import (
	"sort"
	"strconv"
	"strings"
)

// Unit is an immutable unit of measure. The zero value is unitless.
type Unit struct {
	exponents map[string]int
	wildcard  bool
}

// None is the unitless unit.
var None = Unit{}

// Any matches every unit. It is only used in type positions.
var Any = Unit{wildcard: true}

// Of returns the unit for a single dimension, such as "ms".
func Of(name string) Unit {
	if name == "" {
		return None
	}
	return Unit{exponents: map[string]int{name: 1}}
}

// New builds a unit from exponents, dropping zero exponents.
func New(exponents map[string]int) Unit {
	u := Unit{exponents: map[string]int{}}
	for k, v := range exponents {
		if v != 0 {
			u.exponents[k] = v
		}
	}
	if len(u.exponents) == 0 {
		return None
	}
	return u
}

// Parse parses a unit written as "m", "m/s", "kg·m/s^2" or "m^2". The
// text "*" is the wildcard unit.
func Parse(text string) Unit {
	switch text {
	case "":
		return None
	case "*":
		return Any
	}
	exps := map[string]int{}
	num, den, _ := strings.Cut(text, "/")
	add := func(part string, sign int) {
		for _, dim := range strings.FieldsFunc(part, func(r rune) bool { return r == '·' || r == '*' }) {
			name, power, found := strings.Cut(dim, "^")
			n := 1
			if found {
				if p, err := strconv.Atoi(power); err == nil {
					n = p
				}
			}
			if name != "" {
				exps[name] += sign * n
			}
		}
	}
	add(num, 1)
	add(den, -1)
	return New(exps)
}

// IsWildcard reports whether the unit matches every unit.
func (u Unit) IsWildcard() bool { return u.wildcard }

// IsUnitless reports whether the unit has no dimensions.
func (u Unit) IsUnitless() bool { return !u.wildcard && len(u.exponents) == 0 }

// Exponent returns the exponent of a dimension.
func (u Unit) Exponent(name string) int { return u.exponents[name] }

// Equal compares units dimension by dimension. Wildcards equal everything.
func (u Unit) Equal(o Unit) bool {
	if u.wildcard || o.wildcard {
		return true
	}
	if len(u.exponents) != len(o.exponents) {
		return false
	}
	for k, v := range u.exponents {
		if o.exponents[k] != v {
			return false
		}
	}
	return true
}

// Product multiplies two units.
func (u Unit) Product(o Unit) Unit {
	if u.wildcard || o.wildcard {
		return Any
	}
	exps := map[string]int{}
	for k, v := range u.exponents {
		exps[k] += v
	}
	for k, v := range o.exponents {
		exps[k] += v
	}
	return New(exps)
}

// Quotient divides u by o.
func (u Unit) Quotient(o Unit) Unit {
	if u.wildcard || o.wildcard {
		return Any
	}
	exps := map[string]int{}
	for k, v := range u.exponents {
		exps[k] += v
	}
	for k, v := range o.exponents {
		exps[k] -= v
	}
	return New(exps)
}

// Power raises the unit to an integer power.
func (u Unit) Power(n int) Unit {
	if u.wildcard {
		return Any
	}
	exps := map[string]int{}
	for k, v := range u.exponents {
		exps[k] = v * n
	}
	return New(exps)
}

// Root takes the nth root of a unit, returning false if an exponent does not
// divide evenly.
func (u Unit) Root(n int) (Unit, bool) {
	if u.wildcard || n == 0 {
		return u, n != 0
	}
	exps := map[string]int{}
	for k, v := range u.exponents {
		if v%n != 0 {
			return None, false
		}
		exps[k] = v / n
	}
	return New(exps), true
}

// String renders the unit canonically: numerator dimensions sorted by name,
// then "/" and denominator dimensions.
func (u Unit) String() string {
	if u.wildcard {
		return "*"
	}
	var num, den []string
	names := make([]string, 0, len(u.exponents))
	for k := range u.exponents {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		v := u.exponents[k]
		switch {
		case v == 1:
			num = append(num, k)
		case v > 1:
			num = append(num, k+"^"+strconv.Itoa(v))
		case v == -1:
			den = append(den, k)
		default:
			den = append(den, k+"^"+strconv.Itoa(-v))
		}
	}
	s := strings.Join(num, "·")
	if len(den) > 0 {
		s += "/" + strings.Join(den, "·")
	}
	return s
}
