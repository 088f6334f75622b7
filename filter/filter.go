// Package filter provides reusable node filters for traversal, Get and the
// flag operations of package itree.
package filter

import (
	"fmt"
	"path"
	"reflect"

	"github.com/BR1py/itertree-sub001/itree"
)

// Tag matches nodes tagged name.
func Tag(name string) itree.Filter {
	t := itree.NewTag(name)
	return func(n *itree.Node) bool { return n.Tag() == t }
}

// Untagged matches nodes without tag.
func Untagged() itree.Filter {
	return func(n *itree.Node) bool { return !n.Tag().IsSet() }
}

// TagGlob matches tagged nodes whose tag matches pattern, in the syntax of
// path.Match.
func TagGlob(pattern string) (itree.Filter, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("tag pattern %q: %w", pattern, err)
	}
	return func(n *itree.Node) bool {
		t := n.Tag()
		if !t.IsSet() {
			return false
		}
		ok, _ := path.Match(pattern, t.Name())
		return ok
	}, nil
}

// Value matches nodes whose value equals v.
func Value(v any) itree.Filter {
	want := itree.Some(v)
	return func(n *itree.Node) bool { return n.Value().Equal(want) }
}

// HasValue matches nodes carrying a value.
func HasValue() itree.Filter {
	return func(n *itree.Node) bool { return n.Value().IsSet() }
}

// ValueGlob matches nodes with a string value matching pattern.
func ValueGlob(pattern string) (itree.Filter, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("value pattern %q: %w", pattern, err)
	}
	return func(n *itree.Node) bool {
		s, ok := n.Value().Any().(string)
		if !ok {
			return false
		}
		m, _ := path.Match(pattern, s)
		return m
	}, nil
}

// ValueIn matches nodes with a numeric value in [lo, hi]. Other values never
// match.
func ValueIn(lo, hi float64) itree.Filter {
	return func(n *itree.Node) bool {
		f, ok := toFloat(n.Value().Any())
		return ok && f >= lo && f <= hi
	}
}

func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// HasKey matches nodes whose value is a map with key.
func HasKey(key any) itree.Filter {
	return func(n *itree.Node) bool {
		v := n.Value().Any()
		if v == nil {
			return false
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map {
			return false
		}
		k := reflect.ValueOf(key)
		if !k.IsValid() || !k.Type().AssignableTo(rv.Type().Key()) {
			return false
		}
		return rv.MapIndex(k).IsValid()
	}
}

// HasFlags matches nodes having all flags of mask.
func HasFlags(mask itree.Flags) itree.Filter {
	return func(n *itree.Node) bool { return n.Flags().Has(mask) }
}

// Linked matches items materialized by a link.
func Linked() itree.Filter {
	return func(n *itree.Node) bool { return n.IsLinked() }
}

func Not(f itree.Filter) itree.Filter {
	return func(n *itree.Node) bool { return f != nil && !f(n) }
}

// And matches nodes passing every filter. A nil filter passes.
func And(fs ...itree.Filter) itree.Filter {
	return func(n *itree.Node) bool {
		for _, f := range fs {
			if f != nil && !f(n) {
				return false
			}
		}
		return true
	}
}

// Or matches nodes passing any filter. A nil filter passes.
func Or(fs ...itree.Filter) itree.Filter {
	return func(n *itree.Node) bool {
		for _, f := range fs {
			if f == nil || f(n) {
				return true
			}
		}
		return false
	}
}
