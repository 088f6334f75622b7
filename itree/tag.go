package itree

import (
	"fmt"
	"reflect"
	"strconv"
)

// Tag identifies a node among its siblings. The zero Tag is NoTag.
type Tag struct {
	name string
	set  bool
}

// NoTag is the tag of untagged nodes.
var NoTag Tag

func NewTag(name string) Tag {
	return Tag{name: name, set: true}
}

func (t Tag) IsSet() bool { return t.set }
func (t Tag) Name() string { return t.name }

func (t Tag) String() string {
	if !t.set {
		return "<notag>"
	}
	return t.name
}

// TagIdx addresses a node by tag and position within the family of
// siblings carrying that tag.
type TagIdx struct {
	Tag Tag
	Idx int
}

func (ti TagIdx) String() string {
	return ti.Tag.String() + "#" + strconv.Itoa(ti.Idx)
}

// Value is the payload slot of a node. The zero Value is NoValue.
type Value struct {
	v   any
	set bool
}

// NoValue is the value of nodes which carry no payload.
var NoValue Value

// Some wraps v as a present value; Some(nil) is a present nil.
func Some(v any) Value {
	return Value{v: v, set: true}
}

func (v Value) Get() (any, bool) { return v.v, v.set }
func (v Value) IsSet() bool { return v.set }

// Any returns the payload, nil when absent.
func (v Value) Any() any { return v.v }

// Equaler is implemented by payloads that define their own equality.
type Equaler interface {
	Equal(other any) bool
}

// Copier is implemented by payloads that need a deep copy when a node is
// copied. Other payloads are copied by assignment.
type Copier interface {
	Copy() any
}

func (v Value) Equal(o Value) bool {
	if v.set != o.set {
		return false
	}
	if !v.set {
		return true
	}
	if e, ok := v.v.(Equaler); ok {
		return e.Equal(o.v)
	}
	return reflect.DeepEqual(v.v, o.v)
}

func (v Value) copy() Value {
	if c, ok := v.v.(Copier); ok {
		return Value{v: c.Copy(), set: v.set}
	}
	return v
}

func (v Value) String() string {
	if !v.set {
		return "<novalue>"
	}
	return fmt.Sprintf("%v", v.v)
}
