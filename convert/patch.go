package convert

import (
	"errors"
	"fmt"

	"github.com/BR1py/itertree-sub001/internal/jsonv"
	"github.com/BR1py/itertree-sub001/itree"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ErrValue is returned when a value cannot be patched.
var ErrValue = errors.New("cannot patch value")

// PatchValue applies the RFC 6902 JSON patch to the value of n. A node
// without value is patched as null.
func PatchValue(n *itree.Node, patch []byte) error {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValue, err)
	}
	return editValue(n, func(doc []byte) ([]byte, error) {
		return ops.Apply(doc)
	})
}

// MergeValue applies the RFC 7386 merge patch to the value of n.
func MergeValue(n *itree.Node, patch []byte) error {
	return editValue(n, func(doc []byte) ([]byte, error) {
		return jsonpatch.MergePatch(doc, patch)
	})
}

func editValue(n *itree.Node, edit func([]byte) ([]byte, error)) error {
	doc, err := jsonv.JSON.Marshal(n.Value().Any())
	if err != nil {
		return fmt.Errorf("%w: value of %s: %w", ErrValue, n, err)
	}
	out, err := edit(doc)
	if err != nil {
		return fmt.Errorf("%w: value of %s: %w", ErrValue, n, err)
	}
	v, err := jsonv.Decode(out)
	if err != nil {
		return fmt.Errorf("%w: patched value of %s: %w", ErrValue, n, err)
	}
	return n.SetValue(v)
}
