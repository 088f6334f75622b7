package persist

import (
	"bytes"
	"fmt"

	"github.com/BR1py/itertree-sub001/internal/jsonv"
	"github.com/BR1py/itertree-sub001/itree"
)

var json = jsonv.JSON

const persistFlags = itree.ReadOnlyTree | itree.ReadOnlyValue | itree.Placeholder | itree.LinkRoot | itree.LinkCover

type jsonRecord struct {
	Depth    int       `json:"depth"`
	Tag      *string   `json:"tag,omitempty"`
	Value    any       `json:"value,omitempty"`
	HasValue bool      `json:"hasValue,omitempty"`
	Flags    uint16    `json:"flags,omitempty"`
	Link     *jsonLink `json:"link,omitempty"`
	Slot     *jsonSlot `json:"slot,omitempty"`
}

type jsonLink struct {
	File   string `json:"file,omitempty"`
	Target string `json:"target"`
}

type jsonSlot struct {
	Tag *string `json:"tag,omitempty"`
	Idx int     `json:"idx"`
}

func tagPtr(t itree.Tag) *string {
	if !t.IsSet() {
		return nil
	}
	s := t.Name()
	return &s
}

func ptrTag(s *string) itree.Tag {
	if s == nil {
		return itree.NoTag
	}
	return itree.NewTag(*s)
}

func toJSON(r itree.Record) jsonRecord {
	jr := jsonRecord{
		Depth: r.Depth,
		Tag:   tagPtr(r.Tag),
		Flags: uint16(r.Flags),
	}
	if v, ok := r.Value.Get(); ok {
		jr.Value, jr.HasValue = v, true
	}
	if r.Flags.Has(itree.LinkRoot) {
		jr.Link = &jsonLink{File: r.LinkFile, Target: r.LinkTarget}
	}
	if r.Slot != nil {
		jr.Slot = &jsonSlot{Tag: tagPtr(r.Slot.Tag), Idx: r.Slot.Idx}
	}
	return jr
}

func fromJSON(jr *jsonRecord) (itree.Record, error) {
	f := itree.Flags(jr.Flags)
	if f&^persistFlags != 0 {
		return itree.Record{}, fmt.Errorf("unknown flags %s", f&^persistFlags)
	}
	r := itree.Record{Depth: jr.Depth, Tag: ptrTag(jr.Tag), Flags: f}
	if jr.HasValue {
		r.Value = itree.Some(jsonv.Normalize(jr.Value))
	} else if jr.Value != nil {
		return itree.Record{}, fmt.Errorf("value without hasValue")
	}
	if jr.Link != nil {
		if !f.Has(itree.LinkRoot) {
			return itree.Record{}, fmt.Errorf("link on a node which is not a link root")
		}
		r.LinkFile, r.LinkTarget = jr.Link.File, jr.Link.Target
	}
	if jr.Slot != nil {
		r.Slot = &itree.TagIdx{Tag: ptrTag(jr.Slot.Tag), Idx: jr.Slot.Idx}
	}
	return r, nil
}

func encodeRecords(n *itree.Node) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	i := 0
	for r := range n.Records() {
		d, err := json.Marshal(toJSON(r))
		if err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, r.Tag, err)
		}
		buf.Write(d)
		buf.WriteByte('\n')
		i++
	}
	return buf.Bytes(), nil
}

func decodeRecords(body []byte) (*itree.Node, error) {
	var b itree.Builder
	for i, line := range bytes.Split(body, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		jr := &jsonRecord{}
		if err := json.Unmarshal(line, jr); err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadFormat, i+1, err)
		}
		r, err := fromJSON(jr)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrBadFormat, i+1, err)
		}
		if err := b.Add(r); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadFormat, err)
		}
	}
	root, err := b.Root()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadFormat, err)
	}
	return root, nil
}
