// Package metric names and records the statistics produced by a measurement session.
package metric

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-logfmt/logfmt"
)

type metadata map[string]string

// Name identifies a statistic, such as the t value of one cell of the test grid.  Metadata is rendered
// after the name using a modified logfmt, e.g. dudect_t[crop=p50 order=2].  Metadata with an empty value
// renders as an annotation, @key.  Names are immutable.
type Name struct {
	name string
	md   metadata
}

// NewName returns a new name with the associated metadata
func NewName(name string, md map[string]string) Name {
	return Name{name: name, md: copyMetadata(md)}
}

// String marshals the name to a string representation, such as dudect_t[crop=p50 order=2]
func (n Name) String() string {
	md, err := MarshalText(n.md)
	if err != nil {
		md = []byte{}
	}
	return n.name + string(md)
}

// MarshalText will return the metadata encoded as a modified logfmt representation.  Metadata opens with a [
// then is followed by (key, value) pairs k=v in sorted key order, then by annotations starting with @ in
// sorted order.  Close with a ].  Example: [crop=p50 order=2 @winner]
func MarshalText(m metadata) ([]byte, error) {
	if len(m) == 0 {
		return []byte{}, nil
	}
	keys := make([]string, 0, len(m))
	ann := make([]string, 0, len(m))
	for k, v := range m {
		switch v {
		case "":
			ann = append(ann, "@"+k)
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	sort.Strings(ann)

	var b bytes.Buffer
	b.WriteString("[")
	e := logfmt.NewEncoder(&b)
	for _, k := range keys {
		if err := e.EncodeKeyval(k, m[k]); err != nil {
			return nil, fmt.Errorf("failed to encode %s=%s: %v", k, m[k], err)
		}
	}
	if len(keys) > 0 && len(ann) > 0 {
		b.WriteString(" ")
	}
	b.WriteString(strings.Join(ann, " "))
	b.WriteString("]")
	return b.Bytes(), nil
}

func copyMetadata(md map[string]string) metadata {
	out := make(metadata, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
