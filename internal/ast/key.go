package ast

import (
	"strconv"
	"strings"

	"github.com/zeebo/xxh3"
)

// Key returns n's stable key. Keys are derived from the node's kind, the
// names of its enclosing definitions, its text without leading whitespace
// and its ordinal among earlier nodes sharing all three, so an unrelated
// edit elsewhere in the source leaves the key unchanged. Streams and
// reactions are keyed this way across re-parses.
func (t *Tree) Key(n Node) string {
	t.keysOnce.Do(t.computeKeys)
	return t.keys[n]
}

func (t *Tree) computeKeys() {
	t.keys = make(map[Node]string, len(t.order))
	seen := map[string]int{}
	for _, n := range t.order {
		if _, ok := n.(*Token); ok {
			continue
		}
		var path []string
		for _, d := range t.EnclosingDefinitions(n) {
			path = append(path, strings.Join(d.Names(), ","))
		}
		h := xxh3.New()
		h.WriteString(n.Kind().String())
		h.WriteString("\x00")
		h.WriteString(strings.Join(path, "/"))
		h.WriteString("\x00")
		h.WriteString(Text(n))
		sum := h.Sum64()
		base := strconv.FormatUint(sum, 16)
		ordinal := seen[base]
		seen[base]++
		t.keys[n] = base + "." + strconv.Itoa(ordinal)
	}
}
