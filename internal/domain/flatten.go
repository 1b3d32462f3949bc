package domain

import m "treejson.dev/pkg/treejson/internal/model"

// Flatten returns a new slice in which every proxy is replaced, recursively,
// by its members. The input is not modified.
func Flatten(nodes []m.Node) []m.Node {
	res := make([]m.Node, 0, len(nodes))
	return appendFlat(res, nodes)
}

func appendFlat(dst, nodes []m.Node) []m.Node {
	for _, n := range nodes {
		if proxy, ok := n.(*m.ProxyNode); ok {
			dst = appendFlat(dst, proxy.Items)
			continue
		}
		dst = append(dst, n)
	}
	return dst
}
