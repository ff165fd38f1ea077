package decompose

// Stitch joins per-cluster paths across the recorded cut edges.
//
// A cut edge u->v joins the path ending at u to the path starting at v.
// Joins are applied greedily in cut-edge order, each path consumed at
// most once on each side, so the result is deterministic. Paths that
// find no partner pass through unchanged, in their input order
func Stitch(paths [][]string, cutEdges []Edge) [][]string {
	merged := make([][]string, 0, len(paths))
	for _, p := range paths {
		if len(p) > 0 {
			merged = append(merged, append([]string(nil), p...))
		}
	}

	byHead := make(map[string]int)
	byTail := make(map[string]int)
	reindex := func() {
		byHead = make(map[string]int, len(merged))
		byTail = make(map[string]int, len(merged))
		for i, p := range merged {
			if p == nil {
				continue
			}
			// first writer wins so joins stay deterministic
			if _, ok := byHead[p[0]]; !ok {
				byHead[p[0]] = i
			}
			if _, ok := byTail[p[len(p)-1]]; !ok {
				byTail[p[len(p)-1]] = i
			}
		}
	}

	for {
		reindex()
		joined := false
		for _, e := range cutEdges {
			ti, ok := byTail[e.From]
			if !ok {
				continue
			}
			hi, ok := byHead[e.To]
			if !ok || ti == hi {
				continue
			}
			merged[ti] = append(merged[ti], merged[hi]...)
			merged[hi] = nil
			joined = true
			break
		}
		if !joined {
			break
		}
	}

	out := make([][]string, 0, len(merged))
	for _, p := range merged {
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}
