package model

// LatestResponses keeps one response per carrier: the one with the later
// SubmittedAt, where a missing timestamp loses to any present one, and the
// higher Version when timestamps are equal or both missing. Carriers come
// out in the order they first appear in rs.
func LatestResponses(rs []*CarrierResponse) []*CarrierResponse {
	out := make([]*CarrierResponse, 0, len(rs))
	pos := make(map[int64]int, len(rs))
	for _, r := range rs {
		if r == nil {
			continue
		}
		i, seen := pos[r.CarrierID]
		if !seen {
			pos[r.CarrierID] = len(out)
			out = append(out, r)
			continue
		}
		if newerResponse(r, out[i]) {
			out[i] = r
		}
	}
	return out
}

func newerResponse(a, b *CarrierResponse) bool {
	switch {
	case a.SubmittedAt != nil && b.SubmittedAt == nil:
		return true
	case a.SubmittedAt == nil && b.SubmittedAt != nil:
		return false
	case a.SubmittedAt != nil && !a.SubmittedAt.Equal(*b.SubmittedAt):
		return a.SubmittedAt.After(*b.SubmittedAt)
	}
	return a.Version > b.Version
}
