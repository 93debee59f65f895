package entity

// MergeByID combines a remote and a local collection of the same kind.
//
// Remote entries are inserted first, then local entries overwrite or append,
// so the local side always wins on conflicting ids. This reflects the sync
// contract: a local mutation that has not been confirmed remotely must not be
// clobbered by a stale remote read.
//
// The result preserves remote order for records present remotely and appends
// local-only records in local order.
func MergeByID(remote, local []Record) []Record {
	byID := make(map[string]Record, len(remote)+len(local))
	order := make([]string, 0, len(remote)+len(local))

	for _, r := range remote {
		if _, seen := byID[r.ID]; !seen {
			order = append(order, r.ID)
		}
		byID[r.ID] = r
	}
	for _, l := range local {
		if _, seen := byID[l.ID]; !seen {
			order = append(order, l.ID)
		}
		byID[l.ID] = l
	}

	merged := make([]Record, 0, len(order))
	for _, id := range order {
		merged = append(merged, byID[id])
	}
	return merged
}
