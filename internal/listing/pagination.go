package listing

// PageLink is either a page number or a collapsed gap.
type PageLink struct {
	Page    int
	Current bool
	Gap     bool
}

// Links shows the first and last page plus current-1..current+1; everything
// else collapses into gaps.
func Links(current, total int) []PageLink {
	if total < 1 {
		total = 1
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		total = current
	}
	var out []PageLink
	prev := 0
	for p := 1; p <= total; p++ {
		show := p == 1 || p == total || (p >= current-1 && p <= current+1)
		if !show {
			continue
		}
		if prev != 0 && p > prev+1 {
			out = append(out, PageLink{Gap: true})
		}
		out = append(out, PageLink{Page: p, Current: p == current})
		prev = p
	}
	return out
}

// HasPrev and HasNext gate the previous/next controls.
func HasPrev(current int) bool { return current > 1 }

func HasNext(current, total int) bool { return current < total }
