package filter

// PathAt returns the item path shown at position sel of list.
func PathAt(items []string, list []int, sel int) (string, bool) {
	if sel < 0 || sel >= len(list) {
		return "", false
	}
	idx := list[sel]
	if idx < 0 || idx >= len(items) {
		return "", false
	}
	return items[idx], true
}

// IndexOf returns the position of path in list.
func IndexOf(items []string, list []int, path string) (int, bool) {
	for pos, idx := range list {
		if idx >= 0 && idx < len(items) && items[idx] == path {
			return pos, true
		}
	}
	return 0, false
}

// Clamp keeps sel inside [0, n-1], or 0 for an empty list.
func Clamp(sel, n int) int {
	if n <= 0 || sel < 0 {
		return 0
	}
	if sel >= n {
		return n - 1
	}
	return sel
}

// Reselect maps a selection in oldList onto newList. The selected path keeps
// its selection when it survives; otherwise the numeric index is clamped.
func Reselect(items []string, oldList []int, sel int, newList []int) int {
	if path, ok := PathAt(items, oldList, sel); ok {
		if pos, found := IndexOf(items, newList, path); found {
			return pos
		}
	}
	return Clamp(sel, len(newList))
}

// WindowOffset returns the first visible row so that selected stays inside a
// window of height rows.
func WindowOffset(selected, offset, height, total int) int {
	if total == 0 || height <= 0 {
		return 0
	}
	if offset > total-1 {
		offset = total - 1
	}
	if offset < 0 {
		offset = 0
	}
	if selected < offset {
		offset = selected
	} else if selected >= offset+height {
		offset = selected + 1 - height
	}
	if maxOffset := total - height; maxOffset < 0 {
		offset = 0
	} else if offset > maxOffset {
		offset = maxOffset
	}
	return offset
}

// VisiblePaths returns the item paths in the window [offset, offset+height).
func VisiblePaths(items []string, list []int, offset, height int) []string {
	if len(list) == 0 || height <= 0 || offset >= len(list) {
		return nil
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + height
	if end > len(list) {
		end = len(list)
	}
	out := make([]string, 0, end-offset)
	for _, idx := range list[offset:end] {
		if idx >= 0 && idx < len(items) {
			out = append(out, items[idx])
		}
	}
	return out
}
