package service

// Offset is worker i's starting index in round k: (i*B + k*W*B) mod H
func Offset(i, k, w, b, h int) int {
	if h <= 0 {
		return 0
	}
	return (i*b + k*w*b) % h
}

// Rounds is the number of rounds a worker needs before its offsets repeat: ceil(H/(W*B)), at least 1
func Rounds(h, w, b int) int {
	stride := w * b
	if h <= 0 || stride <= 0 {
		return 1
	}
	return max(1, (h+stride-1)/stride)
}

// BatchAt returns min(b, len(names)) consecutive names starting at off, wrapping
// around the end of the list
func BatchAt(names []string, off, b int) []string {
	h := len(names)
	if h == 0 || b <= 0 {
		return nil
	}
	n := min(b, h)
	out := make([]string, n)
	for j := range n {
		out[j] = names[(off+j)%h]
	}
	return out
}
