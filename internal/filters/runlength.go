package filters

import "fmt"

// runLengthDecode expands PDF run-length data. A length byte L in 0-127
// copies the next L+1 bytes, 129-255 repeats the next byte 257-L times, and
// 128 ends the data.
func runLengthDecode(data []byte, limit int64) ([]byte, error) {
	out := make([]byte, 0, len(data)*2)
	i := 0
	for i < len(data) {
		l := int(data[i])
		i++
		switch {
		case l == 128:
			return out, nil
		case l < 128:
			n := l + 1
			if i+n > len(data) {
				return nil, fmt.Errorf("literal run of %d bytes truncated at offset %d", n, i)
			}
			out = append(out, data[i:i+n]...)
			i += n
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("repeat run truncated at offset %d", i)
			}
			b := data[i]
			i++
			for j := 0; j < 257-l; j++ {
				out = append(out, b)
			}
		}
		if int64(len(out)) > limit {
			return nil, ErrLimitExceeded
		}
	}
	return out, nil
}
