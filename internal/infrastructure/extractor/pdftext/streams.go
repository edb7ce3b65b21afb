package pdftext

import (
	"bytes"
	"compress/zlib"
	"io"
)

var (
	streamKeyword    = []byte("stream")
	endstreamKeyword = []byte("endstream")
)

// InflateStreams finds stream bodies in a raw PDF buffer and returns those that
// decompress as zlib data. Output is capped at limit bytes in total.
func InflateStreams(data []byte, limit int64) [][]byte {
	var out [][]byte
	remaining := limit
	for offset := 0; offset < len(data) && remaining > 0; {
		idx := bytes.Index(data[offset:], streamKeyword)
		if idx < 0 {
			break
		}
		start := offset + idx + len(streamKeyword)
		if bytes.HasSuffix(data[:offset+idx], []byte("end")) {
			offset = start
			continue
		}
		if start < len(data) && data[start] == '\r' {
			start++
		}
		if start < len(data) && data[start] == '\n' {
			start++
		}
		end := bytes.Index(data[start:], endstreamKeyword)
		if end < 0 {
			break
		}
		body := data[start : start+end]
		offset = start + end + len(endstreamKeyword)

		inflated, err := inflate(body, remaining)
		if err != nil || len(inflated) == 0 {
			continue
		}
		remaining -= int64(len(inflated))
		out = append(out, inflated)
	}
	return out
}

func inflate(body []byte, limit int64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, limit))
	if err != nil && len(data) == 0 {
		return nil, err
	}
	return data, nil
}
