package split

import (
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/linetap/linetap/internal/pool"
)

// splitAll runs the splitter over the given fragmentation of input and
// collects every line including the flushed remainder.
func splitAll(chunks [][]byte) []string {
	s := New(0)
	var lines []string
	for _, chunk := range chunks {
		for _, buf := range s.Feed(chunk) {
			lines = append(lines, buf.String())
			pool.RecycleBytesBuffer(buf)
		}
	}
	if buf, ok := s.Flush(); ok {
		lines = append(lines, buf.String())
		pool.RecycleBytesBuffer(buf)
	}
	return lines
}

// inputGen draws byte sequences dense in terminators so that \r\n pairs,
// runs of empty lines and boundary-straddling terminators all show up.
func inputGen() *rapid.Generator[[]byte] {
	return rapid.SliceOf(rapid.SampledFrom([]byte{'a', 'b', 'c', '\n', '\r'}))
}

// fragment cuts input into consecutive chunks at arbitrary offsets,
// including offsets that split a \r\n pair.
func fragment(t *rapid.T, input []byte) [][]byte {
	var chunks [][]byte
	for pos := 0; pos < len(input); {
		n := rapid.IntRange(0, len(input)-pos).Draw(t, "chunkLen")
		if n == 0 {
			chunks = append(chunks, nil) // empty delivery
			n = 1
		}
		chunks = append(chunks, input[pos:pos+n])
		pos += n
	}
	return chunks
}

// TestChunkBoundaryInvariance verifies that splitting a fixed input yields
// the same line sequence regardless of how the input is fragmented.
func TestChunkBoundaryInvariance(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := inputGen().Draw(rt, "input")

		whole := splitAll([][]byte{input})
		fragmented := splitAll(fragment(rt, input))

		if len(whole) != len(fragmented) {
			rt.Fatalf("line count differs: whole=%q fragmented=%q", whole, fragmented)
		}
		for i := range whole {
			if whole[i] != fragmented[i] {
				rt.Fatalf("line %d differs: whole=%q fragmented=%q", i, whole[i], fragmented[i])
			}
		}
	})
}

// TestIdempotentReconstruction verifies that re-joining the split lines with
// \n reproduces the input with all terminators normalized to \n.
func TestIdempotentReconstruction(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := inputGen().Draw(rt, "input")

		lines := splitAll([][]byte{input})

		normalized := strings.ReplaceAll(string(input), "\r\n", "\n")
		normalized = strings.ReplaceAll(normalized, "\r", "\n")

		rejoined := strings.Join(lines, "\n")
		if strings.HasSuffix(normalized, "\n") {
			rejoined += "\n"
		}
		if rejoined != normalized {
			rt.Fatalf("reconstruction mismatch: input=%q lines=%q rejoined=%q normalized=%q",
				input, lines, rejoined, normalized)
		}
	})
}

// TestNoTerminatorInLines verifies the partial line invariant: no produced
// line ever contains a terminator byte.
func TestNoTerminatorInLines(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := inputGen().Draw(rt, "input")

		for _, line := range splitAll(fragment(rt, input)) {
			if strings.ContainsAny(line, "\r\n") {
				rt.Fatalf("line %q contains a terminator", line)
			}
		}
	})
}
