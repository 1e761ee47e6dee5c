package stream

import (
	"bufio"
	"io"
	"strconv"

	"github.com/golang/snappy"

	"github.com/dd0wney/cluso-triest/pkg/triest"
)

// WriteEdges writes edges in the line format read by TextSource.
func WriteEdges(w io.Writer, edges []triest.Edge) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 48)
	for _, e := range edges {
		buf = strconv.AppendUint(buf[:0], uint64(e.U), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendUint(buf, uint64(e.V), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSnappyEdges writes edges through a snappy framing writer, producing
// a file OpenFile reads when named with SnappySuffix.
func WriteSnappyEdges(w io.Writer, edges []triest.Edge) error {
	sw := snappy.NewBufferedWriter(w)
	if err := WriteEdges(sw, edges); err != nil {
		sw.Close()
		return err
	}
	return sw.Close()
}
