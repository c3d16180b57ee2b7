package gemini

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

// envelopeReader walks the length-prefixed frames of a batchexecute response
// body. Each frame is a JSON array preceded by a line holding its length,
// counted in runes rather than bytes.
type envelopeReader struct {
	r *bufio.Reader
}

func newEnvelopeReader(r io.Reader) *envelopeReader {
	return &envelopeReader{r: bufio.NewReader(r)}
}

// next returns the payload of the next wrb.fr frame, skipping the anti-JSON
// prelude and frames addressed to other receivers. It returns io.EOF once
// the body is exhausted.
func (er *envelopeReader) next() (string, error) {
	for {
		line, err := er.r.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			if err == io.EOF {
				return "", io.EOF
			}
			continue
		}
		if line == ")]}'" {
			continue
		}

		length, convErr := strconv.Atoi(line)
		if convErr != nil {
			continue
		}

		frame, err := er.readRunes(length)
		if err != nil {
			return "", err
		}

		if gjson.GetBytes(frame, "0.0").String() != "wrb.fr" {
			continue
		}
		return gjson.GetBytes(frame, "0.2").String(), nil
	}
}

func (er *envelopeReader) readRunes(n int) ([]byte, error) {
	buf := make([]byte, 0, n)
	for i := 0; i < n; i++ {
		r, _, err := er.r.ReadRune()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		buf = utf8.AppendRune(buf, r)
	}
	return buf, nil
}
