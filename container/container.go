// Package container hides an encoded drawing inside a standards
// compliant WebP file. The payload travels in private RIFF chunks that
// any ordinary image viewer skips, so one file doubles as a human
// preview and a lossless vector source.
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/image/riff"
)

// Private chunk tags. NOIT carries the encoded drawing buffer, NMAP the
// UTF-8 map name.
var (
	fccWEBP = riff.FourCC{'W', 'E', 'B', 'P'}
	fccVP8  = riff.FourCC{'V', 'P', '8', ' '}
	fccNOIT = riff.FourCC{'N', 'O', 'I', 'T'}
	fccNMAP = riff.FourCC{'N', 'M', 'A', 'P'}
)

var (
	ErrNotWebP   = errors.New("container: not a WebP file")
	ErrNoDrawing = errors.New("container: no embedded drawing")
)

const chunkHeaderSize = 8

// pixelChunk is the payload of the smallest valid lossy WebP frame, a
// single white pixel. It serves as the image chunk when the caller
// supplies no screenshot to carry the drawing.
var pixelChunk = []byte{
	0x30, 0x01, 0x00, 0x9d, 0x01, 0x2a, 0x01, 0x00,
	0x01, 0x00, 0x02, 0x00, 0x34, 0x25, 0xa4, 0x00,
	0x03, 0x70, 0x00, 0xfe, 0xfb, 0xfd, 0x50, 0x00,
}

type chunk struct {
	id   riff.FourCC
	data []byte
}

// Embed builds a WebP file carrying the drawing buffer and map name in
// private trailing chunks. With base nil the file consists of the
// built-in single-pixel image; otherwise base must itself be a WebP
// (typically the map screenshot) and its chunks are kept, minus any
// drawing a previous embed left behind.
func Embed(drawing []byte, mapName string, base []byte) ([]byte, error) {
	var chunks []chunk
	if base == nil {
		chunks = append(chunks, chunk{fccVP8, pixelChunk})
	} else {
		parsed, err := readChunks(base)
		if err != nil {
			return nil, err
		}
		for _, c := range parsed {
			if c.id == fccNOIT || c.id == fccNMAP {
				continue
			}
			chunks = append(chunks, c)
		}
	}
	chunks = append(chunks,
		chunk{fccNOIT, drawing},
		chunk{fccNMAP, []byte(mapName)},
	)

	// RIFF size: the form type plus every chunk with header and padding.
	size := 4
	for _, c := range chunks {
		size += chunkHeaderSize + len(c.data) + len(c.data)&1
	}

	buf := bytes.NewBuffer(make([]byte, 0, chunkHeaderSize+4+size))
	buf.WriteString("RIFF")
	writeU32(buf, uint32(size))
	buf.Write(fccWEBP[:])
	for _, c := range chunks {
		buf.Write(c.id[:])
		writeU32(buf, uint32(len(c.data)))
		buf.Write(c.data)
		if len(c.data)&1 == 1 {
			buf.WriteByte(0)
		}
	}
	return buf.Bytes(), nil
}

// Extract walks the chunk list of a WebP file and returns the embedded
// drawing buffer and map name. Image chunks are skipped; a file without
// a drawing chunk reports ErrNoDrawing.
func Extract(file []byte) ([]byte, string, error) {
	chunks, err := readChunks(file)
	if err != nil {
		return nil, "", err
	}
	var drawing []byte
	var name string
	found := false
	for _, c := range chunks {
		switch c.id {
		case fccNOIT:
			drawing = c.data
			found = true
		case fccNMAP:
			name = string(c.data)
		}
	}
	if !found {
		return nil, "", ErrNoDrawing
	}
	return drawing, name, nil
}

// readChunks parses the full RIFF chunk list of a WebP file, padding
// rule included.
func readChunks(file []byte) ([]chunk, error) {
	form, r, err := riff.NewReader(bytes.NewReader(file))
	if err != nil || form != fccWEBP {
		return nil, ErrNotWebP
	}
	var chunks []chunk
	for {
		id, n, data, err := r.Next()
		if err == io.EOF {
			return chunks, nil
		}
		if err != nil {
			return nil, fmt.Errorf("container: malformed chunk list: %v", err)
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(data, body); err != nil {
			return nil, fmt.Errorf("container: truncated chunk %q: %v", id[:], err)
		}
		chunks = append(chunks, chunk{id, body})
	}
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var t [4]byte
	binary.LittleEndian.PutUint32(t[:], v)
	buf.Write(t[:])
}
