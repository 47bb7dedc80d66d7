package main

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	gzipMagic = []byte{0x1F, 0x8B}
)

// parseHex accepts hex with optional 0x prefixes and any mix of spaces,
// colons, commas and newlines between bytes.
func parseHex(s string) ([]byte, error) {
	var b strings.Builder
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ':' || r == ','
	}) {
		tok = strings.TrimPrefix(strings.TrimPrefix(tok, "0x"), "0X")
		if len(tok)%2 == 1 {
			tok = "0" + tok
		}
		b.WriteString(tok)
	}
	data, err := hex.DecodeString(b.String())
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return data, nil
}

// readBinary reads a raw capture from path ("-" for stdin), transparently
// decompressing zstd and gzip streams.
func readBinary(path string, stdin io.Reader) ([]byte, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return decompress(r)
}

func decompress(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))

	switch {
	case bytes.HasPrefix(head, zstdMagic):
		dec, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		return readAll(dec, "zstd")
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		return readAll(zr, "gzip")
	default:
		return readAll(br, "input")
	}
}

func readAll(r io.Reader, what string) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", what, err)
	}
	return data, nil
}

// readRecordInput returns the bytes to decode. Hex arguments win over --in.
func readRecordInput(args []string, in string, stdin io.Reader) ([]byte, error) {
	switch {
	case len(args) > 0:
		return parseHex(strings.Join(args, " "))
	case in != "":
		return readBinary(in, stdin)
	default:
		return nil, fmt.Errorf("no input: pass hex bytes or --in <file>")
	}
}
