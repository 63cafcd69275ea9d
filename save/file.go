package save

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"
)

// Encoding identifies how a save's payload is encoded.
type Encoding uint8

const (
	EncodingText Encoding = iota
	EncodingBinary
)

// String returns the encoding name.
func (e Encoding) String() string {
	if e == EncodingBinary {
		return "binary"
	}
	return "text"
}

var (
	zipMagic     = []byte("PK\x03\x04")
	binaryMarker = []byte("U1\x01\x00")
	savHeader    = []byte("SAV")

	// Compressed saves keep the payload in a member with this name.
	gamestateMember = "gamestate"
)

// File is a fully loaded save payload with its container stripped and its
// encoding detected.
type File struct {
	data []byte
	enc  Encoding
}

// Open loads the save at path. ZIP containers are unwrapped, the gamestate
// member extracted, and the encoding detected.
func Open(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("save: open %q: %w", path, err)
	}
	return FromBytes(data)
}

// Read loads a save from r.
func Read(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("save: read: %w", err)
	}
	return FromBytes(data)
}

// FromBytes loads a save from an in-memory image.
func FromBytes(data []byte) (*File, error) {
	if bytes.HasPrefix(data, zipMagic) {
		inner, err := unzipGamestate(data)
		if err != nil {
			return nil, err
		}
		data = inner
	}
	enc := EncodingText
	if hasBinaryMarker(data) {
		enc = EncodingBinary
	}
	return &File{data: stripSavHeader(data), enc: enc}, nil
}

// Encoding returns the detected payload encoding.
func (f *File) Encoding() Encoding { return f.enc }

// Data returns the raw payload with container and header stripped.
func (f *File) Data() []byte { return f.data }

// Sections returns a forward-only reader over the payload's top-level
// sections. Binary field tokens resolve through res; pass nil for the
// process default.
func (f *File) Sections(res *Resolver) *SectionReader {
	return NewSectionReader(f.data, f.enc, res)
}

func unzipGamestate(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("save: open zip container: %w", err)
	}
	for _, zf := range zr.File {
		if zf.Name != gamestateMember {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("save: open %s member: %w", gamestateMember, err)
		}
		defer rc.Close()
		inner, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("save: extract %s: %w", gamestateMember, err)
		}
		return inner, nil
	}
	return nil, fmt.Errorf("save: zip container has no %s member", gamestateMember)
}

// stripSavHeader drops the checksum header line saves open with. The line
// carries the binary marker when the payload is binary, so detection runs
// on the full image before stripping.
func stripSavHeader(data []byte) []byte {
	if !bytes.HasPrefix(data, savHeader) {
		return data
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[i+1:]
	}
	return data
}

func hasBinaryMarker(data []byte) bool {
	n := len(data)
	if n > 512 {
		n = 512
	}
	return bytes.Contains(data[:n], binaryMarker)
}
