package loader

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/botirk38/playersim/embeddings"
)

var npyMagic = []byte("\x93NUMPY")

var (
	descrPattern   = regexp.MustCompile(`'descr'\s*:\s*'([^']*)'`)
	fortranPattern = regexp.MustCompile(`'fortran_order'\s*:\s*(True|False)`)
	shapePattern   = regexp.MustCompile(`'shape'\s*:\s*\(([^)]*)\)`)
)

// ErrUnsupportedNPY is returned for .npy files outside the supported subset:
// little-endian float32 or float64, two dimensions, C order.
var ErrUnsupportedNPY = errors.New("unsupported npy file")

type npyHeader struct {
	descr string
	rows  int
	dim   int
}

// LoadEmbeddings reads a NumPy .npy matrix into an embedding store.
func LoadEmbeddings(path string) (*embeddings.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embeddings: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat embeddings: %w", err)
	}

	store, err := readNPY(bufio.NewReader(f), fi.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// ReadNPY decodes a .npy stream (format versions 1, 2 and 3).
func ReadNPY(r io.Reader) (*embeddings.Store, error) {
	return readNPY(r, -1)
}

// readNPY decodes r. A non-negative size bounds the payload the header may
// declare, so a corrupt shape fails before the matrix is allocated.
func readNPY(r io.Reader, size int64) (*embeddings.Store, error) {
	h, err := readNPYHeader(r)
	if err != nil {
		return nil, err
	}

	if size >= 0 {
		if need := int64(h.rows) * int64(h.dim) * int64(h.itemSize()); need > size {
			return nil, fmt.Errorf("npy payload of %dx%d needs %d bytes, file has %d: %w",
				h.rows, h.dim, need, size, io.ErrUnexpectedEOF)
		}
	}

	data := make([]float64, h.rows*h.dim)
	switch h.descr {
	case "<f8":
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, fmt.Errorf("failed to read float64 payload: %w", err)
		}
	case "<f4":
		buf := make([]float32, len(data))
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
			return nil, fmt.Errorf("failed to read float32 payload: %w", err)
		}
		for i, v := range buf {
			data[i] = float64(v)
		}
	}

	return embeddings.NewStoreFromFlat(data, h.rows, h.dim)
}

func readNPYHeader(r io.Reader) (npyHeader, error) {
	var h npyHeader

	prefix := make([]byte, len(npyMagic)+2)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return h, fmt.Errorf("failed to read npy magic: %w", err)
	}
	if string(prefix[:len(npyMagic)]) != string(npyMagic) {
		return h, fmt.Errorf("%w: bad magic", ErrUnsupportedNPY)
	}

	var headerLen int
	switch major := prefix[len(npyMagic)]; major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return h, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen = int(n)
	case 2, 3:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return h, fmt.Errorf("failed to read npy header length: %w", err)
		}
		headerLen = int(n)
	default:
		return h, fmt.Errorf("%w: format version %d", ErrUnsupportedNPY, major)
	}

	raw := make([]byte, headerLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return h, fmt.Errorf("failed to read npy header: %w", err)
	}
	header := string(raw)

	m := descrPattern.FindStringSubmatch(header)
	if m == nil {
		return h, fmt.Errorf("%w: missing descr", ErrUnsupportedNPY)
	}
	h.descr = m[1]
	if h.descr != "<f4" && h.descr != "<f8" {
		return h, fmt.Errorf("%w: dtype %s", ErrUnsupportedNPY, h.descr)
	}

	if m := fortranPattern.FindStringSubmatch(header); m == nil || m[1] != "False" {
		return h, fmt.Errorf("%w: fortran order", ErrUnsupportedNPY)
	}

	m = shapePattern.FindStringSubmatch(header)
	if m == nil {
		return h, fmt.Errorf("%w: missing shape", ErrUnsupportedNPY)
	}
	var dims []int
	for _, part := range strings.Split(m[1], ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return h, fmt.Errorf("%w: shape %q", ErrUnsupportedNPY, m[1])
		}
		dims = append(dims, n)
	}
	if len(dims) != 2 {
		return h, fmt.Errorf("%w: %d-dimensional array", ErrUnsupportedNPY, len(dims))
	}
	h.rows, h.dim = dims[0], dims[1]
	if h.dim > 0 && h.rows > math.MaxInt/h.dim/h.itemSize() {
		return h, fmt.Errorf("%w: shape %q is too large", ErrUnsupportedNPY, m[1])
	}
	return h, nil
}

func (h npyHeader) itemSize() int {
	if h.descr == "<f4" {
		return 4
	}
	return 8
}
