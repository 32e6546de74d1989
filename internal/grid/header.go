package grid

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// maxLineBytes bounds a single grid row; the scan stops at the first one.
const maxLineBytes = 16 << 20

// ErrInvalidHeader is returned when a file does not start with an Esri ASCII grid header.
var ErrInvalidHeader = errors.New("invalid esri ascii grid header")

// Header is the six-line preamble of an Esri ASCII grid.
type Header struct {
	NCols     int
	NRows     int
	XLL       float64
	YLL       float64
	Centered  bool // XLL/YLL give the centre of the lower-left cell, not its corner
	CellSize  float64
	NoData    float64
	HasNoData bool
}

// Bound returns the grid extent in the grid's own coordinates.
func (h Header) Bound() orb.Bound {
	minX, minY := h.XLL, h.YLL
	if h.Centered {
		minX -= h.CellSize / 2
		minY -= h.CellSize / 2
	}
	return orb.Bound{
		Min: orb.Point{minX, minY},
		Max: orb.Point{minX + float64(h.NCols)*h.CellSize, minY + float64(h.NRows)*h.CellSize},
	}
}

// ReadHeader parses the header of the grid at path without reading cell values.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("open grid: %w", err)
	}
	defer f.Close()

	var (
		h    Header
		seen = make(map[string]bool)
	)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		key := strings.ToLower(fields[0])
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			break // first data row
		}
		if len(fields) != 2 {
			return Header{}, fmt.Errorf("%w: %s: line %q", ErrInvalidHeader, path, sc.Text())
		}
		if err := h.set(key, fields[1]); err != nil {
			return Header{}, fmt.Errorf("%w: %s: %v", ErrInvalidHeader, path, err)
		}
		seen[key] = true
	}
	if err := sc.Err(); err != nil {
		return Header{}, fmt.Errorf("read grid: %w", err)
	}

	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		if !seen[k] {
			return Header{}, fmt.Errorf("%w: %s: missing %s", ErrInvalidHeader, path, k)
		}
	}
	if !(seen["xllcorner"] || seen["xllcenter"]) || !(seen["yllcorner"] || seen["yllcenter"]) {
		return Header{}, fmt.Errorf("%w: %s: missing lower-left origin", ErrInvalidHeader, path)
	}
	if h.NCols <= 0 || h.NRows <= 0 || h.CellSize <= 0 {
		return Header{}, fmt.Errorf("%w: %s: non-positive dimensions", ErrInvalidHeader, path)
	}
	return h, nil
}

func (h *Header) set(key, value string) error {
	switch key {
	case "ncols", "nrows":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if key == "ncols" {
			h.NCols = n
		} else {
			h.NRows = n
		}
		return nil
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	switch key {
	case "xllcorner":
		h.XLL = v
	case "xllcenter":
		h.XLL, h.Centered = v, true
	case "yllcorner":
		h.YLL = v
	case "yllcenter":
		h.YLL, h.Centered = v, true
	case "cellsize":
		h.CellSize = v
	case "nodata_value":
		h.NoData, h.HasNoData = v, true
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}
