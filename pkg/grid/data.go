package grid

import "fmt"

// Data holds a set of height maps sharing one grid dimension, addressable by
// id or by name.
type Data struct {
	Width  int
	Height int

	maps  []*HeightField
	names map[string]int
}

// NewData returns an empty grid of the given dimension.
func NewData(width, height int) *Data {
	return &Data{
		Width:  width,
		Height: height,
		names:  make(map[string]int),
	}
}

// Size returns Width*Height.
func (d *Data) Size() int {
	return d.Width * d.Height
}

// Reset drops every height map and name.
func (d *Data) Reset() {
	d.maps = nil
	d.names = make(map[string]int)
}

// NumHeightMaps returns the number of height map slots.
func (d *Data) NumHeightMaps() int {
	return len(d.maps)
}

// SetHeightMapNum grows or shrinks the slot list to n. New slots are unallocated.
func (d *Data) SetHeightMapNum(n int) {
	if n < 0 {
		n = 0
	}
	if n <= len(d.maps) {
		d.maps = d.maps[:n]
		return
	}
	d.maps = append(d.maps, make([]*HeightField, n-len(d.maps))...)
}

// HasHeightMap reports whether slot id holds a populated map of the grid size.
func (d *Data) HasHeightMap(id int) bool {
	if id < 0 || id >= len(d.maps) {
		return false
	}
	m := d.maps[id]
	return m.Valid() && m.Width == d.Width && m.Height == d.Height
}

// CreateHeightMap allocates (or re-zeroes) the map in slot id, growing the
// slot list as needed.
func (d *Data) CreateHeightMap(id int) (*HeightField, error) {
	if d.Size() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, d.Width, d.Height)
	}
	if id < 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNoHeightMap, id)
	}
	if id >= len(d.maps) {
		d.SetHeightMapNum(id + 1)
	}
	m := d.maps[id]
	if m == nil {
		m = &HeightField{}
		d.maps[id] = m
	}
	m.Width, m.Height = d.Width, d.Height
	m.Reset()
	return m, nil
}

// AppendHeightMap creates a map in a new slot and returns its id.
func (d *Data) AppendHeightMap() (int, error) {
	id := len(d.maps)
	if _, err := d.CreateHeightMap(id); err != nil {
		return -1, err
	}
	return id, nil
}

// HeightMap returns the map in slot id, or ErrNoHeightMap.
func (d *Data) HeightMap(id int) (*HeightField, error) {
	if !d.HasHeightMap(id) {
		return nil, fmt.Errorf("%w: id %d", ErrNoHeightMap, id)
	}
	return d.maps[id], nil
}

// EnsureHeightMap returns the map in slot id, creating it if missing.
func (d *Data) EnsureHeightMap(id int) (*HeightField, error) {
	if d.HasHeightMap(id) {
		return d.maps[id], nil
	}
	return d.CreateHeightMap(id)
}

// SetName binds a name to a slot id.
func (d *Data) SetName(name string, id int) {
	if d.names == nil {
		d.names = make(map[string]int)
	}
	d.names[name] = id
}

// NamedID returns the slot id bound to name, or -1 if the name is unbound or
// its map is missing.
func (d *Data) NamedID(name string) int {
	id, ok := d.names[name]
	if !ok || !d.HasHeightMap(id) {
		return -1
	}
	return id
}

// Named returns the map bound to name.
func (d *Data) Named(name string) (*HeightField, error) {
	id := d.NamedID(name)
	if id < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoHeightMap, name)
	}
	return d.maps[id], nil
}

// CopyHeightMap copies src into dst, creating dst if missing.
func (d *Data) CopyHeightMap(srcID, dstID int) error {
	src, err := d.HeightMap(srcID)
	if err != nil {
		return err
	}
	dst, err := d.EnsureHeightMap(dstID)
	if err != nil {
		return err
	}
	copy(dst.Values, src.Values)
	return nil
}

// ApplyBlend blends src into slot dstID, creating it if missing.
func (d *Data) ApplyBlend(src *HeightField, dstID int, mode BlendMode) error {
	if !src.Valid() || src.Width != d.Width || src.Height != d.Height {
		return fmt.Errorf("%w: %s vs %dx%d", ErrDimensionMismatch, src, d.Width, d.Height)
	}
	dst, err := d.EnsureHeightMap(dstID)
	if err != nil {
		return err
	}
	return Blend(dst, src, mode)
}
