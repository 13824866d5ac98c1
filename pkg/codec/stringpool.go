package codec

// StringPool collects unique strings in first-use order and assigns each its
// offset in the string blob.
type StringPool struct {
	offsets map[string]uint32
	order   []string
	size    uint32
}

// NewStringPool creates an empty pool
func NewStringPool() *StringPool {
	return &StringPool{offsets: make(map[string]uint32)}
}

// Add interns s and returns its blob offset
func (p *StringPool) Add(s string) uint32 {
	if off, ok := p.offsets[s]; ok {
		return off
	}
	off := p.size
	p.offsets[s] = off
	p.order = append(p.order, s)
	p.size += uint32(len(s)) + 1
	return off
}

// Offset returns the blob offset of an interned string. It panics if s was
// never added, which means the writer skipped a field while building the pool.
func (p *StringPool) Offset(s string) uint32 {
	off, ok := p.offsets[s]
	if !ok {
		panic("codec: string not in pool: " + s)
	}
	return off
}

// Len returns the number of unique strings
func (p *StringPool) Len() int {
	return len(p.order)
}

// Size returns the blob length in bytes, terminators included
func (p *StringPool) Size() uint32 {
	return p.size
}

// Strings returns the unique strings in blob order
func (p *StringPool) Strings() []string {
	return append([]string(nil), p.order...)
}

// AppendBlob appends the NUL-terminated strings to dst
func (p *StringPool) AppendBlob(dst []byte) []byte {
	for _, s := range p.order {
		dst = append(dst, s...)
		dst = append(dst, 0)
	}
	return dst
}
