package packet

// MetaType is the 3-bit value type stored in a metadata entry header.
type MetaType byte

const (
	MetaByte     MetaType = 0
	MetaShort    MetaType = 1
	MetaInt      MetaType = 2
	MetaFloat    MetaType = 3
	MetaString   MetaType = 4
	MetaSlot     MetaType = 5
	MetaPosition MetaType = 6
	MetaRotation MetaType = 7
)

const (
	metadataEnd    = 0x7F
	maxStringBytes = 32767 * 4
)

// Common entity metadata indices for protocol 47.
const (
	MetaIndexFlags          byte = 0 // byte bitfield, 0x20 = invisible
	MetaIndexCustomName     byte = 2 // string
	MetaIndexAlwaysShowName byte = 3 // byte
	MetaIndexHealth         byte = 6 // float, living entities
)

// EntityFlagInvisible is bit 5 of the flags byte at MetaIndexFlags.
const EntityFlagInvisible byte = 0x20

type metaEntry struct {
	index byte
	typ   MetaType
	value any
}

// Metadata is an ordered list of entity metadata entries. Setting an index
// that is already present replaces its value in place.
type Metadata struct {
	entries []metaEntry
}

func NewMetadata() *Metadata {
	return &Metadata{entries: make([]metaEntry, 0, 4)}
}

func (m *Metadata) set(index byte, typ MetaType, v any) *Metadata {
	index &= 0x1F
	for i := range m.entries {
		if m.entries[i].index == index {
			m.entries[i] = metaEntry{index: index, typ: typ, value: v}
			return m
		}
	}
	m.entries = append(m.entries, metaEntry{index: index, typ: typ, value: v})
	return m
}

func (m *Metadata) SetByte(index byte, v byte) *Metadata {
	return m.set(index, MetaByte, v)
}

func (m *Metadata) SetShort(index byte, v int16) *Metadata {
	return m.set(index, MetaShort, v)
}

func (m *Metadata) SetInt(index byte, v int32) *Metadata {
	return m.set(index, MetaInt, v)
}

func (m *Metadata) SetFloat(index byte, v float32) *Metadata {
	return m.set(index, MetaFloat, v)
}

func (m *Metadata) SetString(index byte, v string) *Metadata {
	return m.set(index, MetaString, v)
}

// Len returns the number of entries.
func (m *Metadata) Len() int {
	return len(m.entries)
}

// Get returns the value stored at index.
func (m *Metadata) Get(index byte) (any, bool) {
	for _, e := range m.entries {
		if e.index == index {
			return e.value, true
		}
	}
	return nil, false
}

// Indices returns the entry indices in write order.
func (m *Metadata) Indices() []byte {
	out := make([]byte, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.index
	}
	return out
}

// WriteMetadata writes every entry followed by the 0x7F terminator.
// Header byte: (type << 5) | (index & 0x1F).
func (w *Writer) WriteMetadata(m *Metadata) {
	if m != nil {
		for _, e := range m.entries {
			w.WriteUint8(byte(e.typ)<<5 | e.index)
			switch e.typ {
			case MetaByte:
				w.WriteUint8(e.value.(byte))
			case MetaShort:
				w.WriteInt16(e.value.(int16))
			case MetaInt:
				w.WriteInt32(e.value.(int32))
			case MetaFloat:
				w.WriteFloat32(e.value.(float32))
			case MetaString:
				w.WriteString(e.value.(string))
			}
		}
	}
	w.WriteUint8(metadataEnd)
}
