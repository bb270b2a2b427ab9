package protocol

// Version is the protocol version as major.minor.
type Version struct {
	Major uint8
	Minor uint8
}

// CurrentVersion is the current protocol version.
var CurrentVersion = Version{Major: 1, Minor: 0}

// Init is the first frame a client receives: the mirror's current HTML
// and the sequence number the next ops frame will carry. RootID is the
// node ID of the container the HTML was serialized from. Tree rebuilds
// that container's children with their server-side node IDs, so later
// ops frames can address them.
type Init struct {
	Version  Version
	ClientID string
	NextSeq  uint64
	RootID   uint64
	HTML     string
	Tree     []Op
}

// EncodeInit encodes an init frame payload.
func EncodeInit(in *Init) []byte {
	e := NewEncoder()
	e.WriteByte(in.Version.Major)
	e.WriteByte(in.Version.Minor)
	e.WriteString(in.ClientID)
	e.WriteUvarint(in.NextSeq)
	e.WriteUvarint(in.RootID)
	e.WriteString(in.HTML)
	e.WriteUvarint(uint64(len(in.Tree)))
	for i := range in.Tree {
		encodeOp(e, &in.Tree[i])
	}
	return e.Bytes()
}

// DecodeInit decodes an init frame payload.
func DecodeInit(data []byte) (*Init, error) {
	d := NewDecoder(data)
	in := &Init{}
	var err error

	if in.Version.Major, err = d.ReadByte(); err != nil {
		return nil, decodeError(err)
	}
	if in.Version.Minor, err = d.ReadByte(); err != nil {
		return nil, decodeError(err)
	}
	if in.ClientID, err = d.ReadString(); err != nil {
		return nil, decodeError(err)
	}
	if in.NextSeq, err = d.ReadUvarint(); err != nil {
		return nil, decodeError(err)
	}
	if in.RootID, err = d.ReadUvarint(); err != nil {
		return nil, decodeError(err)
	}
	if in.HTML, err = d.ReadString(); err != nil {
		return nil, decodeError(err)
	}

	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, decodeError(err)
	}
	if count > 0 {
		in.Tree = make([]Op, count)
		for i := range in.Tree {
			if err := decodeOp(d, &in.Tree[i]); err != nil {
				return nil, err
			}
		}
	}
	return in, nil
}
