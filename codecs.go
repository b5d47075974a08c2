package codec

// Codecs maps content types to codecs, so a receiver can pick the codec a
// sender named in its message metadata.
type Codecs struct {
	byType map[string]Codec
}

// NewCodecs constructs a set preloaded with the codecs that don't need
// initialization: a fresh ZCodec, MsgPack and Proto. CBOR can be added
// explicitly via Register.
func NewCodecs() *Codecs {
	r := &Codecs{byType: make(map[string]Codec)}
	r.Register(NewZCodec())
	r.Register(MsgPack{})
	r.Register(Proto())
	return r
}

// Register adds c, replacing any codec with the same content type.
func (r *Codecs) Register(c Codec) { r.byType[c.ContentType()] = c }

// Get returns the codec for contentType.
func (r *Codecs) Get(contentType string) (Codec, bool) {
	c, ok := r.byType[contentType]
	return c, ok
}
