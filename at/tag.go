package at

// Tag identifies the shape of a module response by its fixed prefix.
type Tag int

const (
	TagNone Tag = iota
	TagAddress
	TagBand
	TagPower
	TagError
	TagFactory
	TagBaudRate
	TagMode
	TagNetworkID
	TagOK
	TagParameter
	TagReceive
	TagUID
	TagVersion
)

// tagPrefixes holds the exact byte sequence of every known response,
// leading '+' included. Tags that carry a value end in '='.
var tagPrefixes = [...]string{
	TagAddress:   "+ADDRESS=",
	TagBand:      "+BAND=",
	TagPower:     "+CRFOP=",
	TagError:     "+ERR=",
	TagFactory:   "+FACTORY",
	TagBaudRate:  "+IPR=",
	TagMode:      "+MODE=",
	TagNetworkID: "+NETWORKID=",
	TagOK:        "+OK",
	TagParameter: "+PARAMETER=",
	TagReceive:   "+RCV=",
	TagUID:       "+UID=",
	TagVersion:   "+VER=",
}

// bySecondByte dispatches on the byte after '+', which is unique across
// the whole tag set.
var bySecondByte [256]Tag

func init() {
	for t, prefix := range tagPrefixes {
		if prefix == "" {
			continue
		}
		if bySecondByte[prefix[1]] != TagNone {
			panic("at: duplicate second byte in tag table: " + prefix)
		}
		bySecondByte[prefix[1]] = Tag(t)
	}
}

// LookupTag returns the tag whose prefix has b as its second byte.
func LookupTag(b byte) (Tag, bool) {
	t := bySecondByte[b]
	return t, t != TagNone
}

// Prefix returns the exact byte sequence of the tag.
func (t Tag) Prefix() string {
	if t <= TagNone || int(t) >= len(tagPrefixes) {
		return ""
	}
	return tagPrefixes[t]
}

// HasValue reports whether the tag is followed by =value.
func (t Tag) HasValue() bool {
	p := t.Prefix()
	return p != "" && p[len(p)-1] == '='
}

func (t Tag) String() string {
	p := t.Prefix()
	if p == "" {
		return "NONE"
	}
	if t.HasValue() {
		return p[1 : len(p)-1]
	}
	return p[1:]
}
