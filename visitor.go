package trail

// UnexpectedVisitor is a [Visitor] that fails every visit with an
// [UnexpectedTypeError] naming Want as the expected shape. It is useful as
// an embedded base for your own Visitor implementation: override only the
// visits your consumer supports.
type UnexpectedVisitor struct {
	Want string
}

var _ Visitor = UnexpectedVisitor{}

func (u UnexpectedVisitor) unexpected(got string) error {
	want := u.Want
	if want == "" {
		want = "nothing"
	}

	return &UnexpectedTypeError{Want: want, Got: got}
}

func (u UnexpectedVisitor) VisitBool(value bool) (any, error) {
	return nil, u.unexpected("bool")
}

func (u UnexpectedVisitor) VisitInt(value int64) (any, error) {
	return nil, u.unexpected("int")
}

func (u UnexpectedVisitor) VisitUint(value uint64) (any, error) {
	return nil, u.unexpected("uint")
}

func (u UnexpectedVisitor) VisitFloat(value float64) (any, error) {
	return nil, u.unexpected("float")
}

func (u UnexpectedVisitor) VisitString(value string) (any, error) {
	return nil, u.unexpected("string")
}

func (u UnexpectedVisitor) VisitBytes(value []byte) (any, error) {
	return nil, u.unexpected("bytes")
}

func (u UnexpectedVisitor) VisitNil() (any, error) {
	return nil, u.unexpected("nil")
}

func (u UnexpectedVisitor) VisitSome(de Deserializer) (any, error) {
	return nil, u.unexpected("option")
}

func (u UnexpectedVisitor) VisitSeq(seq SeqAccess) (any, error) {
	return nil, u.unexpected("sequence")
}

func (u UnexpectedVisitor) VisitMap(m MapAccess) (any, error) {
	return nil, u.unexpected("map")
}

func (u UnexpectedVisitor) VisitEnum(e EnumAccess) (any, error) {
	return nil, u.unexpected("enum")
}
