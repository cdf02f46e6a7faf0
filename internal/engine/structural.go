package engine

// ObjectState tracks the position inside one object so that NextKey can
// enforce separators: none before the first member, one between members.
type ObjectState struct {
	started bool
}

// BeginObject consumes '{'.
func (p *Parser) BeginObject() error {
	c, ok := p.PeekSignificant()
	if !ok {
		return p.eof("expected object")
	}
	if c != '{' {
		return p.unexpected(c, "object")
	}
	p.rem = p.rem[1:]
	return nil
}

// EndObject consumes '}'.
func (p *Parser) EndObject() error { return p.expect('}') }

// NextKey reads the next member key and its ':' separator. more is false
// when the object has no further members; the closing '}' is left for
// EndObject. The returned key is only valid until the next string is read.
func (p *Parser) NextKey(st *ObjectState) (key []byte, more bool, err error) {
	c, ok := p.PeekSignificant()
	if !ok {
		return nil, false, p.eof("unterminated object")
	}
	if c == '}' {
		return nil, false, nil
	}
	if st.started {
		if c != ',' {
			return nil, false, p.fail(KindSyntax, "expected ',' or '}' after object member, found %q", c)
		}
		p.rem = p.rem[1:]
		if c, ok = p.PeekSignificant(); !ok {
			return nil, false, p.eof("expected object key")
		}
	}
	if c != '"' {
		return nil, false, p.fail(KindSyntax, "expected object key, found %q", c)
	}
	p.rem = p.rem[1:]
	if err := p.readString(); err != nil {
		return nil, false, err
	}
	if err := p.expect(':'); err != nil {
		return nil, false, err
	}
	st.started = true
	return p.str.Bytes(), true, nil
}

// BeginArray consumes '['. empty reports an immediately following ']',
// which is consumed too.
func (p *Parser) BeginArray() (empty bool, err error) {
	c, ok := p.PeekSignificant()
	if !ok {
		return false, p.eof("expected array")
	}
	if c != '[' {
		return false, p.unexpected(c, "array")
	}
	p.rem = p.rem[1:]
	return p.TrimExpect(']'), nil
}

// ArrayNext consumes the separator after an element: ',' continues and
// ']' ends the array.
func (p *Parser) ArrayNext() (more bool, err error) {
	c, ok := p.PeekSignificant()
	if !ok {
		return false, p.eof("unterminated array")
	}
	switch c {
	case ',':
		p.rem = p.rem[1:]
		return true, nil
	case ']':
		p.rem = p.rem[1:]
		return false, nil
	}
	return false, p.fail(KindSyntax, "expected ',' or ']' after array element, found %q", c)
}

// ReadBool reads true or false.
func (p *Parser) ReadBool() (bool, error) {
	c, ok := p.PeekSignificant()
	if !ok {
		return false, p.eof("expected bool")
	}
	switch c {
	case 't':
		return true, p.expectLiteral("true")
	case 'f':
		return false, p.expectLiteral("false")
	}
	return false, p.unexpected(c, "bool")
}

// ReadNull reads null.
func (p *Parser) ReadNull() error {
	c, ok := p.PeekSignificant()
	if !ok {
		return p.eof("expected null")
	}
	if c != 'n' {
		return p.unexpected(c, "null")
	}
	return p.expectLiteral("null")
}

// IgnoreAny skips one value of any kind. Each container level costs one
// unit of maxDepth and every value needs at least one, so nesting beyond
// the budget fails instead of recursing further.
func (p *Parser) IgnoreAny(maxDepth int) error {
	if maxDepth <= 0 {
		return p.fail(KindDepth, "maximum nesting depth exceeded")
	}
	c, ok := p.PeekSignificant()
	if !ok {
		return p.eof("expected value")
	}
	switch c {
	case '{':
		return p.IgnoreObject(maxDepth - 1)
	case '[':
		return p.IgnoreArray(maxDepth - 1)
	case '"':
		p.rem = p.rem[1:]
		return p.skipString()
	case 't':
		return p.expectLiteral("true")
	case 'f':
		return p.expectLiteral("false")
	case 'n':
		return p.expectLiteral("null")
	}
	if c == '-' || isDigit(c) {
		_, err := p.ReadNumber()
		return err
	}
	return p.fail(KindSyntax, "unexpected %q, expected a value", c)
}

// IgnoreObject skips an object whose member values may use maxDepth.
func (p *Parser) IgnoreObject(maxDepth int) error {
	if err := p.BeginObject(); err != nil {
		return err
	}
	var st ObjectState
	if err := p.SkipRest(&st, maxDepth); err != nil {
		return err
	}
	return p.EndObject()
}

// IgnoreArray skips an array whose elements may use maxDepth.
func (p *Parser) IgnoreArray(maxDepth int) error {
	empty, err := p.BeginArray()
	if err != nil || empty {
		return err
	}
	for {
		if err := p.IgnoreAny(maxDepth); err != nil {
			return err
		}
		more, err := p.ArrayNext()
		if err != nil || !more {
			return err
		}
	}
}

// SkipToKey reads members, skipping their values, until key is found. On a
// match the cursor is left at the member's value. found is false when the
// object ended first.
func (p *Parser) SkipToKey(st *ObjectState, maxDepth int, key string) (found bool, err error) {
	for {
		k, more, err := p.NextKey(st)
		if err != nil || !more {
			return false, err
		}
		if string(k) == key {
			return true, nil
		}
		if err := p.IgnoreAny(maxDepth); err != nil {
			return false, err
		}
	}
}

// SkipRest skips all remaining members, leaving the closing '}'.
func (p *Parser) SkipRest(st *ObjectState, maxDepth int) error {
	for {
		_, more, err := p.NextKey(st)
		if err != nil || !more {
			return err
		}
		if err := p.IgnoreAny(maxDepth); err != nil {
			return err
		}
	}
}
