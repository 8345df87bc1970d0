package lang

import "scorelang/internal/symtab"

// parseOperatorParams consumes the parameter-setter letters following an
// operator constructor (or a label reference), stopping at a statement
// terminator. A ';' mid-stream starts a composite sub-event continuing the
// same object; parseOperatorParams recurses to parse that continuation's
// own parameters before returning to the caller.
func (p *Parser) parseOperatorParams(op *ParseOperator) {
	owner := op.Event
	for {
		c, ok := p.s.Getc()
		if !ok {
			return
		}
		switch {
		case c == '\n' || c == '\r' || c == '>' || c == ']':
			p.s.Ungetc()
			return
		case c == ' ' || c == '\t':
			continue
		case c == ';':
			op = p.startComposite(owner, op)
			continue
		case c == '|':
			p.s.Ungetc()
			return
		case c == 'a':
			p.parseParam(op, &op.Amp, &op.Amp2, UseAM, UseCAM)
		case c == 'c':
			p.parseParam(op, &op.Pan, nil, UseCarr, UseCarr)
		case c == 'f':
			p.parseParam(op, &op.Freq, &op.Freq2, UseFM, UseFPM)
		case c == 'r':
			if !op.HasFlag(OpNested) {
				p.sink.Errorf(StageParser, CategorySemanticReject, p.s.Line(), p.s.Column(), "relative-frequency ratio 'r' requires a nested (modulator) operator")
			} else {
				op.Freq.Flags |= RampStateRatio | RampGoalRatio
			}
			p.parseParam(op, &op.Freq, &op.Freq2, UseRFM, UseRFM)
		case c == 'p':
			p.parseParam(op, &op.Phase, nil, UsePM, UsePM)
		case c == 't':
			p.parseTime(op)
		case c == 's':
			p.parseSilence(op)
		case c == 'w', c == 'n':
			p.parseSelector(op)
		case c == 'g':
			p.parseGoalOnly(op)
		case c == 'v':
			p.parseParam(op, &op.Amp, nil, UseAM, UseCAM)
		case c == 'l':
			p.parseLineShape(op)
		case c == 'W' || c == 'N' || c == 'L' || c == 'O' || c == 'E':
			// A new event begins; give the byte back to the top-level
			// dispatcher.
			p.s.Ungetc()
			return
		default:
			p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "unexpected parameter letter %q", c)
		}
	}
}

// startComposite closes the current operator's parameter list and opens a
// new sub-event that logically continues the object in place, appended to
// the owner event's CompositeHead chain rather than the main sequence (the
// flattener splices it in later, per C7). Every ';' link of one statement
// goes onto the same owner chain.
func (p *Parser) startComposite(owner *ParseEvent, prev *ParseOperator) *ParseOperator {
	p.nextObjID++
	next := &ParseOperator{ObjID: prev.ObjID, Type: prev.Type, PrevRef: prev, Line: p.s.Line(), Col: p.s.Column()}
	ev := &ParseEvent{RootObj: next, ObjectList: []*ParseOperator{next}, VoiceID: -1}
	next.Event = ev

	if owner.CompositeHead == nil {
		owner.CompositeHead = ev
	} else {
		tail := owner.CompositeHead
		for tail.Next != nil {
			tail = tail.Next
		}
		tail.Next = ev
	}
	owner.RootObj.SetFlag(OpHasComposite)
	return next
}

// parseParam implements the syntactic forms of a parameter:
//   x <num>                 -> sets primary.State (v0)
//   x { c=.. t=.. v=.. }     -> sets primary.Goal (+ optional time, shape)
//   x!<num>                 -> sets secondary.State (v0), if secondary != nil
//   x!{ ... }[ ... ]         -> sets secondary/primary.Goal, opens a sublist
//   x!+[ ... ] / x!~[ ... ] -> opens a nested modulator sublist directly
//
// A "!" ramp-or-num form immediately followed by a bare "[" also opens a
// sublist under normalKind, without the ring/compound distinction that
// "+[" / "~[" make explicit. The plain forms without "!" do not open a
// sublist.
func (p *Parser) parseParam(op *ParseOperator, primary, secondary *Ramp, normalKind, compoundKind UseKind) {
	c, ok := p.s.Getc()
	if !ok {
		return
	}
	if c != '!' {
		p.s.Ungetc()
		p.parseRampForm(primary)
		return
	}
	target := secondary
	if target == nil {
		target = primary
	}

	c2, ok2 := p.s.Getc()
	if !ok2 {
		return
	}
	switch c2 {
	case '+', '~':
		kind := normalKind
		if c2 == '~' {
			kind = compoundKind
		}
		if p.s.Tryc('[') {
			p.parseNestedModList(op, kind)
		}
	case '{':
		p.s.Ungetc()
		p.parseRampForm(target)
		p.maybeOpenBareModList(op, normalKind)
	default:
		p.s.Ungetc()
		val, valOK := p.num.Parse()
		if valOK {
			target.V0 = float32(val)
			target.Flags |= RampState
		}
		p.maybeOpenBareModList(op, normalKind)
	}
}

// maybeOpenBareModList opens a modulator sublist under kind if the next
// byte is "[", matching scenario 3's `p!{...}[ ... ]` form (no ring/normal
// marker needed when a ramp or secondary value already precedes it).
func (p *Parser) maybeOpenBareModList(op *ParseOperator, kind UseKind) {
	if p.s.Tryc('[') {
		p.parseNestedModList(op, kind)
	}
}

// parseRampForm handles both "<num>" (sets State) and "{ c=shape t=time
// v=goal }" (sets Goal, optional Time/shape) forms for r.
func (p *Parser) parseRampForm(r *Ramp) {
	c, ok := p.s.Getc()
	if !ok {
		return
	}
	if c != '{' {
		p.s.Ungetc()
		val, valOK := p.num.Parse()
		if valOK {
			r.V0 = float32(val)
			r.Flags |= RampState
		}
		return
	}
	for {
		kc, ok := p.s.Getc()
		if !ok {
			return
		}
		if kc == '}' {
			return
		}
		if kc == ' ' || kc == '\t' || kc == '\n' || kc == '\r' {
			continue
		}
		if !p.s.Tryc('=') {
			p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "expected '=' in ramp literal")
			continue
		}
		switch kc {
		case 'v':
			if val, ok := p.num.Parse(); ok {
				r.Vt = float32(val)
				r.Flags |= RampGoal
			}
		case 't':
			if val, ok := p.num.Parse(); ok {
				r.TimeMs = uint32(val * 1000)
				r.Flags |= RampTime
			}
		case 'c':
			first, ok := p.s.Getc()
			if !ok {
				continue
			}
			name := p.s.GetIdentifier(first)
			r.Shape = shapeFromName(name)
		default:
			p.num.Parse() // consume and discard unknown key's value
		}
	}
}

func shapeFromName(name string) Shape {
	switch name {
	case "hold":
		return ShapeHold
	case "lin":
		return ShapeLinear
	case "exp":
		return ShapeExp
	case "log":
		return ShapeLog
	default:
		return ShapeLinear
	}
}

func (p *Parser) parseNestedModList(op *ParseOperator, kind UseKind) {
	sub := &ModSublist{Kind: kind}
	depth := 1
	for depth > 0 {
		c, ok := p.s.Getc()
		if !ok {
			p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "unterminated modulator sublist")
			return
		}
		switch {
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == 'W' || c == 'N' || c == 'L' || c == 'O' || c == 'E':
			p.nextObjID++
			modOp := &ParseOperator{ObjID: p.nextObjID, Type: objTypeForLetter(c), Line: p.s.Line(), Col: p.s.Column()}
			modOp.SetFlag(OpNested)
			modOp.Event = op.Event
			op.Event.ObjectList = append(op.Event.ObjectList, modOp)
			p.parseOperatorParams(modOp)
			sub.Ops = append(sub.Ops, modOp)
		}
	}
	op.Mods = append(op.Mods, sub)
}

func (p *Parser) parseTime(op *ParseOperator) {
	val, ok := p.num.Parse()
	if !ok {
		return
	}
	op.Time.Ms = uint32(val * 1000)
	op.Time.Flags |= TimeSet
	if op.Event != nil && op.Event.RootObj == op {
		op.Event.SetFlag(EventVoiceSetDur)
	}
}

func (p *Parser) parseSilence(op *ParseOperator) {
	val, ok := p.num.Parse()
	if !ok {
		return
	}
	op.SilenceMs = uint32(val * 1000)
}

func (p *Parser) parseSelector(op *ParseOperator) {
	first, ok := p.s.Getc()
	if !ok {
		return
	}
	name := p.s.GetIdentifier(first)
	if name == "" {
		return
	}
	typ := symtab.TypeWave
	if op.Type == ObjNoise {
		typ = symtab.TypeNoise
	}
	item, found := p.syms.Lookup(name, typ)
	if !found {
		p.sink.Errorf(StageParser, CategorySemanticReject, p.s.Line(), p.s.Column(), "unknown %s name %q", typ, name)
		return
	}
	op.Selector = item.Payload.NameID
	op.SelectorOK = true
}

func (p *Parser) parseLineShape(op *ParseOperator) {
	first, ok := p.s.Getc()
	if !ok {
		return
	}
	name := p.s.GetIdentifier(first)
	op.Amp.Shape = shapeFromName(name)
}

func (p *Parser) parseGoalOnly(op *ParseOperator) {
	c, ok := p.s.Getc()
	if !ok {
		return
	}
	if c == '{' {
		p.s.Ungetc()
		p.parseRampForm(&op.Amp)
		return
	}
	p.s.Ungetc()
	val, valOK := p.num.Parse()
	if valOK {
		op.Amp.Vt = float32(val)
		op.Amp.Flags |= RampGoal
		if op.Amp.TimeMs == 0 {
			op.Amp.TimeMs = p.DefaultRampMs
		}
	}
}
