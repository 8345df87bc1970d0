package lang

import (
	"scorelang/internal/debug"
	"scorelang/internal/symtab"
)

// Parser implements C5: a recursive-descent parser over nested scopes
// (TOP, GROUP "< >", NEST "[ ]", BIND "@[ ]") producing a parse graph of
// events, operators, and modulator sublists. It dispatches on the next
// meaningful byte the way the spec's single parse_level(use_type,
// scope_kind) function does; Go methods per scope stand in for the switch
// arms to keep each one readable.
type Parser struct {
	s    *Scanner
	syms *symtab.Table
	sink *Sink
	num  *NumParser

	nextObjID int
	labels    map[string]*ParseOperator

	events    []*ParseEvent // main sequence, in parse order
	lastEvent *ParseEvent

	groupStack []*DurationGroup

	AmpMult    float64
	AmpMultSet bool

	endOfScript bool
	pendingLabel string
	// pendingWaitMs accumulates a "\<num>" wait parsed before the event it
	// applies to has been created.
	pendingWaitMs uint32

	// DefaultRampMs is the ramp duration assigned to a bare "g<num>" goal
	// setter with no explicit time (spec §9a's FIXME default), overridable
	// per-compile by internal/projectcfg.
	DefaultRampMs uint32
}

// NewParser wires a Scanner, a symbol table, a diagnostics sink, and the
// named-constant/math-function callbacks the number parser needs.
func NewParser(s *Scanner, syms *symtab.Table, sink *Sink, namedConst NamedConstFunc, mathFn MathFuncLookup) *Parser {
	p := &Parser{
		s:             s,
		syms:          syms,
		sink:          sink,
		labels:        make(map[string]*ParseOperator),
		DefaultRampMs: DefaultRampTimeMs,
	}
	p.num = NewNumParser(s, syms, sink, namedConst, mathFn)
	return p
}

// ParseScript consumes the whole source, returning the main-sequence event
// list (composite chains not yet flattened; see flatten.go). Duration
// groups recorded along the way are reachable through each event's
// DurGroupRef.
func (p *Parser) ParseScript() []*ParseEvent {
	for !p.endOfScript {
		c, ok := p.s.Getc()
		if !ok {
			break
		}
		p.topLevel(c)
	}
	p.sink.trace(debug.ComponentParser, p.s.Line(), p.s.Column(), map[string]interface{}{
		"event_count": len(p.events),
		"label_count": len(p.labels),
	}, "parsed %d top-level event(s)", len(p.events))
	return p.events
}

func (p *Parser) topLevel(c byte) {
	switch {
	case c == '\n' || c == '\r':
		return
	case c == '<':
		p.groupStack = append(p.groupStack, &DurationGroup{})
		return
	case c == '>':
		p.closeGroup()
		return
	case c == '|':
		p.timeSeparator()
		return
	case c == 'Q':
		p.endOfScript = true
		return
	case c == 'S':
		p.parseSettings()
		return
	case c == '\'':
		p.parseLabelBind()
		return
	case c == ':':
		p.parseLabelRef()
		return
	case c == '$':
		p.parseVarAssign()
		return
	case c == '\\':
		p.parseWait()
		return
	case c == 'W' || c == 'N' || c == 'L' || c == 'O' || c == 'E':
		op := p.newOperatorEvent(c)
		p.parseOperatorParams(op)
		return
	case c == '@':
		p.parseBind()
		return
	case c == ' ', c == '\t':
		return
	default:
		p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "unexpected character %q at top level", c)
		return
	}
}

func objTypeForLetter(c byte) ObjectType {
	switch c {
	case 'N':
		return ObjNoise
	case 'L', 'E':
		return ObjLine
	default:
		return ObjWave
	}
}

func (p *Parser) newOperatorEvent(letter byte) *ParseOperator {
	p.nextObjID++
	op := &ParseOperator{ObjID: p.nextObjID, Type: objTypeForLetter(letter), Time: TimeSpec{}, Line: p.s.Line(), Col: p.s.Column()}
	if p.pendingLabel != "" {
		op.Label = p.pendingLabel
		p.labels[p.pendingLabel] = op
		p.pendingLabel = ""
	}
	ev := &ParseEvent{RootObj: op, ObjectList: []*ParseOperator{op}, VoiceID: -1}
	op.Event = ev
	p.appendEvent(ev)
	p.sink.trace(debug.ComponentParser, p.s.Line(), p.s.Column(), map[string]interface{}{
		"obj_id": op.ObjID,
		"letter": string(letter),
		"type":   op.Type,
	}, "new operator object id=%d letter=%c", op.ObjID, letter)
	return op
}

func (p *Parser) appendEvent(ev *ParseEvent) {
	ev.WaitMs += p.pendingWaitMs
	p.pendingWaitMs = 0
	if p.lastEvent != nil {
		p.lastEvent.NextInMain = ev
	}
	p.lastEvent = ev
	p.events = append(p.events, ev)
	if len(p.groupStack) > 0 {
		g := p.groupStack[len(p.groupStack)-1]
		if g.FirstEvent == nil {
			g.FirstEvent = ev
		}
		g.LastEvent = ev
		ev.DurGroupRef = g
	}
}

func (p *Parser) closeGroup() {
	if len(p.groupStack) == 0 {
		p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "unmatched '>'")
		return
	}
	p.groupStack = p.groupStack[:len(p.groupStack)-1]
}

// timeSeparator ends the implicit duration group accumulated since the
// last separator (if any events were recorded without an explicit "< >")
// and opens a fresh one, mirroring the explicit bracket form.
func (p *Parser) timeSeparator() {
	if len(p.groupStack) > 0 {
		p.closeGroup()
	}
	p.groupStack = append(p.groupStack, &DurationGroup{})
}

func (p *Parser) parseLabelBind() {
	first, ok := p.s.Getc()
	if !ok {
		return
	}
	name := p.s.GetIdentifier(first)
	if name == "" {
		p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "expected identifier after '\\''")
		return
	}
	p.pendingLabel = name
	p.sink.trace(debug.ComponentParser, p.s.Line(), p.s.Column(), map[string]interface{}{"label": name}, "bound pending label %q", name)
}

func (p *Parser) parseLabelRef() {
	first, ok := p.s.Getc()
	if !ok {
		return
	}
	name := p.s.GetIdentifier(first)
	if name == "" {
		p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "expected identifier after ':'")
		return
	}
	target, found := p.labels[name]
	if !found {
		p.sink.Errorf(StageParser, CategorySemanticReject, p.s.Line(), p.s.Column(), "undefined label %q", name)
		return
	}
	target.SetFlag(OpLaterUsed)
	target.Event.SetFlag(EventVoiceLaterUsed)

	p.nextObjID++
	op := &ParseOperator{ObjID: target.ObjID, Type: target.Type, PrevRef: target, Line: p.s.Line(), Col: p.s.Column()}
	ev := &ParseEvent{RootObj: op, ObjectList: []*ParseOperator{op}, VoiceID: -1}
	ev.SetFlag(EventAssignVoice)
	op.Event = ev
	p.appendEvent(ev)
	p.labels[name] = op
	p.sink.trace(debug.ComponentParser, p.s.Line(), p.s.Column(), map[string]interface{}{
		"label":  name,
		"obj_id": op.ObjID,
	}, "label reference %q reuses object id=%d", name, op.ObjID)
	p.parseOperatorParams(op)
}

func (p *Parser) parseVarAssign() {
	first, ok := p.s.Getc()
	if !ok {
		return
	}
	name := p.s.GetIdentifier(first)
	if name == "" || !p.s.Tryc('=') {
		p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "malformed variable assignment")
		return
	}
	val, ok := p.num.Parse()
	if !ok {
		p.sink.Errorf(StageParser, CategorySemanticReject, p.s.Line(), p.s.Column(), "expected number in assignment to $%s", name)
		return
	}
	p.syms.Insert(name, symtab.TypeVariable, symtab.Payload{Number: val})
}

func (p *Parser) parseWait() {
	c, ok := p.s.Getc()
	if !ok {
		return
	}
	if c == 't' {
		// "advance by previous duration": the previous event's root
		// operator time isn't resolved yet at parse time (defaults and
		// silence-padding are filled in by the timing pass), so the actual
		// bump is deferred: flag the event and let timeOperator (C6) apply
		// it once that operator's Time.Ms is final.
		if p.lastEvent != nil {
			p.lastEvent.SetFlag(EventAddWaitDuration)
		}
		return
	}
	p.s.Ungetc()
	val, ok := p.num.Parse()
	if !ok {
		p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "expected number after '\\\\'")
		return
	}
	p.bumpNextWait(uint32(val * 1000))
}

// bumpNextWait records that the *next* event parsed should carry an extra
// wait; implemented as a stash consumed on append.
func (p *Parser) bumpNextWait(ms uint32) {
	p.pendingWaitMs += ms
}

func (p *Parser) parseSettings() {
	for {
		c, ok := p.s.Getc()
		if !ok {
			return
		}
		switch {
		case c == '\n' || c == '\r':
			return
		case c == ' ' || c == '\t':
			continue
		case c == 'a':
			if !p.s.Tryc('=') {
				continue
			}
			val, valOK := p.num.Parse()
			if !valOK {
				p.sink.Errorf(StageParser, CategorySemanticReject, p.s.Line(), p.s.Column(), "expected number for setting 'a='")
				continue
			}
			p.AmpMult = val
			p.AmpMultSet = true
		default:
			// Other settings letters are accepted syntactically but not
			// modeled beyond the amplitude multiplier.
			p.s.Tryc('=')
			p.num.Parse()
		}
	}
}

// parseBind handles "@[ … ]": operators defined inside are flagged
// OpMultiple and treated as one object at the parent scope. Full binding
// semantics are out of scope (see DESIGN.md); lowering skips MULTIPLE
// nodes with a diagnostic, per the spec's own open-question resolution.
func (p *Parser) parseBind() {
	if !p.s.Tryc('[') {
		p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "expected '[' after '@'")
		return
	}
	depth := 1
	for depth > 0 {
		c, ok := p.s.Getc()
		if !ok {
			p.sink.Errorf(StageParser, CategorySyntaxError, p.s.Line(), p.s.Column(), "unterminated '@[' binding")
			return
		}
		switch {
		case c == '[':
			depth++
		case c == ']':
			depth--
		case c == 'W' || c == 'N' || c == 'L' || c == 'O' || c == 'E':
			op := p.newOperatorEvent(c)
			op.SetFlag(OpMultiple)
			p.parseOperatorParams(op)
		}
	}
}

