package itm

// lpformat: reader and writer for the CPLEX-style LP text format.
//
// The reader is a token-stack parser: lines split on whitespace feed a
// deque of tokens, and the readers below peel characters off the front
// token so that glued input such as "2x1<=3" parses the same as
// "2 x1 <= 3". Lines whose first non-blank character is a backslash are
// comments. The coefficient class of the constraint matrix ({0,1},
// {-1,0,1} or Z) is inferred on the fly and stored on the problem.

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const maxVariables = math.MaxInt32

// lpStack is the token deque with position tracking.
type lpStack struct {
	scanner *bufio.Scanner
	tokens  []string
	lines   []int
	columns []int

	line   int
	column int

	cache            map[string]int
	constraintID     int
	coefficientClass int
}

func newLpStack(r io.Reader) *lpStack {
	return &lpStack{
		scanner: bufio.NewScanner(r),
		cache:   make(map[string]int),
	}
}

func (s *lpStack) failf(tag FileFormatTag, token string) error {
	return &FileFormatError{
		Tag:    tag,
		Line:   s.line,
		Column: s.column,
		Token:  token,
	}
}

// fill reads lines until at least one token is buffered or input ends.
func (s *lpStack) fill() {
	for len(s.tokens) == 0 && s.scanner.Scan() {
		s.line++
		text := s.scanner.Text()

		trimmed := strings.TrimSpace(text)
		if trimmed == "" || trimmed[0] == '\\' {
			continue
		}

		col := 0
		for col < len(text) {
			for col < len(text) && isSpace(text[col]) {
				col++
			}
			start := col
			for col < len(text) && !isSpace(text[col]) {
				col++
			}
			if col > start {
				s.tokens = append(s.tokens, text[start:col])
				s.lines = append(s.lines, s.line)
				s.columns = append(s.columns, start+1)
			}
		}
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func (s *lpStack) empty() bool {
	s.fill()
	return len(s.tokens) == 0
}

// peek returns the first character of the next token, or -1 at end of
// input.
func (s *lpStack) peek() int {
	if s.empty() {
		return -1
	}
	return int(s.tokens[0][0])
}

func (s *lpStack) top() (string, error) {
	if s.empty() {
		return "", s.failf(BadEndOfFile, "")
	}
	s.line = s.lines[0]
	s.column = s.columns[0]
	return s.tokens[0], nil
}

func (s *lpStack) pop() (string, error) {
	tok, err := s.top()
	if err != nil {
		return "", err
	}
	s.tokens = s.tokens[1:]
	s.lines = s.lines[1:]
	s.columns = s.columns[1:]
	return tok, nil
}

// substrFront consumes the first i characters of the front token.
func (s *lpStack) substrFront(i int) {
	if len(s.tokens) == 0 {
		return
	}
	if len(s.tokens[0]) > i {
		s.tokens[0] = s.tokens[0][i:]
		s.columns[0] += i
	} else {
		s.tokens = s.tokens[1:]
		s.lines = s.lines[1:]
		s.columns = s.columns[1:]
	}
}

func (s *lpStack) pushFront(tok string) {
	s.tokens = append([]string{tok}, s.tokens...)
	s.lines = append([]int{s.line}, s.lines...)
	s.columns = append([]int{s.column}, s.columns...)
}

// isTopic reports whether the next tokens open a new section.
func (s *lpStack) isTopic() bool {
	if s.empty() {
		return false
	}
	tok := s.tokens[0]

	switch {
	case equalsFold(tok, "binary"), equalsFold(tok, "binaries"),
		equalsFold(tok, "bound"), equalsFold(tok, "bounds"),
		equalsFold(tok, "general"), equalsFold(tok, "end"),
		equalsFold(tok, "st"), equalsFold(tok, "st:"):
		return true
	}

	if len(s.tokens) > 1 && equalsFold(tok, "subject") &&
		(equalsFold(s.tokens[1], "to") || equalsFold(s.tokens[1], "to:")) {
		return true
	}
	if len(s.tokens) > 1 && equalsFold(tok, "st") && s.tokens[1] == ":" {
		return true
	}
	return false
}

// consumeSubjectTo accepts any of "st", "st:", "st :", "subject to",
// "subject to:", "subject to :".
func (s *lpStack) consumeSubjectTo() bool {
	if s.empty() {
		return false
	}

	if equalsFold(s.tokens[0], "st") || equalsFold(s.tokens[0], "st:") {
		s.pop()
		if len(s.tokens) > 0 && s.tokens[0] == ":" {
			s.pop()
		}
		return true
	}

	if equalsFold(s.tokens[0], "subject") && len(s.tokens) > 1 &&
		(equalsFold(s.tokens[1], "to") || equalsFold(s.tokens[1], "to:")) {
		s.pop()
		s.pop()
		if len(s.tokens) > 0 && s.tokens[0] == ":" {
			s.pop()
		}
		return true
	}

	return false
}

func (s *lpStack) consumeKeyword(words ...string) bool {
	if s.empty() {
		return false
	}
	for _, w := range words {
		if equalsFold(s.tokens[0], w) {
			s.pop()
			return true
		}
	}
	return false
}

func equalsFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

func isOperatorChar(c int) bool {
	return c == '<' || c == '>' || c == '='
}

func isNameStart(c int) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}

// isValidNameChar reports whether c may appear inside a variable name.
func isValidNameChar(c byte) bool {
	if c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
		return true
	}
	switch c {
	case '!', '"', '#', '$', '%', '&', '(', ')', ',', '.', ';', '?', '@',
		'_', '{', '}', '~':
		return true
	}
	return false
}

func (s *lpStack) updateCoefficient(factor int) {
	if s.coefficientClass == 2 {
		return
	}
	if factor < -1 || factor > 1 {
		s.coefficientClass = 2
		return
	}
	if factor == -1 {
		s.coefficientClass = 1
	}
}

// variable returns the index of name, registering it on first sight.
func (s *lpStack) variable(pb *Problem, name string) (int, error) {
	if id, ok := s.cache[name]; ok {
		return id, nil
	}
	if len(pb.Vars.Names) >= maxVariables {
		return 0, s.failf(TooManyVariables, name)
	}
	id := len(pb.Vars.Names)
	pb.Vars.Names = append(pb.Vars.Names, name)
	pb.Vars.Values = append(pb.Vars.Values, VariableValue{Min: 0, Max: 1})
	s.cache[name] = id
	return id, nil
}

// declaredVariable returns the index of an already-registered name, or -1.
func (s *lpStack) declaredVariable(name string) int {
	if id, ok := s.cache[name]; ok {
		return id
	}
	return -1
}

func (s *lpStack) readName() (string, error) {
	tok, err := s.top()
	if err != nil {
		return "", err
	}

	if !isNameStart(int(tok[0])) {
		return "", s.failf(BadName, tok)
	}

	i := 1
	for i < len(tok) && isValidNameChar(tok[i]) {
		i++
	}
	name := tok[:i]
	s.substrFront(i)
	return name, nil
}

type lpOperator int

const (
	opLess lpOperator = iota
	opGreater
	opEqual
)

func (s *lpStack) readOperator() (lpOperator, error) {
	tok, err := s.top()
	if err != nil {
		return opEqual, err
	}

	switch tok[0] {
	case '<':
		if len(tok) > 1 && tok[1] == '=' {
			s.substrFront(2)
		} else {
			s.substrFront(1)
		}
		return opLess, nil

	case '>':
		if len(tok) > 1 && tok[1] == '=' {
			s.substrFront(2)
		} else {
			s.substrFront(1)
		}
		return opGreater, nil

	case '=':
		if len(tok) > 1 {
			switch tok[1] {
			case '<':
				s.substrFront(2)
				return opLess, nil
			case '>':
				s.substrFront(2)
				return opGreater, nil
			case '=':
				s.substrFront(2)
				return opEqual, nil
			}
		}
		s.substrFront(1)
		return opEqual, nil
	}

	return opEqual, s.failf(BadOperator, tok)
}

func (s *lpStack) readInteger() (int, error) {
	tok, err := s.pop()
	if err != nil {
		return 0, err
	}

	negative := false
	if tok[0] == '-' || tok[0] == '+' {
		negative = tok[0] == '-'
		if len(tok) > 1 {
			tok = tok[1:]
		} else {
			tok, err = s.pop()
			if err != nil {
				return 0, err
			}
		}
	}

	i := 0
	for i < len(tok) && isDigit(int(tok[i])) {
		i++
	}
	if i == 0 {
		return 0, s.failf(BadInteger, tok)
	}

	value, err := strconv.ParseInt(tok[:i], 10, 32)
	if err != nil {
		return 0, s.failf(BadInteger, tok)
	}

	if i < len(tok) {
		s.pushFront(tok[i:])
	}
	if negative {
		return -int(value), nil
	}
	return int(value), nil
}

func (s *lpStack) readDouble() (float64, error) {
	tok, err := s.pop()
	if err != nil {
		return 0, err
	}

	negative := false
	if tok[0] == '-' || tok[0] == '+' {
		negative = tok[0] == '-'
		if len(tok) > 1 {
			tok = tok[1:]
		} else {
			tok, err = s.pop()
			if err != nil {
				return 0, err
			}
		}
	}

	i := 0
	for i < len(tok) && (isDigit(int(tok[i])) || tok[i] == '.') {
		i++
	}
	// Exponent part.
	if i < len(tok) && (tok[i] == 'e' || tok[i] == 'E') {
		j := i + 1
		if j < len(tok) && (tok[j] == '+' || tok[j] == '-') {
			j++
		}
		k := j
		for k < len(tok) && isDigit(int(tok[k])) {
			k++
		}
		if k > j {
			i = k
		}
	}
	if i == 0 {
		return 0, s.failf(BadInteger, tok)
	}

	value, err := strconv.ParseFloat(tok[:i], 64)
	if err != nil {
		return 0, s.failf(BadInteger, tok)
	}

	if i < len(tok) {
		s.pushFront(tok[i:])
	}
	if negative {
		return -value, nil
	}
	return value, nil
}

// readFunctionElement reads one signed integer-coefficient term of a
// constraint. An empty name means a bare constant was read.
func (s *lpStack) readFunctionElement() (string, int, error) {
	factor := 1
	negative := false

	tok, err := s.pop()
	if err != nil {
		return "", 0, err
	}
	if tok[0] == '-' || tok[0] == '+' {
		negative = tok[0] == '-'
		if len(tok) > 1 {
			s.pushFront(tok[1:])
		}
	} else {
		s.pushFront(tok)
	}

	if s.peek() >= 0 && isDigit(s.peek()) {
		factor, err = s.readInteger()
		if err != nil {
			return "", 0, err
		}
		if negative {
			factor = -factor
		}
	} else if negative {
		factor = -1
	}

	s.updateCoefficient(factor)

	if s.isTopic() {
		return "", factor, nil
	}
	if c := s.peek(); !isNameStart(c) {
		return "", factor, nil
	}

	name, err := s.readName()
	if err != nil {
		return "", 0, err
	}
	return name, factor, nil
}

// readObjectiveElement is readFunctionElement with a real coefficient.
func (s *lpStack) readObjectiveElement() (string, float64, error) {
	factor := 1.0
	negative := false

	tok, err := s.pop()
	if err != nil {
		return "", 0, err
	}
	if tok[0] == '-' || tok[0] == '+' {
		negative = tok[0] == '-'
		if len(tok) > 1 {
			s.pushFront(tok[1:])
		}
	} else {
		s.pushFront(tok)
	}

	if c := s.peek(); c >= 0 && (isDigit(c) || c == '.') {
		factor, err = s.readDouble()
		if err != nil {
			return "", 0, err
		}
		if negative {
			factor = -factor
		}
	} else if negative {
		factor = -1
	}

	if s.isTopic() {
		return "", factor, nil
	}
	if c := s.peek(); !isNameStart(c) {
		return "", factor, nil
	}

	name, err := s.readName()
	if err != nil {
		return "", 0, err
	}
	return name, factor, nil
}

func (s *lpStack) readObjectiveSense() (ObjectiveSense, error) {
	tok, err := s.top()
	if err != nil {
		return Minimize, err
	}

	i := 0
	for i < len(tok) && isNameStart(int(tok[i])) {
		i++
	}
	word := tok[:i]
	s.substrFront(i)

	switch {
	case equalsFold(word, "minimize"), equalsFold(word, "min"):
		return Minimize, nil
	case equalsFold(word, "maximize"), equalsFold(word, "max"):
		return Maximize, nil
	}
	return Minimize, s.failf(BadObjectiveType, tok)
}

// readQuadBlock reads the bracketed quadratic part of the objective:
// [ f x * y + ... ] optionally followed by /2.
func (s *lpStack) readQuadBlock(pb *Problem) error {
	s.substrFront(1) // consume '['

	var elems []QuadElement
	for {
		if s.peek() == ']' {
			s.substrFront(1)
			break
		}

		name, factor, err := s.readObjectiveElement()
		if err != nil {
			return err
		}
		if name == "" {
			return s.failf(BadFunctionElement, "")
		}
		vi, err := s.variable(pb, name)
		if err != nil {
			return err
		}

		vj := vi
		switch s.peek() {
		case '*':
			s.substrFront(1)
			other, err := s.readName()
			if err != nil {
				return err
			}
			vj, err = s.variable(pb, other)
			if err != nil {
				return err
			}
		case '^':
			s.substrFront(1)
			if s.peek() != '2' {
				return s.failf(BadFunctionElement, "^")
			}
			s.substrFront(1)
		default:
			return s.failf(BadFunctionElement, name)
		}

		elems = append(elems, QuadElement{
			Factor:    factor,
			VariableI: vi,
			VariableJ: vj,
		})
	}

	if s.peek() == '/' {
		s.substrFront(1)
		div, err := s.readDouble()
		if err != nil {
			return err
		}
		if div == 0 {
			return s.failf(BadFunctionElement, "/0")
		}
		for i := range elems {
			elems[i].Factor /= div
		}
	}

	pb.Objective.QElements = append(pb.Objective.QElements, elems...)
	return nil
}

func (s *lpStack) readObjective(pb *Problem) error {
	if s.isTopic() {
		return nil
	}

	// Skip the "obj:" label CPLEX writes.
	if c := s.peek(); isNameStart(c) {
		name, err := s.readName()
		if err != nil {
			return err
		}
		if s.peek() == ':' {
			s.substrFront(1)
		} else {
			s.pushFront(name)
		}
	}

	for !s.isTopic() {
		if s.empty() {
			return s.failf(BadEndOfFile, "")
		}

		// A '+' directly in front of the quadratic block belongs to the
		// block, not to a constant term.
		if s.peek() == '+' {
			if s.tokens[0] == "+" && len(s.tokens) > 1 && s.tokens[1][0] == '[' {
				s.pop()
			} else if len(s.tokens[0]) > 1 && s.tokens[0][1] == '[' {
				s.substrFront(1)
			}
		}
		if s.peek() == '[' {
			if err := s.readQuadBlock(pb); err != nil {
				return err
			}
			continue
		}

		name, factor, err := s.readObjectiveElement()
		if err != nil {
			return err
		}
		if name == "" {
			pb.Objective.Constant += factor
			continue
		}
		id, err := s.variable(pb, name)
		if err != nil {
			return err
		}
		pb.Objective.Elements = append(pb.Objective.Elements,
			ObjectiveElement{Factor: factor, Variable: id})
	}

	return nil
}

func (s *lpStack) atSectionKeyword() bool {
	if s.empty() {
		return true
	}
	tok := s.tokens[0]
	return equalsFold(tok, "bound") || equalsFold(tok, "bounds") ||
		equalsFold(tok, "binary") || equalsFold(tok, "binaries") ||
		equalsFold(tok, "general") || equalsFold(tok, "end")
}

func (s *lpStack) readConstraint(pb *Problem) (Constraint, lpOperator, error) {
	var cst Constraint
	var label string

	if c := s.peek(); isNameStart(c) {
		name, err := s.readName()
		if err != nil {
			return cst, opEqual, err
		}
		if s.peek() == ':' {
			label = name
			s.substrFront(1)
		} else {
			id, err := s.variable(pb, name)
			if err != nil {
				return cst, opEqual, err
			}
			cst.Elements = append(cst.Elements, Element{Factor: 1, Variable: id})
			s.updateCoefficient(1)
		}
	}

	if s.atSectionKeyword() {
		tok, _ := s.top()
		return cst, opEqual, s.failf(BadConstraint, tok)
	}

	for !isOperatorChar(s.peek()) {
		if s.atSectionKeyword() {
			tok, _ := s.top()
			return cst, opEqual, s.failf(BadConstraint, tok)
		}
		name, factor, err := s.readFunctionElement()
		if err != nil {
			return cst, opEqual, err
		}
		if name == "" {
			return cst, opEqual, s.failf(BadFunctionElement, "")
		}
		id, err := s.variable(pb, name)
		if err != nil {
			return cst, opEqual, err
		}
		cst.Elements = append(cst.Elements, Element{Factor: factor, Variable: id})
	}

	op, err := s.readOperator()
	if err != nil {
		return cst, opEqual, err
	}
	value, err := s.readInteger()
	if err != nil {
		return cst, opEqual, err
	}

	cst.Label = label
	cst.Value = value
	return cst, op, nil
}

func (s *lpStack) readConstraints(pb *Problem) error {
	for !s.atSectionKeyword() {
		cst, op, err := s.readConstraint(pb)
		if err != nil {
			return err
		}

		cst.ID = s.constraintID
		if cst.Label == "" {
			cst.Label = fmt.Sprintf("ct%d", s.constraintID)
		}
		s.constraintID++

		switch op {
		case opEqual:
			pb.EqualConstraints = append(pb.EqualConstraints, cst)
		case opGreater:
			pb.GreaterConstraints = append(pb.GreaterConstraints, cst)
		case opLess:
			pb.LessConstraints = append(pb.LessConstraints, cst)
		}
	}
	return nil
}

// applyBound applies "value op variable" (left true) or "variable op
// value".
func applyBound(v *VariableValue, op lpOperator, value int, left bool) {
	if left {
		// value <= x means x >= value.
		switch op {
		case opLess:
			v.Min = value
		case opGreater:
			v.Max = value
		case opEqual:
			v.Min = value
			v.Max = value
		}
		return
	}
	switch op {
	case opLess:
		v.Max = value
	case opGreater:
		v.Min = value
	case opEqual:
		v.Min = value
		v.Max = value
	}
}

func (s *lpStack) readBound(pb *Problem) error {
	if isDigit(s.peek()) || s.peek() == '-' {
		value, err := s.readInteger()
		if err != nil {
			return err
		}
		op, err := s.readOperator()
		if err != nil {
			return err
		}
		name, err := s.readName()
		if err != nil {
			return err
		}
		id, err := s.variable(pb, name)
		if err != nil {
			return err
		}
		applyBound(&pb.Vars.Values[id], op, value, true)

		if isOperatorChar(s.peek()) {
			op2, err := s.readOperator()
			if err != nil {
				return err
			}
			value2, err := s.readInteger()
			if err != nil {
				return err
			}
			applyBound(&pb.Vars.Values[id], op2, value2, false)
		}
		return nil
	}

	name, err := s.readName()
	if err != nil {
		return err
	}
	op, err := s.readOperator()
	if err != nil {
		return err
	}
	value, err := s.readInteger()
	if err != nil {
		return err
	}
	id, err := s.variable(pb, name)
	if err != nil {
		return err
	}
	applyBound(&pb.Vars.Values[id], op, value, false)
	return nil
}

func (s *lpStack) readBounds(pb *Problem) error {
	for {
		if s.empty() {
			return s.failf(BadEndOfFile, "")
		}
		tok := s.tokens[0]
		if equalsFold(tok, "binary") || equalsFold(tok, "binaries") ||
			equalsFold(tok, "general") || equalsFold(tok, "end") {
			return nil
		}
		if err := s.readBound(pb); err != nil {
			return err
		}
	}
}

func (s *lpStack) readBinary(pb *Problem) error {
	for {
		if s.empty() {
			return s.failf(BadEndOfFile, "")
		}
		tok := s.tokens[0]
		if equalsFold(tok, "general") || equalsFold(tok, "end") {
			return nil
		}

		name, err := s.readName()
		if err != nil {
			return err
		}
		id := s.declaredVariable(name)
		if id < 0 || pb.Vars.Values[id].Type != VarReal {
			return s.failf(BadToken, name)
		}
		pb.Vars.Values[id] = VariableValue{Min: 0, Max: 1, Type: VarBinary}
	}
}

func (s *lpStack) readGeneral(pb *Problem) error {
	for {
		if s.empty() {
			return s.failf(BadEndOfFile, "")
		}
		if equalsFold(s.tokens[0], "end") {
			return nil
		}

		name, err := s.readName()
		if err != nil {
			return err
		}
		id := s.declaredVariable(name)
		if id < 0 || pb.Vars.Values[id].Type != VarReal {
			return s.failf(BadToken, name)
		}
		pb.Vars.Values[id].Type = VarGeneral
	}
}

// ReadProblem parses a CPLEX-style LP model.
func ReadProblem(r io.Reader) (*Problem, error) {
	s := newLpStack(r)
	pb := &Problem{}

	sense, err := s.readObjectiveSense()
	if err != nil {
		return nil, err
	}
	pb.Sense = sense

	if err := s.readObjective(pb); err != nil {
		return nil, err
	}

	if s.consumeSubjectTo() {
		if err := s.readConstraints(pb); err != nil {
			return nil, err
		}
	}

	if s.consumeKeyword("bound", "bounds") {
		if err := s.readBounds(pb); err != nil {
			return nil, err
		}
	}

	if s.consumeKeyword("binary", "binaries") {
		if err := s.readBinary(pb); err != nil {
			return nil, err
		}
	}

	if s.consumeKeyword("general") {
		if err := s.readGeneral(pb); err != nil {
			return nil, err
		}
	}

	if !s.consumeKeyword("end") || !s.empty() {
		return nil, s.failf(Incomplete, "end")
	}

	pb.CoefficientClass = s.coefficientClass
	return pb, nil
}

// ReadProblemFile parses a CPLEX-style LP model from a file.
func ReadProblemFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	log.Infof("problem reads from file %s", path)

	pb, err := ReadProblem(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return pb, nil
}

// WriteProblem prints a problem in the LP format read by ReadProblem.
func WriteProblem(w io.Writer, pb *Problem) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", pb.Sense)
	writeObjective(bw, pb)

	fmt.Fprintf(bw, "subject to\n")
	writeConstraintList(bw, pb, pb.EqualConstraints, "=")
	writeConstraintList(bw, pb, pb.GreaterConstraints, ">=")
	writeConstraintList(bw, pb, pb.LessConstraints, "<=")

	var bounded, binary, general []int
	for i := range pb.Vars.Values {
		v := pb.Vars.Values[i]
		switch v.Type {
		case VarBinary:
			binary = append(binary, i)
		case VarGeneral:
			general = append(general, i)
			if v.Min != 0 || v.Max != 1 {
				bounded = append(bounded, i)
			}
		default:
			binary = append(binary, i)
		}
	}

	if len(bounded) > 0 {
		fmt.Fprintf(bw, "bounds\n")
		for _, i := range bounded {
			fmt.Fprintf(bw, "  %d <= %s <= %d\n",
				pb.Vars.Values[i].Min, pb.Vars.Names[i], pb.Vars.Values[i].Max)
		}
	}
	if len(binary) > 0 {
		fmt.Fprintf(bw, "binary\n")
		for _, i := range binary {
			fmt.Fprintf(bw, "  %s\n", pb.Vars.Names[i])
		}
	}
	if len(general) > 0 {
		fmt.Fprintf(bw, "general\n")
		for _, i := range general {
			fmt.Fprintf(bw, "  %s\n", pb.Vars.Names[i])
		}
	}

	fmt.Fprintf(bw, "end\n")
	return errors.Wrap(bw.Flush(), "writing problem")
}

func writeObjective(w io.Writer, pb *Problem) {
	fmt.Fprintf(w, "  obj:")
	for _, e := range pb.Objective.Elements {
		writeSignedFloat(w, e.Factor)
		fmt.Fprintf(w, " %s", pb.Vars.Names[e.Variable])
	}
	if len(pb.Objective.QElements) > 0 {
		fmt.Fprintf(w, " [")
		for _, q := range pb.Objective.QElements {
			writeSignedFloat(w, q.Factor)
			if q.VariableI == q.VariableJ {
				fmt.Fprintf(w, " %s ^2", pb.Vars.Names[q.VariableI])
			} else {
				fmt.Fprintf(w, " %s * %s",
					pb.Vars.Names[q.VariableI], pb.Vars.Names[q.VariableJ])
			}
		}
		fmt.Fprintf(w, " ]")
	}
	if pb.Objective.Constant != 0 {
		writeSignedFloat(w, pb.Objective.Constant)
	}
	fmt.Fprintf(w, "\n")
}

func writeSignedFloat(w io.Writer, v float64) {
	if v < 0 {
		fmt.Fprintf(w, " - %g", -v)
	} else {
		fmt.Fprintf(w, " + %g", v)
	}
}

func writeConstraintList(w io.Writer, pb *Problem, list []Constraint, op string) {
	for i := range list {
		c := &list[i]
		fmt.Fprintf(w, "  %s:", c.Label)
		for _, e := range c.Elements {
			switch {
			case e.Factor == 1:
				fmt.Fprintf(w, " + %s", pb.Vars.Names[e.Variable])
			case e.Factor == -1:
				fmt.Fprintf(w, " - %s", pb.Vars.Names[e.Variable])
			case e.Factor < 0:
				fmt.Fprintf(w, " - %d %s", -e.Factor, pb.Vars.Names[e.Variable])
			default:
				fmt.Fprintf(w, " + %d %s", e.Factor, pb.Vars.Names[e.Variable])
			}
		}
		fmt.Fprintf(w, " %s %d\n", op, c.Value)
	}
}
