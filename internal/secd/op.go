// Package secd compiles Lisp expressions into SECD machine code and runs that
// code on a register machine whose every structure lives in a heap.Heap.
//
// Code is an ordinary heap list: each instruction is a number cell holding an
// Op, followed in the list by any operands it takes. LD takes a (frame . slot)
// address, LDC a constant, LDF a code list, and SEL two code lists.
package secd

import (
	"fmt"
	"strings"
)

// Op is a machine instruction code.
type Op int64

// Instruction codes; their numbering is part of the code encoding.
const (
	LD Op = iota + 1
	LDC
	LDF
	AP
	RTN
	DUM
	RAP
	SEL
	JOIN
	CAR
	CDR
	ATOM
	CONS
	EQ
	ADD
	SUB
	MUL
	DIV
	REM
	LEQ
	STOP
)

var opNames = [...]string{
	LD:   "LD",
	LDC:  "LDC",
	LDF:  "LDF",
	AP:   "AP",
	RTN:  "RTN",
	DUM:  "DUM",
	RAP:  "RAP",
	SEL:  "SEL",
	JOIN: "JOIN",
	CAR:  "CAR",
	CDR:  "CDR",
	ATOM: "ATOM",
	CONS: "CONS",
	EQ:   "EQ",
	ADD:  "ADD",
	SUB:  "SUB",
	MUL:  "MUL",
	DIV:  "DIV",
	REM:  "REM",
	LEQ:  "LEQ",
	STOP: "STOP",
}

var opCodes = make(map[string]Op, len(opNames))

func init() {
	for op, name := range opNames {
		if name != "" {
			opCodes[name] = Op(op)
		}
	}
}

// Valid returns true for the defined instruction codes.
func (op Op) Valid() bool { return LD <= op && op <= STOP }

func (op Op) String() string {
	if op.Valid() {
		return opNames[op]
	}
	return fmt.Sprintf("Op(%d)", int64(op))
}

// ParseOp returns the instruction named by a mnemonic, in any case.
func ParseOp(name string) (Op, bool) {
	op, ok := opCodes[strings.ToUpper(name)]
	return op, ok
}

// operands returns how many list elements following op are its operands.
func (op Op) operands() int {
	switch op {
	case LD, LDC, LDF:
		return 1
	case SEL:
		return 2
	}
	return 0
}
