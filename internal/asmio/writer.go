// Package asmio buffers the textual RV32IM assembly the backend emits.
//
// Adapted from the teacher's util.Writer (util/io.go): the same
// Ins1/Ins2/Ins2imm/Ins3/LoadStore/Label line-formatting methods, minus
// the channel and goroutine plumbing that fanned output out from
// concurrent worker threads — this compiler runs one function at a time
// (spec.md §5), so a Writer is just a strings.Builder with named helpers.
package asmio

import (
	"fmt"
	"strings"
)

// Writer accumulates assembly text one instruction at a time.
type Writer struct {
	sb strings.Builder
}

// NewWriter returns an empty Writer.
func NewWriter() Writer { return Writer{} }

// Write writes a format string to the buffer.
func (w *Writer) Write(format string, args ...interface{}) {
	w.sb.WriteString(fmt.Sprintf(format, args...))
}

// WriteString writes a plain string to the buffer.
func (w *Writer) WriteString(s string) { w.sb.WriteString(s) }

// Ins1 writes a one-operand instruction (j, call, ...).
func (w *Writer) Ins1(op, rs1 string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s\n", op, rs1))
}

// Ins2 writes a two-operand instruction (mv, la, bnez, ...).
func (w *Writer) Ins2(op, rd, rs1 string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %s\n", op, rd, rs1))
}

// Ins2imm writes a register-register-immediate instruction (addi, slli, ...).
func (w *Writer) Ins2imm(op, rd, rs1 string, imm int64) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %s, %d\n", op, rd, rs1, imm))
}

// Ins3 writes a three-register instruction (add, slt, beq, ...).
func (w *Writer) Ins3(op, rd, rs1, rs2 string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %s, %s\n", op, rd, rs1, rs2))
}

// LoadStore writes a load or store with an offset(pointer) operand.
func (w *Writer) LoadStore(op, reg string, offset int64, pointer string) {
	w.sb.WriteString(fmt.Sprintf("\t%s\t%s, %d(%s)\n", op, reg, offset, pointer))
}

// Label writes a one-line label definition.
func (w *Writer) Label(name string) {
	w.sb.WriteString(fmt.Sprintf("%s:\n", name))
}

// String returns the accumulated assembly text.
func (w *Writer) String() string { return w.sb.String() }
