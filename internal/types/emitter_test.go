package types_test

import (
	"fmt"

	"snex/internal/types"
)

// recordingEmitter logs every emitted instruction as text.
type recordingEmitter struct {
	lines []string
	calls []emittedCall
}

type emittedCall struct {
	fn     *types.FunctionData
	object types.Operand
}

func (e *recordingEmitter) EmitCall(fn *types.FunctionData, object types.Operand, args []types.Operand) error {
	e.calls = append(e.calls, emittedCall{fn: fn, object: object})
	e.lines = append(e.lines, fmt.Sprintf("call %s %s", fn.ID, object))
	return nil
}

func (e *recordingEmitter) EmitMove(dst, src types.Operand) error {
	e.lines = append(e.lines, fmt.Sprintf("mov %s, %s", dst, src))
	return nil
}

func (e *recordingEmitter) EmitBinary(op types.BinaryOp, dst, src types.Operand) error {
	e.lines = append(e.lines, fmt.Sprintf("%s %s, %s", op, dst, src))
	return nil
}

func (e *recordingEmitter) EmitAddress(dst, src types.Operand) error {
	e.lines = append(e.lines, fmt.Sprintf("lea %s, %s", dst, src))
	return nil
}
