package filter

import (
	"fmt"
	"math"

	"golang.org/x/net/bpf"
)

// assembler resolves symbolic jump targets into the relative skips of
// classic BPF. An empty label means the next instruction.
type assembler struct {
	prog   []bpf.Instruction
	labels map[string]int
	fixups []fixup
}

type fixup struct {
	at              int
	onTrue, onFalse string
}

func (a *assembler) emit(ins bpf.Instruction) {
	a.prog = append(a.prog, ins)
}

func (a *assembler) label(name string) {
	if a.labels == nil {
		a.labels = make(map[string]int)
	}
	a.labels[name] = len(a.prog)
}

func (a *assembler) jumpIf(cond bpf.JumpTest, val uint32, onTrue, onFalse string) {
	a.fixups = append(a.fixups, fixup{at: len(a.prog), onTrue: onTrue, onFalse: onFalse})
	a.emit(bpf.JumpIf{Cond: cond, Val: val})
}

func (a *assembler) jump(target string) {
	a.fixups = append(a.fixups, fixup{at: len(a.prog), onTrue: target})
	a.emit(bpf.Jump{})
}

func (a *assembler) skip(from int, label string) (uint32, error) {
	if label == "" {
		return 0, nil
	}
	to, ok := a.labels[label]
	if !ok {
		return 0, fmt.Errorf("undefined label %q", label)
	}
	if to <= from {
		return 0, fmt.Errorf("backward jump to %q", label)
	}
	return uint32(to - from - 1), nil
}

func (a *assembler) resolve() ([]bpf.Instruction, error) {
	for _, f := range a.fixups {
		t, err := a.skip(f.at, f.onTrue)
		if err != nil {
			return nil, err
		}
		switch ins := a.prog[f.at].(type) {
		case bpf.Jump:
			ins.Skip = t
			a.prog[f.at] = ins
		case bpf.JumpIf:
			e, err := a.skip(f.at, f.onFalse)
			if err != nil {
				return nil, err
			}
			if t > math.MaxUint8 || e > math.MaxUint8 {
				return nil, fmt.Errorf("conditional jump at %d out of range", f.at)
			}
			ins.SkipTrue, ins.SkipFalse = uint8(t), uint8(e)
			a.prog[f.at] = ins
		}
	}
	return a.prog, nil
}
