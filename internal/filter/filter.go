// Package filter compiles a classic BPF program that accepts only frames
// able to carry units of the enabled families, and runs it in the
// x/net/bpf virtual machine ahead of full decoding.
package filter

import (
	"fmt"

	"golang.org/x/net/bpf"

	"firestige.xyz/otus-dissect/internal/config"
	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/internal/core/decoder"
)

const (
	ethernetHeaderLen = 14
	etherTypeOffset   = 12
	etherTypeIPv4     = 0x0800
	etherTypeIPv6     = 0x86DD
	etherTypeVLAN     = 0x8100
	etherTypeQinQ     = 0x88A8

	protocolTCP    = 6
	protocolUDP    = 17
	protocolICMPv6 = 58

	fragMask = 0x3FFF // MF and fragment offset

	acceptLen = 0xFFFFFFFF
)

// Filter matches frames of one link type.
type Filter struct {
	prog []bpf.Instruction
	vm   *bpf.VM
}

// Compile builds the program for frames of the given link type. A frame
// is accepted when it is
//   - IPv4 with options, if ipv4opt is enabled;
//   - ICMPv6, if ndp is enabled;
//   - TCP or UDP to or from a DNS or SSH port of an enabled family;
//   - an IPv4 fragment, if reassembly is enabled;
//   - VLAN tagged, which is left to the decoder.
func Compile(link decoder.LinkType, cfg config.DissectConfig) (*Filter, error) {
	var ports []uint16
	if cfg.Enabled(core.FamilyDNSRData) {
		ports = append(ports, cfg.DNSPorts...)
	}
	if cfg.Enabled(core.FamilySSH2) {
		ports = append(ports, cfg.SSHPorts...)
	}

	var a assembler
	base := uint32(0)
	if link == decoder.LinkEthernet {
		base = ethernetHeaderLen
		a.emit(bpf.LoadAbsolute{Off: etherTypeOffset, Size: 2})
		a.jumpIf(bpf.JumpEqual, etherTypeIPv4, "ipv4", "")
		a.jumpIf(bpf.JumpEqual, etherTypeIPv6, "ipv6", "")
		a.jumpIf(bpf.JumpEqual, etherTypeVLAN, "accept", "")
		a.jumpIf(bpf.JumpEqual, etherTypeQinQ, "accept", "reject")
	} else {
		a.emit(bpf.LoadAbsolute{Off: 0, Size: 1})
		a.emit(bpf.ALUOpConstant{Op: bpf.ALUOpAnd, Val: 0xF0})
		a.jumpIf(bpf.JumpEqual, 0x40, "ipv4", "")
		a.jumpIf(bpf.JumpEqual, 0x60, "ipv6", "reject")
	}

	a.label("ipv4")
	if cfg.Reassemble {
		a.emit(bpf.LoadAbsolute{Off: base + 6, Size: 2})
		a.jumpIf(bpf.JumpBitsSet, fragMask, "accept", "")
	}
	if cfg.Enabled(core.FamilyIPv4Opt) {
		a.emit(bpf.LoadAbsolute{Off: base, Size: 1})
		a.emit(bpf.ALUOpConstant{Op: bpf.ALUOpAnd, Val: 0x0F})
		a.jumpIf(bpf.JumpGreaterThan, 5, "accept", "")
	}
	if len(ports) > 0 {
		a.emit(bpf.LoadAbsolute{Off: base + 9, Size: 1})
		a.jumpIf(bpf.JumpEqual, protocolTCP, "ipv4ports", "")
		a.jumpIf(bpf.JumpEqual, protocolUDP, "ipv4ports", "reject")

		a.label("ipv4ports")
		// X = IHL*4
		a.emit(bpf.LoadMemShift{Off: base})
		a.emit(bpf.LoadIndirect{Off: base, Size: 2})
		a.anyOf(ports)
		a.emit(bpf.LoadIndirect{Off: base + 2, Size: 2})
		a.anyOf(ports)
	}
	a.jump("reject")

	a.label("ipv6")
	a.emit(bpf.LoadAbsolute{Off: base + 6, Size: 1})
	if cfg.Enabled(core.FamilyNDP) {
		a.jumpIf(bpf.JumpEqual, protocolICMPv6, "accept", "")
	}
	if len(ports) > 0 {
		a.jumpIf(bpf.JumpEqual, protocolTCP, "ipv6ports", "")
		a.jumpIf(bpf.JumpEqual, protocolUDP, "ipv6ports", "reject")

		a.label("ipv6ports")
		a.emit(bpf.LoadAbsolute{Off: base + 40, Size: 2})
		a.anyOf(ports)
		a.emit(bpf.LoadAbsolute{Off: base + 42, Size: 2})
		a.anyOf(ports)
	}

	a.label("reject")
	a.emit(bpf.RetConstant{Val: 0})
	a.label("accept")
	a.emit(bpf.RetConstant{Val: acceptLen})

	prog, err := a.resolve()
	if err != nil {
		return nil, err
	}
	vm, err := bpf.NewVM(prog)
	if err != nil {
		return nil, fmt.Errorf("invalid filter program: %w", err)
	}
	return &Filter{prog: prog, vm: vm}, nil
}

// Match reports whether frame passes the filter. Frames shorter than a
// field the program loads are rejected.
func (f *Filter) Match(frame []byte) bool {
	n, err := f.vm.Run(frame)
	return err == nil && n > 0
}

// Assemble returns the program in the raw form accepted by SO_ATTACH_FILTER.
func (f *Filter) Assemble() ([]bpf.RawInstruction, error) {
	return bpf.Assemble(f.prog)
}

// anyOf jumps to accept when A equals one of ports.
func (a *assembler) anyOf(ports []uint16) {
	for _, p := range ports {
		a.jumpIf(bpf.JumpEqual, uint32(p), "accept", "")
	}
}
