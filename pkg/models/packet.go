// Package models re-exports the dissect record types for external use.
package models

import (
	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/internal/dissect"
)

// Re-export record types for library users
type (
	Record  = core.Record
	Family  = core.Family
	Variant = core.Variant
	Labels  = core.Labels
)

const (
	FamilyNDP      = core.FamilyNDP
	FamilyIPv4Opt  = core.FamilyIPv4Opt
	FamilyDNSRData = core.FamilyDNSRData
	FamilySSH2     = core.FamilySSH2

	VariantKnown   = core.VariantKnown
	VariantUnknown = core.VariantUnknown
	VariantIllegal = core.VariantIllegal
)

// Decode runs the factory of family on raw and describes the result.
func Decode(family Family, code uint32, raw []byte) (Record, error) {
	return dissect.Decode(family, code, raw)
}
