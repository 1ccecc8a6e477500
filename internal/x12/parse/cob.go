package parse

import (
	"github.com/drfirst/go-edi/internal/x12"
)

// Entity codes that name the other payer's position in a 2120 loop
const (
	EntityPrimaryPayer   = "PRP"
	EntitySecondaryPayer = "SEP"
	EntityTertiaryPayer  = "TTP"
)

// OtherPayer is one LS*2120 … LE*2120 loop from a 271
type OtherPayer struct {
	Party
	// BenefitCode is the EB01 of the benefit the loop belongs to; R means other or additional payer
	BenefitCode string      `json:"benefitCode,omitempty"`
	Address     *Address    `json:"address,omitempty"`
	Contacts    []string    `json:"contacts,omitempty"`
	References  []Reference `json:"references,omitempty"`
	Dates       []DateRef   `json:"dates,omitempty"`
}

// IsPrimary reports whether the loop names a payer that pays before the responding one
func (o OtherPayer) IsPrimary() bool {
	if o.EntityCode == EntityPrimaryPayer {
		return true
	}
	return o.BenefitCode == "R" && o.EntityCode != EntitySecondaryPayer && o.EntityCode != EntityTertiaryPayer
}

// CoordinationOfBenefits lists the other payers a 271 reports
type CoordinationOfBenefits struct {
	OtherPayers            []OtherPayer `json:"otherPayers"`
	Rejections             []Rejection  `json:"rejections,omitempty"`
	RequiresPrimaryBilling bool         `json:"requiresPrimaryBilling"`
}

// ParseCoordinationOfBenefits scans the 2120 loops of an already split 271.
// An NM1 inside a loop opens a new other payer; N3, N4, PER, REF and DTP attach to it.
func ParseCoordinationOfBenefits(segs []x12.Segment) CoordinationOfBenefits {
	return coordinationOfBenefits(segs, nil)
}

func coordinationOfBenefits(segs []x12.Segment, src []string) CoordinationOfBenefits {
	cob := CoordinationOfBenefits{OtherPayers: []OtherPayer{}}
	var (
		inLoop  bool
		lastEB  string
		current *OtherPayer
	)
	finished := func() {
		if current != nil {
			cob.OtherPayers = append(cob.OtherPayers, *current)
			current = nil
		}
	}

	for i, seg := range segs {
		if !inLoop {
			switch {
			case seg.ID() == "EB":
				lastEB = seg.Element(1)
			case seg.Is("LS", "2120"):
				inLoop = true
			case seg.ID() == "NM1", seg.ID() == "HL":
				lastEB = ""
			}
			continue
		}

		switch seg.ID() {
		case "LE":
			finished()
			inLoop = false
		case "NM1":
			finished()
			current = &OtherPayer{Party: *partyFromNM1(seg), BenefitCode: lastEB}
		case "N3", "N4":
			if current != nil {
				applyAddress(&current.Address, seg)
			}
		case "PER":
			if current != nil {
				current.Contacts = append(current.Contacts, contactFrom(seg))
			}
		case "REF":
			if current != nil {
				current.References = append(current.References, referenceFrom(seg))
			}
		case "DTP":
			if current != nil {
				current.Dates = append(current.Dates, dateFromDTP(seg))
			}
		case "AAA":
			cob.Rejections = append(cob.Rejections, rejectionFrom(seg, source(src, i, seg)))
		}
	}
	finished()

	for _, o := range cob.OtherPayers {
		if o.IsPrimary() {
			cob.RequiresPrimaryBilling = true
			break
		}
	}
	return cob
}

// contactFrom renders PER communication numbers as "QUAL number" pairs
func contactFrom(seg x12.Segment) string {
	out := seg.Element(2)
	for i := 3; i+1 < len(seg); i += 2 {
		if seg.Element(i+1) == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += seg.Element(i) + " " + seg.Element(i+1)
	}
	return out
}
