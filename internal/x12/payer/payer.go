// Package payer holds the per-payer dialect table that drives optional field
// presence in generated transactions.
package payer

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DTPFormat selects how DTP*291 renders the inquiry date
type DTPFormat string

const (
	DTPSingle DTPFormat = "D8"
	DTPRange  DTPFormat = "RD8"
)

// Field names used in RequiredFields and RecommendedFields
const (
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldDateOfBirth = "dateOfBirth"
	FieldMemberID    = "memberId"
	FieldGender      = "gender"
	FieldGroupNumber = "groupNumber"
)

var knownFields = map[string]bool{
	FieldFirstName:   true,
	FieldLastName:    true,
	FieldDateOfBirth: true,
	FieldMemberID:    true,
	FieldGender:      true,
	FieldGroupNumber: true,
}

// ErrUnknownPayer is returned when a payer id is not in the directory
var ErrUnknownPayer = errors.New("payer: unknown payer id")

// Config is one payer's dialect. The eligibility payer id and the claims payer
// id are frequently different for the same payer and must not be mixed.
type Config struct {
	PayerID               string    `yaml:"payer_id" json:"payerId"`
	DisplayName           string    `yaml:"display_name" json:"displayName"`
	ClaimsPayerID         string    `yaml:"claims_payer_id" json:"claimsPayerId"`
	RequiresGenderInDMG   bool      `yaml:"requires_gender_in_dmg" json:"requiresGenderInDmg"`
	SupportsMemberIDInNM1 bool      `yaml:"supports_member_id_in_nm1" json:"supportsMemberIdInNm1"`
	DTPFormat             DTPFormat `yaml:"dtp_format" json:"dtpFormat"`
	AllowsNameOnly        bool      `yaml:"allows_name_only" json:"allowsNameOnly"`
	RequiredFields        []string  `yaml:"required_fields" json:"requiredFields"`
	RecommendedFields     []string  `yaml:"recommended_fields" json:"recommendedFields"`
}

// Requires reports whether field is in RequiredFields
func (c Config) Requires(field string) bool {
	return contains(c.RequiredFields, field)
}

// Recommends reports whether field is in RecommendedFields
func (c Config) Recommends(field string) bool {
	return contains(c.RecommendedFields, field)
}

// Wants reports whether the payer lists field as required or recommended
func (c Config) Wants(field string) bool {
	return c.Requires(field) || c.Recommends(field)
}

// Validate checks the record is usable by the generators
func (c Config) Validate() error {
	if strings.TrimSpace(c.PayerID) == "" {
		return errors.New("payer_id is required")
	}
	if strings.TrimSpace(c.DisplayName) == "" {
		return fmt.Errorf("payer %s: display_name is required", c.PayerID)
	}
	switch c.DTPFormat {
	case DTPSingle, DTPRange:
	default:
		return fmt.Errorf("payer %s: dtp_format must be D8 or RD8, got %q", c.PayerID, c.DTPFormat)
	}
	for _, f := range append(append([]string{}, c.RequiredFields...), c.RecommendedFields...) {
		if !knownFields[f] {
			return fmt.Errorf("payer %s: unknown field %q", c.PayerID, f)
		}
	}
	return nil
}

func (c Config) clone() Config {
	c.RequiredFields = append([]string(nil), c.RequiredFields...)
	c.RecommendedFields = append([]string(nil), c.RecommendedFields...)
	return c
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Directory is an immutable payer table, built once at start
type Directory struct {
	byID map[string]Config
	ids  []string
}

// NewDirectory validates and indexes configs. Duplicate payer ids are rejected.
func NewDirectory(configs ...Config) (*Directory, error) {
	d := &Directory{byID: make(map[string]Config, len(configs))}
	for _, c := range configs {
		if c.DTPFormat == "" {
			c.DTPFormat = DTPSingle
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		id := strings.ToUpper(c.PayerID)
		if _, dup := d.byID[id]; dup {
			return nil, fmt.Errorf("duplicate payer id %s", c.PayerID)
		}
		d.byID[id] = c.clone()
		d.ids = append(d.ids, id)
	}
	sort.Strings(d.ids)
	return d, nil
}

// Lookup returns a copy of the payer's config
func (d *Directory) Lookup(payerID string) (Config, bool) {
	c, ok := d.byID[strings.ToUpper(strings.TrimSpace(payerID))]
	if !ok {
		return Config{}, false
	}
	return c.clone(), true
}

// MustLookup returns the payer's config or an error wrapping ErrUnknownPayer
func (d *Directory) MustLookup(payerID string) (Config, error) {
	c, ok := d.Lookup(payerID)
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownPayer, payerID)
	}
	return c, nil
}

// All returns every payer ordered by id
func (d *Directory) All() []Config {
	out := make([]Config, 0, len(d.ids))
	for _, id := range d.ids {
		out = append(out, d.byID[id].clone())
	}
	return out
}

// Len returns the number of payers
func (d *Directory) Len() int {
	return len(d.ids)
}

type directoryFile struct {
	Payers []Config `yaml:"payers"`
}

// ParseDirectory builds a directory from YAML
func ParseDirectory(data []byte) (*Directory, error) {
	var f directoryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse payer directory: %w", err)
	}
	return NewDirectory(f.Payers...)
}

// LoadDirectory reads a YAML payer directory file
func LoadDirectory(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payer directory: %w", err)
	}
	return ParseDirectory(data)
}

// Marshal renders the directory back to YAML
func (d *Directory) Marshal() ([]byte, error) {
	return yaml.Marshal(directoryFile{Payers: d.All()})
}
