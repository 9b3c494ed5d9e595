package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// AttributeKind enumerates the value types an extension attribute can hold.
type AttributeKind string

const (
	AttributeString AttributeKind = "string"
	AttributeNumber AttributeKind = "number"
	AttributeBool   AttributeKind = "bool"
)

// Attribute is a typed extension field attached to a product.
// Exactly one value field is meaningful, selected by Kind.
type Attribute struct {
	Kind   AttributeKind    `json:"kind"`
	String string           `json:"string,omitempty"`
	Number *decimal.Decimal `json:"number,omitempty"`
	Bool   bool             `json:"bool,omitempty"`
}

// StringAttribute builds a string-valued attribute.
func StringAttribute(v string) Attribute { return Attribute{Kind: AttributeString, String: v} }

// NumberAttribute builds a number-valued attribute.
func NumberAttribute(v decimal.Decimal) Attribute { return Attribute{Kind: AttributeNumber, Number: &v} }

// BoolAttribute builds a bool-valued attribute.
func BoolAttribute(v bool) Attribute { return Attribute{Kind: AttributeBool, Bool: v} }

// Validate reports an error for an unknown kind, a number without a value,
// or a value field that does not belong to the kind.
func (a Attribute) Validate() error {
	var stray []string
	switch a.Kind {
	case AttributeString:
		stray = a.strayFields(false, true, true)
	case AttributeNumber:
		if a.Number == nil {
			return fmt.Errorf("number attribute without a value")
		}
		stray = a.strayFields(true, false, true)
	case AttributeBool:
		stray = a.strayFields(true, true, false)
	default:
		return fmt.Errorf("unknown attribute kind %q", a.Kind)
	}
	if len(stray) > 0 {
		return fmt.Errorf("%s attribute must not set %s", a.Kind, strings.Join(stray, ", "))
	}
	return nil
}

func (a Attribute) strayFields(checkString, checkNumber, checkBool bool) []string {
	var out []string
	if checkString && a.String != "" {
		out = append(out, "string")
	}
	if checkNumber && a.Number != nil {
		out = append(out, "number")
	}
	if checkBool && a.Bool {
		out = append(out, "bool")
	}
	return out
}

// Product represents an item in the catalog
type Product struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Price       decimal.Decimal      `json:"price"`
	Description string               `json:"description"`
	Stock       int                  `json:"stock"`
	Category    string               `json:"category"`
	ImageURL    string               `json:"imageUrl,omitempty"`
	Attributes  map[string]Attribute `json:"attributes,omitempty"`
}

// Clone returns a copy that shares no mutable state with p.
func (p Product) Clone() Product {
	if p.Attributes != nil {
		attrs := make(map[string]Attribute, len(p.Attributes))
		for k, v := range p.Attributes {
			if v.Number != nil {
				n := *v.Number
				v.Number = &n
			}
			attrs[k] = v
		}
		p.Attributes = attrs
	}
	return p
}
