package at_test

import (
	"errors"
	"reflect"
	"testing"

	"i4.energy/across/loraterm/at"
)

func TestLookupTag(t *testing.T) {
	for _, tag := range []at.Tag{
		at.TagAddress, at.TagBand, at.TagPower, at.TagError, at.TagFactory,
		at.TagBaudRate, at.TagMode, at.TagNetworkID, at.TagOK, at.TagParameter,
		at.TagReceive, at.TagUID, at.TagVersion,
	} {
		prefix := tag.Prefix()
		if prefix == "" || prefix[0] != '+' {
			t.Fatalf("tag %d has bad prefix %q", tag, prefix)
		}
		got, ok := at.LookupTag(prefix[1])
		if !ok || got != tag {
			t.Errorf("LookupTag(%q): expected %v, got %v (ok=%v)", prefix[1], tag, got, ok)
		}
	}

	for _, b := range []byte("DGHJKLQSTWXYZ+=0a") {
		if tag, ok := at.LookupTag(b); ok {
			t.Errorf("LookupTag(%q): expected no tag, got %v", b, tag)
		}
	}
}

func TestTagString(t *testing.T) {
	tests := []struct {
		tag      at.Tag
		expected string
		hasValue bool
	}{
		{at.TagAddress, "ADDRESS", true},
		{at.TagPower, "CRFOP", true},
		{at.TagOK, "OK", false},
		{at.TagFactory, "FACTORY", false},
		{at.TagNone, "NONE", false},
	}
	for _, tt := range tests {
		if got := tt.tag.String(); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
		if got := tt.tag.HasValue(); got != tt.hasValue {
			t.Errorf("%s: expected HasValue %v, got %v", tt.expected, tt.hasValue, got)
		}
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		tag      at.Tag
		raw      string
		expected at.Response
		err      error
	}{
		{name: "Address", tag: at.TagAddress, raw: "65535", expected: at.Address{Value: 65535}},
		{name: "Address too large", tag: at.TagAddress, raw: "65536", err: at.ErrBadField},
		{name: "Band", tag: at.TagBand, raw: "915000000", expected: at.Band{Hz: 915000000}},
		{name: "Power", tag: at.TagPower, raw: "22", expected: at.Power{DBm: 22}},
		{name: "Error code", tag: at.TagError, raw: "17", expected: at.Error{Code: 17}},
		{name: "Error code not numeric", tag: at.TagError, raw: "x", err: at.ErrBadField},
		{name: "Mode 2", tag: at.TagMode, raw: "2,3000,3000", expected: at.Mode{Raw: "2,3000,3000"}},
		{name: "Mode empty", tag: at.TagMode, raw: "", err: at.ErrBadField},
		{name: "Network id", tag: at.TagNetworkID, raw: "18", expected: at.NetworkID{ID: 18}},
		{name: "Parameter", tag: at.TagParameter, raw: "11,9,4,24", expected: at.Parameter{SpreadingFactor: 11, Bandwidth: 9, CodingRate: 4, Preamble: 24}},
		{name: "Parameter missing field", tag: at.TagParameter, raw: "9,7,1", err: at.ErrBadField},
		{name: "Parameter bad field", tag: at.TagParameter, raw: "9,7,x,12", err: at.ErrBadField},
		{name: "Baud", tag: at.TagBaudRate, raw: "115200", expected: at.BaudRate{Baud: 115200}},
		{name: "UID", tag: at.TagUID, raw: "104A1A2B", expected: at.UID{Value: "104A1A2B"}},
		{name: "Version", tag: at.TagVersion, raw: "RYLR998_REYAX_V1.2.2", expected: at.Version{Value: "RYLR998_REYAX_V1.2.2"}},
		{name: "OK ignores value", tag: at.TagOK, raw: "", expected: at.OK{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := at.Decode(tt.tag, tt.raw)
			if got.Tag() != tt.tag {
				t.Errorf("expected tag %v, got %v", tt.tag, got.Tag())
			}
			if tt.err != nil {
				m, ok := got.(at.Malformed)
				if !ok {
					t.Fatalf("expected Malformed, got %#v", got)
				}
				if !errors.Is(m, tt.err) {
					t.Errorf("expected %v, got %v", tt.err, m.Err)
				}
				if m.Raw != tt.raw {
					t.Errorf("expected raw %q, got %q", tt.raw, m.Raw)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %#v, got %#v", tt.expected, got)
			}
		})
	}
}

func TestParameterString(t *testing.T) {
	p := at.Parameter{SpreadingFactor: 9, Bandwidth: 7, CodingRate: 1, Preamble: 12}
	if got := p.String(); got != "9,7,1,12" {
		t.Errorf("expected 9,7,1,12, got %q", got)
	}
}
