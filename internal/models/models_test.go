package models

import "testing"

func TestNormalizeFoldsLegacyPhoneField(t *testing.T) {
	phone := "555-0100"
	p := PingRequest{DriverID: "d1", PhoneCamel: &phone}
	p.Normalize()
	if p.PhoneNumber == nil || *p.PhoneNumber != phone {
		t.Fatalf("phone_number = %v", p.PhoneNumber)
	}
	if p.PhoneCamel != nil {
		t.Fatal("legacy field should be cleared")
	}
}

func TestNormalizePrefersCanonicalPhone(t *testing.T) {
	canonical, legacy := "555-0100", "555-0999"
	p := PingRequest{PhoneNumber: &canonical, PhoneCamel: &legacy}
	p.Normalize()
	if *p.PhoneNumber != canonical {
		t.Fatalf("phone_number = %q", *p.PhoneNumber)
	}
}

func TestNormalizeDefaultsStatusOffline(t *testing.T) {
	p := PingRequest{DriverID: "d1"}
	p.Normalize()
	if p.Status != StatusOffline {
		t.Fatalf("status = %q", p.Status)
	}
}
