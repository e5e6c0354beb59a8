// Package schematest provides a small schedule schema and documents for tests
// that need a real compiled snapshot.
package schematest

import (
	"testing"
	"time"
	"validator/pkg/domain"
	"validator/pkg/schema"
)

// URL is the location test snapshots claim to be fetched from.
const URL = "https://schema.example/validator/xsd/schedule.xml.xsd"

// ScheduleXSD requires a <conference> with a <title> inside <schedule>,
// followed by any number of <day> elements with typed attributes.
const ScheduleXSD = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" elementFormDefault="qualified">
  <xs:element name="schedule">
    <xs:complexType>
      <xs:sequence>
        <xs:element name="conference" type="conferenceType"/>
        <xs:element name="day" type="dayType" minOccurs="0" maxOccurs="unbounded"/>
      </xs:sequence>
      <xs:attribute name="version" type="xs:string"/>
    </xs:complexType>
  </xs:element>
  <xs:complexType name="conferenceType">
    <xs:sequence>
      <xs:element name="title" type="xs:string"/>
      <xs:element name="acronym" type="xs:string" minOccurs="0"/>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="dayType">
    <xs:attribute name="index" type="xs:positiveInteger" use="required"/>
    <xs:attribute name="date" type="xs:date" use="required"/>
  </xs:complexType>
</xs:schema>`

// ValidDocument satisfies ScheduleXSD.
const ValidDocument = `<?xml version="1.0" encoding="UTF-8"?>
<schedule version="1.0">
  <conference><title>38C3</title><acronym>38c3</acronym></conference>
  <day index="1" date="2024-12-27"/>
</schedule>`

// MissingConference lacks the required <conference> child.
const MissingConference = `<schedule version="1.0"></schedule>`

// TwoBadDays has two independent attribute violations, in document order.
const TwoBadDays = `<schedule version="1.0">
  <conference><title>38C3</title></conference>
  <day index="0" date="2024-12-27"/>
  <day index="2" date="not-a-date"/>
</schedule>`

// Malformed is not well-formed XML.
const Malformed = `<foo>`

// Snapshot compiles raw into a snapshot stamped with fetchedAt, failing the
// test on error.
func Snapshot(t testing.TB, raw string, fetchedAt time.Time) *domain.SchemaSnapshot {
	t.Helper()

	compiled, err := schema.Compile(URL, []byte(raw))
	if err != nil {
		t.Fatalf("could not compile test schema: %v", err)
	}

	return &domain.SchemaSnapshot{
		URL:         URL,
		Raw:         []byte(raw),
		Schema:      compiled,
		Fingerprint: schema.Fingerprint([]byte(raw)),
		FetchedAt:   fetchedAt,
	}
}

// ScheduleSnapshot compiles ScheduleXSD.
func ScheduleSnapshot(t testing.TB) *domain.SchemaSnapshot {
	t.Helper()

	return Snapshot(t, ScheduleXSD, time.Date(2024, 12, 27, 10, 0, 0, 0, time.UTC))
}
