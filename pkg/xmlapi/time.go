package xmlapi

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the timestamp layout used throughout the XML API (UTC).
const TimeLayout = "2006-01-02 15:04:05"

// ParseTime parses an XML API timestamp as UTC.
func ParseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

// Time is a time.Time that decodes from XML API elements and attributes.
// Empty values decode to the zero time.
type Time struct {
	time.Time
}

// UnmarshalXML implements xml.Unmarshaler.
func (t *Time) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var s string
	if err := d.DecodeElement(&s, &start); err != nil {
		return err
	}
	return t.set(s)
}

// UnmarshalXMLAttr implements xml.UnmarshalerAttr.
func (t *Time) UnmarshalXMLAttr(attr xml.Attr) error {
	return t.set(attr.Value)
}

func (t *Time) set(s string) error {
	if strings.TrimSpace(s) == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
