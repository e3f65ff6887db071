package xmlapi

import (
	"encoding/xml"
	"errors"
	"testing"
	"time"
)

const okBody = `<?xml version='1.0' encoding='UTF-8'?>
<eveapi version="2">
  <currentTime>2020-01-01 00:00:00</currentTime>
  <result>
    <paidUntil>2020-02-01 12:00:00</paidUntil>
    <logonCount>42</logonCount>
  </result>
  <cachedUntil>2020-01-01 00:05:00</cachedUntil>
</eveapi>`

const errorBody = `<?xml version='1.0' encoding='UTF-8'?>
<eveapi version="2">
  <currentTime>2020-01-01 00:00:00</currentTime>
  <error code="203">
    Authentication failure.
  </error>
  <cachedUntil>2020-01-02 00:00:00</cachedUntil>
</eveapi>`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(okBody))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	wantCurrent := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if !doc.CurrentTime.Equal(wantCurrent) {
		t.Errorf("CurrentTime = %v, want %v", doc.CurrentTime, wantCurrent)
	}
	if doc.Version != "2" {
		t.Errorf("Version = %q, want %q", doc.Version, "2")
	}
	if doc.Error != nil {
		t.Errorf("Error = %v, want nil", doc.Error)
	}
	if got := doc.Envelope().TTL(); got != 5*time.Minute {
		t.Errorf("TTL() = %v, want 5m", got)
	}
	if string(doc.Raw()) != okBody {
		t.Error("Raw() does not return the original body")
	}
}

func TestParse_ErrorElement(t *testing.T) {
	doc, err := Parse([]byte(errorBody))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if doc.Error == nil {
		t.Fatal("Error = nil, want API error")
	}
	if doc.Error.Code != 203 {
		t.Errorf("Error.Code = %d, want 203", doc.Error.Code)
	}
	if doc.Error.Message != "Authentication failure." {
		t.Errorf("Error.Message = %q", doc.Error.Message)
	}
	if doc.Error.Error() != "API error 203: Authentication failure." {
		t.Errorf("Error() = %q", doc.Error.Error())
	}
	if got := doc.Envelope().TTL(); got != 24*time.Hour {
		t.Errorf("TTL() = %v, want 24h", got)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not xml", body: `{"status": "ok"}`},
		{name: "empty body", body: ``},
		{
			name: "missing currentTime",
			body: `<eveapi version="2"><cachedUntil>2020-01-01 00:05:00</cachedUntil></eveapi>`,
		},
		{
			name: "missing cachedUntil",
			body: `<eveapi version="2"><currentTime>2020-01-01 00:00:00</currentTime></eveapi>`,
		},
		{
			name: "unparseable timestamp",
			body: `<eveapi><currentTime>yesterday</currentTime><cachedUntil>2020-01-01 00:05:00</cachedUntil></eveapi>`,
		},
		{
			name: "empty timestamp",
			body: `<eveapi><currentTime/><cachedUntil>2020-01-01 00:05:00</cachedUntil></eveapi>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("Parse() error = %v, want ErrMalformedResponse", err)
			}
		})
	}
}

func TestEnvelope_TTL(t *testing.T) {
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		until         time.Time
		want          time.Duration
		wantCacheable bool
	}{
		{name: "five minutes", until: base.Add(5 * time.Minute), want: 5 * time.Minute, wantCacheable: true},
		{name: "equal", until: base, want: 0, wantCacheable: false},
		{name: "in the past", until: base.Add(-time.Minute), want: -time.Minute, wantCacheable: false},
		{name: "sub-second floors to zero", until: base.Add(500 * time.Millisecond), want: 0, wantCacheable: false},
		{name: "fraction is dropped", until: base.Add(90*time.Second + 900*time.Millisecond), want: 90 * time.Second, wantCacheable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Envelope{CurrentTime: base, CachedUntil: tt.until}
			if got := env.TTL(); got != tt.want {
				t.Errorf("TTL() = %v, want %v", got, tt.want)
			}
			if got := env.Cacheable(); got != tt.wantCacheable {
				t.Errorf("Cacheable() = %v, want %v", got, tt.wantCacheable)
			}
		})
	}
}

func TestDocument_Decode(t *testing.T) {
	doc, err := Parse([]byte(okBody))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	var out struct {
		Result struct {
			PaidUntil  Time `xml:"paidUntil"`
			LogonCount int  `xml:"logonCount"`
		} `xml:"result"`
	}
	if err := doc.Decode(&out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if out.Result.LogonCount != 42 {
		t.Errorf("LogonCount = %d, want 42", out.Result.LogonCount)
	}
	want := time.Date(2020, 2, 1, 12, 0, 0, 0, time.UTC)
	if !out.Result.PaidUntil.Equal(want) {
		t.Errorf("PaidUntil = %v, want %v", out.Result.PaidUntil, want)
	}
}

func TestTime_UnmarshalXMLAttr(t *testing.T) {
	var row struct {
		Issued  Time `xml:"issued,attr"`
		Expires Time `xml:"expires,attr"`
	}
	data := `<row issued="2019-12-31 23:59:59" expires=""/>`
	if err := xml.Unmarshal([]byte(data), &row); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	want := time.Date(2019, 12, 31, 23, 59, 59, 0, time.UTC)
	if !row.Issued.Equal(want) {
		t.Errorf("Issued = %v, want %v", row.Issued, want)
	}
	if !row.Expires.IsZero() {
		t.Errorf("Expires = %v, want zero", row.Expires)
	}
}
