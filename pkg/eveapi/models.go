package eveapi

import (
	"github.com/Sternrassler/eve-xmlapi-client/pkg/xmlapi"
)

// Market order states.
const (
	OrderStateActive = iota
	OrderStateClosed
	OrderStateExpired
	OrderStateCancelled
	OrderStatePending
	OrderStateCharacterDeleted
)

// AccountStatus is the result of account/AccountStatus.
type AccountStatus struct {
	PaidUntil    xmlapi.Time `xml:"paidUntil"`
	CreateDate   xmlapi.Time `xml:"createDate"`
	LogonCount   int         `xml:"logonCount"`
	LogonMinutes int         `xml:"logonMinutes"`
}

// Character is a character row. It satisfies request.Identifier, so it can
// be passed as a characterID argument.
type Character struct {
	CharacterID     int64  `xml:"characterID,attr"`
	Name            string `xml:"name,attr"`
	CorporationID   int64  `xml:"corporationID,attr"`
	CorporationName string `xml:"corporationName,attr"`

	// Some rowsets name the attribute characterName instead of name.
	CharacterName string `xml:"characterName,attr"`
}

// ID returns the character ID.
func (c Character) ID() int64 {
	return c.CharacterID
}

// DisplayName returns whichever name attribute the row carried.
func (c Character) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.CharacterName
}

// KeyInfo is the result of account/APIKeyInfo. Expires is zero for keys
// that never expire.
type KeyInfo struct {
	AccessMask int64       `xml:"accessMask,attr"`
	Type       string      `xml:"type,attr"`
	Expires    xmlapi.Time `xml:"expires,attr"`
	Characters []Character `xml:"rowset>row"`
}

// MarketOrder is a row of char/MarketOrders.
type MarketOrder struct {
	OrderID         int64       `xml:"orderID,attr"`
	CharacterID     int64       `xml:"charID,attr"`
	StationID       int64       `xml:"stationID,attr"`
	VolumeEntered   int64       `xml:"volEntered,attr"`
	VolumeRemaining int64       `xml:"volRemaining,attr"`
	MinVolume       int64       `xml:"minVolume,attr"`
	State           int         `xml:"orderState,attr"`
	TypeID          int64       `xml:"typeID,attr"`
	Range           int         `xml:"range,attr"`
	AccountKey      int         `xml:"accountKey,attr"`
	Duration        int         `xml:"duration,attr"`
	Escrow          float64     `xml:"escrow,attr"`
	Price           float64     `xml:"price,attr"`
	Bid             bool        `xml:"bid,attr"`
	Issued          xmlapi.Time `xml:"issued,attr"`
}

// Active reports whether the order is still open on the market.
func (o MarketOrder) Active() bool {
	return o.State == OrderStateActive
}

// Transaction is a row of char/WalletTransactions.
type Transaction struct {
	TransactionID        int64       `xml:"transactionID,attr"`
	Date                 xmlapi.Time `xml:"transactionDateTime,attr"`
	Quantity             int64       `xml:"quantity,attr"`
	TypeName             string      `xml:"typeName,attr"`
	TypeID               int64       `xml:"typeID,attr"`
	Price                float64     `xml:"price,attr"`
	ClientID             int64       `xml:"clientID,attr"`
	ClientName           string      `xml:"clientName,attr"`
	StationID            int64       `xml:"stationID,attr"`
	StationName          string      `xml:"stationName,attr"`
	TransactionType      string      `xml:"transactionType,attr"`
	TransactionFor       string      `xml:"transactionFor,attr"`
	JournalTransactionID int64       `xml:"journalTransactionID,attr"`
}

// CalendarEvent is a row of char/UpcomingCalendarEvents.
type CalendarEvent struct {
	Date  xmlapi.Time `xml:"eventDate,attr"`
	Title string      `xml:"eventTitle,attr"`
	Text  string      `xml:"eventText,attr"`
}
