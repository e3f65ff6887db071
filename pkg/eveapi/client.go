// Package eveapi is a typed client over the cached XML API pipeline.
//
// Each method validates its arguments against the action's allow-list,
// performs the request through a Performer (normally *client.Client), turns
// an embedded error element into an *APIError and decodes the result.
package eveapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Sternrassler/eve-xmlapi-client/pkg/request"
	"github.com/Sternrassler/eve-xmlapi-client/pkg/xmlapi"
)

// APIError is an error element returned by the API.
type APIError = xmlapi.APIError

// Performer executes a raw action; *client.Client implements it.
type Performer interface {
	Perform(ctx context.Context, action string, params url.Values) (*xmlapi.Document, error)
}

// Endpoints with their accepted parameters.
var (
	AccountStatusEndpoint = request.Endpoint{Action: "account/AccountStatus"}
	APIKeyInfoEndpoint    = request.Endpoint{Action: "account/APIKeyInfo"}
	CharactersEndpoint    = request.Endpoint{Action: "account/Characters"}

	MarketOrdersEndpoint = request.Endpoint{
		Action: "char/MarketOrders",
		Params: []string{"characterID"},
	}
	UpcomingCalendarEventsEndpoint = request.Endpoint{
		Action: "char/UpcomingCalendarEvents",
		Params: []string{"characterID"},
	}
	WalletTransactionsEndpoint = request.Endpoint{
		Action: "char/WalletTransactions",
		Params: []string{"characterID", "fromID", "rowCount"},
	}
)

// Client is the typed XML API client.
type Client struct {
	raw Performer
}

// New wraps a Performer.
func New(raw Performer) *Client {
	if raw == nil {
		panic("performer cannot be nil")
	}
	return &Client{raw: raw}
}

// AccountStatus returns the account's subscription status.
func (c *Client) AccountStatus(ctx context.Context) (*AccountStatus, error) {
	var out struct {
		Result AccountStatus `xml:"result"`
	}
	if err := c.call(ctx, AccountStatusEndpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out.Result, nil
}

// APIKeyInfo returns the key's access mask, type, expiry and characters.
func (c *Client) APIKeyInfo(ctx context.Context) (*KeyInfo, error) {
	var out struct {
		Key KeyInfo `xml:"result>key"`
	}
	if err := c.call(ctx, APIKeyInfoEndpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out.Key, nil
}

// Characters lists the characters on the account.
func (c *Client) Characters(ctx context.Context) ([]Character, error) {
	return rows[Character](ctx, c, CharactersEndpoint, nil, "characters")
}

// MarketOrders lists a character's market orders. Accepts characterID.
func (c *Client) MarketOrders(ctx context.Context, args request.Args) ([]MarketOrder, error) {
	return rows[MarketOrder](ctx, c, MarketOrdersEndpoint, args, "orders")
}

// UpcomingCalendarEvents lists a character's upcoming events. Accepts characterID.
func (c *Client) UpcomingCalendarEvents(ctx context.Context, args request.Args) ([]CalendarEvent, error) {
	return rows[CalendarEvent](ctx, c, UpcomingCalendarEventsEndpoint, args, "upcomingEvents")
}

// WalletTransactions lists a character's wallet transactions. Accepts
// characterID, fromID and rowCount.
func (c *Client) WalletTransactions(ctx context.Context, args request.Args) ([]Transaction, error) {
	return rows[Transaction](ctx, c, WalletTransactionsEndpoint, args, "transactions")
}

// call builds the query, performs the action and decodes into v.
func (c *Client) call(ctx context.Context, ep request.Endpoint, args request.Args, v any) error {
	params, err := request.Build(ep, args)
	if err != nil {
		return err
	}

	doc, err := c.raw.Perform(ctx, ep.Action, params)
	if err != nil {
		return err
	}
	if doc.Error != nil {
		return doc.Error
	}

	if err := doc.Decode(v); err != nil {
		return fmt.Errorf("%s: %w", ep.Action, err)
	}
	return nil
}

type rowset[T any] struct {
	Name string `xml:"name,attr"`
	Rows []T    `xml:"row"`
}

// rows decodes the rows of the named top-level rowset in the result.
func rows[T any](ctx context.Context, c *Client, ep request.Endpoint, args request.Args, name string) ([]T, error) {
	var out struct {
		Rowsets []rowset[T] `xml:"result>rowset"`
	}
	if err := c.call(ctx, ep, args, &out); err != nil {
		return nil, err
	}

	for _, rs := range out.Rowsets {
		if rs.Name == name {
			return rs.Rows, nil
		}
	}
	return nil, nil
}
