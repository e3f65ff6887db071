// Package xmlapi parses the envelope shared by every EVE XML API response.
//
// Every response body carries the server's own clock (currentTime) and the
// instant until which the response may be cached (cachedUntil). Some bodies
// additionally carry an error element with a numeric code:
//
//	<eveapi version="2">
//	  <currentTime>2020-01-01 00:00:00</currentTime>
//	  <error code="203">Authentication failure.</error>
//	  <cachedUntil>2020-01-01 00:05:00</cachedUntil>
//	</eveapi>
//
// Parse turns a raw body into a Document. A body that is not XML or lacks
// either timestamp is reported as ErrMalformedResponse; an error element is
// not a parse failure and is exposed through Document.Error instead.
//
// The cache window is derived from the two embedded timestamps only, so the
// local clock never influences how long a response is cached.
package xmlapi
