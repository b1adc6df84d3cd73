// Package protocol defines the socket wire format: outbound event envelopes,
// inbound request parsing, and the coded error taxonomy.
//
// Outbound frames are {"event": <kind>, "data": <payload>}. Inbound frames are
// either {"action": "subscribe"} or a search request
// {"type": "search:request", "query", "requestID", "maxResults"?}.
package protocol
