// Package api provides the wire client for the SRFax web service. It handles
// credential embedding, form encoding, the {Status, Result} response
// envelope, and decoding each operation's Result into a typed schema.
//
// # Requests
//
// Every call is a single form-encoded POST to the service endpoint. The form
// always carries:
//
//   - action: the operation name (see the Action* constants).
//   - access_id / access_pwd: the account credentials.
//   - sResponseFormat: always JSON.
//
// plus the operation's own parameters. Each request also carries an
// X-Request-ID header so a failure can be correlated with the service logs.
//
// # Responses
//
// The service answers with {"Status": "...", "Result": ...}. A Status other
// than "Success" becomes a [RemoteError] whose Message is the service text,
// unmodified. An envelope without Status or Result, or a Result that does not
// fit the operation's schema, becomes a [RemoteError] with Malformed set.
// Anything that prevents a response from being read at all (DNS, connection
// reset, timeout, a body that is not JSON) becomes a [TransportError].
//
// # Retries
//
// There are none. Each method performs exactly one round trip.
//
// # Thread Safety
//
// The [Client] type is safe for concurrent use. It holds only configuration
// fixed at construction.
package api
