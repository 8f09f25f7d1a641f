// Package client talks to the resume-analysis backend over HTTP.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface):
//     Register, Login, Me, UploadResume, GetResume, ListResumes, Dashboard.
//  2. A concrete HTTP implementation (see HTTPClient) that encodes JSON and
//     multipart bodies, attaches the bearer credential read from a
//     CredentialSource, and normalizes every non-2xx response into an
//     *APIError.
//
// # Error Handling
//
// Non-2xx responses become *APIError values tagged by Kind. Field-level
// validation failures keep their attribution in APIError.Fields. Common
// conditions are matched with errors.Is: ErrUnauthorized (401, 403),
// ErrNotFound (404) and ErrUnavailable (transport failures).
//
// The client reads the credential but never writes it; persisting and
// clearing it is the session manager's job.
package client
