// Package backend contains the client-side contracts of the GymRecord
// backend and the error taxonomy shared by their implementations.
//
// # Overview
//
// The backend is consumed through three narrow interfaces:
//  1. AuthClient: password / id-token sign-in, sign-up, sign-out, the
//     persisted session and ordered session-change notifications
//     (implemented by package gotrue);
//  2. DataClient: row-level select and upsert plus stored-procedure calls
//     (implemented by package postgrest);
//  3. ObjectStorage: binary uploads and public URLs (implemented by package
//     objectstore).
//
// # Error Handling
//
// Failures are reported as *APIError values that unwrap to one of the
// sentinels, so callers match with errors.Is: ErrUnauthorized,
// ErrUnavailable, ErrNotFound, ErrValidation, ErrConflict. The error message
// is the backend's human-readable text and is safe to show to the user.
package backend
