// Package cli provides the interactive GymRecord command-line client.
//
// It wires configuration, the local store, the backend clients and the
// identity and cache layer, then runs a REPL on top of them. Typical flow:
// restore the persisted session, load translations, start the background
// token refresher and execute user commands.
//
// Key features:
//   - Sign in with e-mail and password or with Google
//   - Register, sign out, forget the local identity
//   - Show and edit the profile, upload an avatar
//   - Switch and reload the interface language
//   - List the body part and muscle vocabularies
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
