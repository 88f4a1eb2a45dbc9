// Package cli provides the interactive TaskFlow knowledge-base client.
//
// It wires configuration, the persisted session store, the HTTP channels to
// the identity and content services, and an interactive REPL. Typical flow:
// restore the persisted session, load categories/tags/featured data, and
// execute user commands.
//
// Key features:
//   - Login / Logout with an OTP challenge subflow
//   - Browse articles with search, category, tag, sort, and page commands
//   - Open an article (records a view)
//   - Manage own articles, categories, and tags
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
