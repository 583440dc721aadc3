package storage

// Package storage provides the SQLite-backed profile store: users,
// per-user preferences, and the navigation/theme state singletons, with
// embedded schema migrations and atomic upsert-by-natural-key semantics.
