// Package dbcapabilities is the canonical registry of database engines
// supported by dbscope. It maps each engine to its capability metadata
// (connection paradigm, default port, catalog quirks) so that the factory,
// the drivers, and the presentation layer all agree on what an engine is
// and what it can do.
package dbcapabilities
