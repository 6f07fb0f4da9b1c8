// Package loader fetches the search index document once and tracks whether
// it is ready to be queried.
//
// A Loader moves through NotStarted, Loading and then Ready or Failed.
// Both outcomes are terminal. Listeners registered with OnChange see every
// transition, and Query fails with ErrNotReady until the load succeeds.
//
// Relative index URLs resolve against Config.BaseURL, or against the
// working directory when no base is set; file:// URLs are read from disk.
// Fetch problems are reported as *FetchError, undecodable documents as
// *ParseError.
package loader
