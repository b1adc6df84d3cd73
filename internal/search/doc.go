// Package search answers asset lookups from the current snapshot and falls
// back to one upstream search call when nothing matches locally.
package search
