// Package match scores free-text queries against cached catalog entries.
//
// Identity between inventory items and catalog rows is a probabilistic join:
// a Candidate pairs a catalog entry with a computed score and is never
// persisted, so re-scoring with tuned constants never requires migrating
// stored relationships.
package match
