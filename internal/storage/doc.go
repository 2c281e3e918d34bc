// Package storage persists a schedule.Calendar as a single JSON file.
//
// Every command is one load-mutate-save cycle: Load reads the whole file,
// Save rewrites it through a temporary file and a rename so readers never
// see a partial write. There is no locking; concurrent writers race and
// the last one wins.
package storage
