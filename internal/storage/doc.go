// Package storage writes extracted tables to disk as CSV files.
//
// Files are named <prefix>_<index>_<YYYYMMDD>.csv so a same-day re-run
// overwrites the previous output. Standings are additionally split into
// standings_by_conf/ (one file per conference) and concatenated into
// standings_full/standings_all_<YYYYMMDD>.csv. Each file is replaced
// atomically; a run that fails halfway leaves the files already written.
package storage
