// Package pipeline runs the analysis of a website as a sequence of steps.
//
// A Run flows through the steps crawl, score and optionally store (the
// history database) and save (a timestamped JSON file). Analyzer builds
// the pipeline from the configuration, and BatchProcessor analyzes
// several sites concurrently with errgroup.
//
// An empty crawl is not a failure: the score step still runs on an empty
// page set and the resulting all-zero report is returned together with
// crawler.ErrZeroPages.
package pipeline
