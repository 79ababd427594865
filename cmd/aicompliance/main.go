// Package main provides the entry point for the aicompliance CLI.
//
// aicompliance crawls a handful of pages of a website and scores how well
// the site is prepared for AI search engines and answer engines.
//
// Usage:
//
//	aicompliance analyze example.com
//	aicompliance history example.com
//
// See --help for all available options.
package main

func main() {
	Execute()
}
