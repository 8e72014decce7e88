// Package main provides the entry point for the filingctl CLI.
//
// filingctl drives a filing classification service: it submits SEC filing
// URLs for classification, looks results up, keeps a refreshing view of all
// stored results and deletes them.
//
// Usage:
//
//	filingctl classify <filing-url>
//	filingctl batch -f urls.txt
//	filingctl watch
//
// See --help for all available options.
package main

// main is the entry point for filingctl.
func main() {
	Execute()
}
