// Package ingest turns files into ordered chunks with document-level
// metadata. It classifies by extension, extracts content per file type
// (plain text, image, PDF), and assigns content-hash document ids.
package ingest
