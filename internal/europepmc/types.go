// Package europepmc provides a client for the Europe PMC REST search API.
package europepmc

import "encoding/xml"

// ResponseWrapper is the XML envelope of a search response.
type ResponseWrapper struct {
	XMLName  xml.Name `xml:"responseWrapper"`
	HitCount int      `xml:"hitCount"`
	Results  []Result `xml:"resultList>result"`
}

// Result is one search hit in "core" result type.
type Result struct {
	ID                   string `xml:"id"`
	Source               string `xml:"source"`
	DOI                  string `xml:"doi"`
	Title                string `xml:"title"`
	AuthorString         string `xml:"authorString"`
	AbstractText         string `xml:"abstractText"`
	Affiliation          string `xml:"affiliation"`
	CitedByCount         string `xml:"citedByCount"`
	FirstPublicationDate string `xml:"firstPublicationDate"`
}
