// Package crossref provides a client for the Crossref REST API: work
// metadata by DOI, reference lists, and cursor-paginated works search.
package crossref

// Work is the subset of a Crossref work record the harvester reads.
type Work struct {
	DOI               string      `json:"DOI"`
	Title             []string    `json:"title,omitempty"`
	ContainerTitle    []string    `json:"container-title,omitempty"`
	ISSN              []string    `json:"ISSN,omitempty"`
	ISSNType          []ISSNType  `json:"issn-type,omitempty"`
	Reference         []Reference `json:"reference,omitempty"`
	ReferenceCount    int         `json:"reference-count,omitempty"`
	ReferencedByCount int         `json:"is-referenced-by-count,omitempty"`
}

// ISSNType is one typed ISSN entry ("print" or "electronic").
type ISSNType struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Reference is one entry of a work's reference list. DOI is often missing
// for references Crossref could not match.
type Reference struct {
	Key          string `json:"key,omitempty"`
	DOI          string `json:"DOI,omitempty"`
	Unstructured string `json:"unstructured,omitempty"`
}

// WorksPage is one page of a cursor-paginated works search.
type WorksPage struct {
	TotalResults int    `json:"total-results"`
	NextCursor   string `json:"next-cursor,omitempty"`
	Items        []Work `json:"items"`
}

// workResponse wraps GET /works/{doi}.
type workResponse struct {
	Status  string `json:"status"`
	Message *Work  `json:"message"`
}

// worksResponse wraps GET /works.
type worksResponse struct {
	Status  string     `json:"status"`
	Message *WorksPage `json:"message"`
}
