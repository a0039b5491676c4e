package main

// Exit codes
const (
	ExitSuccess     = 0 // Success, including harvests that found no data
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no workspace, unknown store backend, unreachable store)
	ExitDataError   = 3 // Data error (malformed DOI, ISSN or date)
	ExitNotFound    = 4 // Requested record or DOI not found
	ExitAPIError    = 5 // Metadata API request failed
)
