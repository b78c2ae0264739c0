package constants

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// MaxAIGeneratedTasks caps how many drafts one incident report may produce
const MaxAIGeneratedTasks = 10

// MaxIncidentTextLength bounds the text sent to the drafting model
const MaxIncidentTextLength = 4000
