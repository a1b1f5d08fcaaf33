package model

import "time"

// ParseStats summarizes one parse call.
type ParseStats struct {
	// TotalEmails counts successfully produced messages.
	TotalEmails int
	// TotalBytes is the length of the original container before line
	// normalization.
	TotalBytes int64
	// AvgEmailSize is TotalBytes / TotalEmails, defined as 0 when no
	// message was produced.
	AvgEmailSize int64
	// DelimiterMatches counts true "From " delimiter lines found by the
	// framer. Recovered leading records without a delimiter are not
	// counted here.
	DelimiterMatches int
	ParseTime        time.Duration
}

// Progress is one parse progress notification. Percent, Records and Bytes
// increase monotonically over the life of a parse.
type Progress struct {
	Percent float64
	Records int
	Bytes   int64
	// Subject of the most recently parsed message, "" when none.
	Subject string
}
