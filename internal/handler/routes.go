package handler

// APIV1Prefix is the base path of the memo API.
const APIV1Prefix = "/api/v1"

// Paths below are relative to APIV1Prefix.
const (
	memosPath    = "/memos"
	memoIDParam  = "memo_id"
	rawMemosPath = "/raw/memos"
	healthPath   = "/health"
)
