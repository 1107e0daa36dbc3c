package services

import "time"

// BatchItemError captures one failed unit of a daily batch. Item
// failures are collected into the summary, never raised; a bad
// investment or referrer must not stop the rest of the pass.
type BatchItemError struct {
	ID  string `json:"id"`
	Err string `json:"error"`
}

type AccrualSummary struct {
	Date      time.Time        `json:"date"`
	Processed int              `json:"processed"`
	Completed int              `json:"completed"`
	Skipped   int              `json:"skipped"`
	Errors    []BatchItemError `json:"errors,omitempty"`
}

type RewardSummary struct {
	Date               time.Time        `json:"date"`
	TotalProcessed     int              `json:"total_processed"`
	ReferrersRewarded  int              `json:"referrers_rewarded"`
	TotalPaidMinor     int64            `json:"total_paid_minor"`
	PerReferrerErrors  []BatchItemError `json:"per_referrer_errors,omitempty"`
}

func startOfDay(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location())
}
