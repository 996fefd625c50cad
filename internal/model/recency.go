// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// RECENCY BUCKETS
// =============================================================================

// RecencyBucket is a coarse age group for the conversation list.
type RecencyBucket int

const (
	BucketToday RecencyBucket = iota
	BucketYesterday
	BucketPrevious7Days
	BucketPrevious30Days
	BucketOlder
)

// Label returns the display name for the bucket.
func (b RecencyBucket) Label() string {
	switch b {
	case BucketToday:
		return "Today"
	case BucketYesterday:
		return "Yesterday"
	case BucketPrevious7Days:
		return "Previous 7 Days"
	case BucketPrevious30Days:
		return "Previous 30 Days"
	default:
		return "Older"
	}
}

// AllBuckets lists the buckets in display order, newest first.
var AllBuckets = []RecencyBucket{
	BucketToday,
	BucketYesterday,
	BucketPrevious7Days,
	BucketPrevious30Days,
	BucketOlder,
}

// Bucket classifies a timestamp relative to now by calendar-day difference
// (midnight to midnight in local time, not elapsed hours): same day is
// Today, one day back is Yesterday, under 7 days back is Previous 7 Days,
// under 30 is Previous 30 Days, everything else is Older. Timestamps in
// the future land in Today.
func Bucket(createdAt, now time.Time) RecencyBucket {
	days := daysBetween(createdAt, now)
	switch {
	case days <= 0:
		return BucketToday
	case days == 1:
		return BucketYesterday
	case days < 7:
		return BucketPrevious7Days
	case days < 30:
		return BucketPrevious30Days
	default:
		return BucketOlder
	}
}

// daysBetween returns now's calendar day minus t's calendar day in local
// time. A message sent at 23:59 is Yesterday one minute later.
func daysBetween(t, now time.Time) int {
	tMid := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	nowMid := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(nowMid.Sub(tMid).Hours() / 24)
}

// BucketGroup is one non-empty recency bucket with its conversations.
type BucketGroup struct {
	Bucket        RecencyBucket
	Conversations []*Conversation
}

// GroupByRecency partitions conversations into recency buckets, preserving
// the input order within each bucket. Input is expected newest-first (the
// store's list order); empty buckets are omitted.
func GroupByRecency(convs []*Conversation, now time.Time) []BucketGroup {
	byBucket := make(map[RecencyBucket][]*Conversation)
	for _, c := range convs {
		b := Bucket(c.CreatedAt, now)
		byBucket[b] = append(byBucket[b], c)
	}

	groups := make([]BucketGroup, 0, len(byBucket))
	for _, b := range AllBuckets {
		if list := byBucket[b]; len(list) > 0 {
			groups = append(groups, BucketGroup{Bucket: b, Conversations: list})
		}
	}
	return groups
}
