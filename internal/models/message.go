package models

import (
	"time"
)

// MessageStatus is the triage state of an inbound message
type MessageStatus string

const (
	MessageNew      MessageStatus = "new"
	MessageOpen     MessageStatus = "open"
	MessageWaiting  MessageStatus = "waiting"
	MessageResolved MessageStatus = "resolved"
	MessageArchived MessageStatus = "archived"
)

// MessageStatuses lists every message status in triage order
var MessageStatuses = []MessageStatus{MessageNew, MessageOpen, MessageWaiting, MessageResolved, MessageArchived}

// Valid reports whether s is a known message status
func (s MessageStatus) Valid() bool {
	for _, v := range MessageStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Message represents an inbound support/contact message
type Message struct {
	ID          string        `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Email       string        `json:"email" db:"email"`
	Subject     string        `json:"subject" db:"subject"`
	Body        string        `json:"body" db:"body"`
	Status      MessageStatus `json:"status" db:"status"`
	SearchQuery string        `json:"search_query,omitempty" db:"search_query"`
	Referrer    string        `json:"referrer,omitempty" db:"referrer"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

// MessageInput is a message as submitted through the contact form
type MessageInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	SearchQuery string `json:"search_query"`
	Referrer    string `json:"referrer"`
}

// MessageQuery describes a message listing request
type MessageQuery struct {
	Status MessageStatus // empty = all
	Text   string
	Limit  int
	Offset int
}

// MessagePage is one page of a message listing
type MessagePage struct {
	Messages []*Message `json:"messages"`
	Total    int        `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// SearchQueryCount is how often a help-center search preceded a message
type SearchQueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// Stats summarises content and inbox activity
type Stats struct {
	Articles         map[ArticleStatus]int `json:"articles"`
	Messages         map[MessageStatus]int `json:"messages"`
	TopSearchQueries []SearchQueryCount    `json:"top_search_queries"`
}
