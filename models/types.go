package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Derived poll states
const (
	StatusOpen    = "open"
	StatusClosed  = "closed"
	StatusExpired = "expired"
)

// Limits enforced on create and update
const (
	MaxQuestionLen    = 200
	MaxDescriptionLen = 500
	MaxOptionLen      = 200
	MinOptions        = 2
	MaxOptions        = 10
	MaxTags           = 10
)

// Domain types

type Vote struct {
	// User is the voter's JWT user id, not a display name
	User    string    `json:"user" bson:"user"`
	VotedAt time.Time `json:"votedAt" bson:"votedAt"`
}

type Option struct {
	Text  string `json:"text" bson:"text"`
	Votes []Vote `json:"votes" bson:"votes"`
}

type Poll struct {
	ID                 string     `json:"id" bson:"_id"`
	Question           string     `json:"question" bson:"question"`
	Description        string     `json:"description" bson:"description"`
	Options            []Option   `json:"options" bson:"options"`
	Author             string     `json:"author" bson:"author"` // JWT user id of the creator
	IsActive           bool       `json:"isActive" bson:"isActive"`
	AllowMultipleVotes bool       `json:"allowMultipleVotes" bson:"allowMultipleVotes"`
	EndDate            *time.Time `json:"endDate" bson:"endDate"`
	Tags               []string   `json:"tags" bson:"tags"`
	TotalVotes         int        `json:"totalVotes" bson:"totalVotes"`
	CreatedAt          time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Result is the computed tally for one option
type Result struct {
	Text       string `json:"text"`
	Votes      int    `json:"votes"`
	Percentage int    `json:"percentage"`
}

// ListQuery is the normalized form of GET /polls query params
type ListQuery struct {
	Page   int
	Limit  int
	Sort   string
	Desc   bool
	Search string
}

// Request types

type CreatePollRequest struct {
	Question           string     `json:"question"`
	Description        string     `json:"description"`
	Options            []string   `json:"options"`
	AllowMultipleVotes bool       `json:"allowMultipleVotes"`
	EndDate            *time.Time `json:"endDate"`
	Tags               []string   `json:"tags"`
}

// UpdatePollRequest only touches fields present in the JSON body
type UpdatePollRequest struct {
	Question           *string      `json:"question"`
	Description        *string      `json:"description"`
	Options            []string     `json:"options"`
	AllowMultipleVotes *bool        `json:"allowMultipleVotes"`
	EndDate            OptionalTime `json:"endDate"`
	Tags               []string     `json:"tags"`
}

type VoteRequest struct {
	OptionIndexes []int `json:"optionIndexes"`
}

// OptionalTime tells an absent JSON field apart from an explicit null.
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// Response types

type PollDetailResponse struct {
	Poll      Poll     `json:"poll"`
	Results   []Result `json:"results"`
	UserVotes []int    `json:"userVotes"`
	HasVoted  bool     `json:"hasVoted"`
	IsExpired bool     `json:"isExpired"`
	Status    string   `json:"status"`
	EndsIn    string   `json:"endsIn,omitempty"`
}

type VoteResponse struct {
	Poll      Poll     `json:"poll"`
	Results   []Result `json:"results"`
	UserVotes []int    `json:"userVotes"`
	HasVoted  bool     `json:"hasVoted"`
}

type ListPollsResponse struct {
	Polls       []Poll `json:"polls"`
	Total       int    `json:"total"`
	TotalPages  int    `json:"totalPages"`
	CurrentPage int    `json:"currentPage"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
