package http

import (
	"poll-server/internal/domain"
	"poll-server/internal/service"
)

// Timestamps are Unix milliseconds, matching what the web client expects.

type PollSummaryResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
	Owner       string `json:"owner"`
}

type OptionResponse struct {
	ID    int64  `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type PollDetailResponse struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	CreatedAt     int64            `json:"created_at"`
	Owner         string           `json:"owner"`
	Options       []OptionResponse `json:"options"`
	Voted         bool             `json:"voted"`
	VotedOptionID *int64           `json:"votedOptionId"`
}

type VoteResponse struct {
	Success bool             `json:"success"`
	Options []OptionResponse `json:"options"`
}

func summaryToResponse(p domain.PollSummary) PollSummaryResponse {
	return PollSummaryResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.UnixMilli(),
		Owner:       p.Owner,
	}
}

func detailToResponse(d service.PollDetail) PollDetailResponse {
	return PollDetailResponse{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		CreatedAt:     d.CreatedAt.UnixMilli(),
		Owner:         d.Owner,
		Options:       optionsToResponse(d.Options),
		Voted:         d.Voted,
		VotedOptionID: d.VotedOptionID,
	}
}

func optionsToResponse(options []service.OptionResult) []OptionResponse {
	resp := make([]OptionResponse, len(options))
	for i, o := range options {
		resp[i] = OptionResponse{ID: o.ID, Text: o.Text, Votes: o.Votes}
	}
	return resp
}
