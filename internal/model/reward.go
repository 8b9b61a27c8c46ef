package model

import "time"

type Reward struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Style       string `json:"style"`
	OneTime     bool   `json:"one_time"`
	Builtin     bool   `json:"-"`
}

type PurchaseRecord struct {
	Member      string    `json:"member"`
	RewardID    int64     `json:"reward_id"`
	RewardName  string    `json:"reward_name"`
	Date        string    `json:"date"`
	Price       int       `json:"price"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// DeliveryTicket is a purchase awaiting hand-over by a parent.
type DeliveryTicket struct {
	ID         string `json:"id"`
	Member     string `json:"member"`
	RewardID   int64  `json:"reward_id"`
	RewardName string `json:"reward_name"`
	Date       string `json:"date"`
}

// Standing is one row of the ranking table.
type Standing struct {
	Rank   int    `json:"rank"`
	Member string `json:"member"`
	Role   Role   `json:"role"`
	Points int    `json:"points"`
}
