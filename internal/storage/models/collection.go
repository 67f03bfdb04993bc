package models

import "time"

// OwnedVersion is one owned physical copy of a card.
type OwnedVersion struct {
	ID       int64
	Identity string
	CardName string
	SetCode  string // empty when the printing is unknown
	AddedAt  time.Time
}

// OwnedCard aggregates the owned copies of one card.
type OwnedCard struct {
	Identity string
	CardName string
	Quantity int
	SetCodes []string
}
